package update

import (
	"encoding/json"
	"time"
)

// Manifest is the server-provided descriptor of an update bundle.
// It is decoded as-is; nothing here is validated. A typed field whose
// JSON value has the wrong type is left zero rather than failing the
// decode.
type Manifest struct {
	ID             string         `json:"id,omitempty" yaml:"id,omitempty"`
	CreatedAt      string         `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
	RuntimeVersion string         `json:"runtimeVersion,omitempty" yaml:"runtimeVersion,omitempty"`
	LaunchAsset    *Asset         `json:"launchAsset,omitempty" yaml:"launchAsset,omitempty"`
	Assets         []Asset        `json:"assets,omitempty" yaml:"assets,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Extra          map[string]any `json:"extra,omitempty" yaml:"extra,omitempty"`

	// Raw holds every key of a decoded manifest. When set it is what the
	// manifest encodes back to, so unknown keys survive a round trip.
	Raw map[string]any `json:"-" yaml:"-"`
}

// plainManifest is Manifest without its codec methods.
type plainManifest Manifest

// UnmarshalJSON decodes any JSON object. Keys the typed fields do not
// cover, or cover with a different type, are kept in Raw.
func (m *Manifest) UnmarshalJSON(b []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	*m = Manifest{Raw: raw}
	m.ID, _ = raw["id"].(string)
	m.CreatedAt, _ = raw["createdAt"].(string)
	m.RuntimeVersion, _ = raw["runtimeVersion"].(string)
	m.Metadata, _ = raw["metadata"].(map[string]any)
	m.Extra, _ = raw["extra"].(map[string]any)

	if v, ok := raw["launchAsset"]; ok {
		var a Asset
		if redecode(v, &a) == nil {
			m.LaunchAsset = &a
		}
	}
	if v, ok := raw["assets"]; ok {
		var assets []Asset
		if redecode(v, &assets) == nil {
			m.Assets = assets
		}
	}
	return nil
}

// MarshalJSON writes Raw when the manifest was decoded, and the typed
// fields otherwise.
func (m Manifest) MarshalJSON() ([]byte, error) {
	if m.Raw != nil {
		return json.Marshal(m.Raw)
	}
	return json.Marshal(plainManifest(m))
}

// MarshalYAML mirrors MarshalJSON.
func (m Manifest) MarshalYAML() (interface{}, error) {
	if m.Raw != nil {
		return m.Raw, nil
	}
	return plainManifest(m), nil
}

func redecode(v any, dst any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dst)
}

// Asset is a single file referenced by a manifest.
type Asset struct {
	Key           string `json:"key,omitempty" yaml:"key,omitempty"`
	URL           string `json:"url,omitempty" yaml:"url,omitempty"`
	ContentType   string `json:"contentType,omitempty" yaml:"contentType,omitempty"`
	Hash          string `json:"hash,omitempty" yaml:"hash,omitempty"`
	FileExtension string `json:"fileExtension,omitempty" yaml:"fileExtension,omitempty"`
}

// CurrentlyRunning describes the bundle the application launched with.
// The agent fixes it at process start.
type CurrentlyRunning struct {
	UpdateID          string     `json:"updateId,omitempty" yaml:"updateId,omitempty"`
	Channel           string     `json:"channel,omitempty" yaml:"channel,omitempty"`
	CreatedAt         *time.Time `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
	IsEmbeddedLaunch  bool       `json:"isEmbeddedLaunch" yaml:"isEmbeddedLaunch"`
	IsEmergencyLaunch bool       `json:"isEmergencyLaunch" yaml:"isEmergencyLaunch"`
	Manifest          *Manifest  `json:"manifest,omitempty" yaml:"manifest,omitempty"`
	RuntimeVersion    string     `json:"runtimeVersion,omitempty" yaml:"runtimeVersion,omitempty"`
}

// AvailableUpdate is an update the server offered on the last check.
// An empty UpdateID or nil CreatedAt means the manifest did not carry one.
type AvailableUpdate struct {
	UpdateID  string
	CreatedAt *time.Time
	Manifest  *Manifest
}

// Info is the snapshot handed to application code. At most one of
// AvailableUpdate and Err is set. Values are never mutated after they
// are published; every change produces a new Info.
type Info struct {
	CurrentlyRunning       CurrentlyRunning
	AvailableUpdate        *AvailableUpdate
	Err                    error
	LastCheckForUpdateTime *time.Time
}

// UpdateEventType discriminates UpdateEvent.
type UpdateEventType string

const (
	UpdateEventNoUpdateAvailable UpdateEventType = "noUpdateAvailable"
	UpdateEventUpdateAvailable   UpdateEventType = "updateAvailable"
	UpdateEventError             UpdateEventType = "error"
)

// UpdateEvent is pushed by the agent's background update check.
type UpdateEvent struct {
	Type     UpdateEventType `json:"type"`
	Manifest *Manifest       `json:"manifest,omitempty"`
	Message  string          `json:"message,omitempty"`
}

// DownloadEventType discriminates DownloadEvent.
type DownloadEventType string

const (
	DownloadStart    DownloadEventType = "start"
	DownloadComplete DownloadEventType = "complete"
	DownloadError    DownloadEventType = "error"
)

// DownloadEvent reports the progress of DownloadUpdate. Err is only set
// for DownloadError.
type DownloadEvent struct {
	Type DownloadEventType
	Err  error
}

// DownloadHandler observes a download. It is the only place download
// failures are reported.
type DownloadHandler func(DownloadEvent)

// CheckResult holds the result of an update check against the agent.
type CheckResult struct {
	IsAvailable bool      `json:"isAvailable"`
	Manifest    *Manifest `json:"manifest,omitempty"`
}
