package update

import "time"

// reservedExtraKey is kept out of ExtraPropertiesFromManifest; the
// hosting service stores its own project settings under it.
const reservedExtraKey = "eas"

// AvailableUpdateFromManifest builds the AvailableUpdate for a manifest.
// A nil manifest yields nil.
func AvailableUpdateFromManifest(m *Manifest) *AvailableUpdate {
	if m == nil {
		return nil
	}
	return &AvailableUpdate{
		UpdateID:  m.ID,
		CreatedAt: parseCreatedAt(m.CreatedAt),
		Manifest:  m,
	}
}

// parseCreatedAt accepts RFC 3339 timestamps with or without fractional
// seconds. Anything else is treated as absent.
func parseCreatedAt(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return nil
	}
	return &t
}

// ExtraPropertiesFromManifest returns the custom properties configured
// under extra.expoClient.extra, without the reserved "eas" key. The result
// is never nil.
func ExtraPropertiesFromManifest(m *Manifest) map[string]any {
	result := map[string]any{}
	if m == nil {
		return result
	}
	client, ok := m.Extra["expoClient"].(map[string]any)
	if !ok {
		return result
	}
	extra, ok := client["extra"].(map[string]any)
	if !ok {
		return result
	}
	for k, v := range extra {
		if k == reservedExtraKey {
			continue
		}
		result[k] = v
	}
	return result
}

// ExtraProperties returns the extra properties of the available update's
// manifest. It is empty when no update is available.
func (p *Provider) ExtraProperties() map[string]any {
	info := p.Info()
	if info.AvailableUpdate == nil {
		return ExtraPropertiesFromManifest(nil)
	}
	return ExtraPropertiesFromManifest(info.AvailableUpdate.Manifest)
}
