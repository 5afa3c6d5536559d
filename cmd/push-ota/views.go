package main

import (
	"time"

	ui "github.com/pushchain/push-ota/internal/ui"
	"github.com/pushchain/push-ota/internal/update"
)

// availableView is the serialized form of update.AvailableUpdate.
type availableView struct {
	UpdateID  string           `json:"updateId,omitempty" yaml:"updateId,omitempty"`
	CreatedAt *time.Time       `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
	Manifest  *update.Manifest `json:"manifest,omitempty" yaml:"manifest,omitempty"`
}

// infoView is the serialized form of update.Info.
type infoView struct {
	CurrentlyRunning       update.CurrentlyRunning `json:"currentlyRunning" yaml:"currentlyRunning"`
	IsUpdateAvailable      bool                    `json:"isUpdateAvailable" yaml:"isUpdateAvailable"`
	AvailableUpdate        *availableView          `json:"availableUpdate,omitempty" yaml:"availableUpdate,omitempty"`
	Error                  string                  `json:"error,omitempty" yaml:"error,omitempty"`
	LastCheckForUpdateTime *time.Time              `json:"lastCheckForUpdateTime,omitempty" yaml:"lastCheckForUpdateTime,omitempty"`
}

func newInfoView(info update.Info) infoView {
	v := infoView{
		CurrentlyRunning:       info.CurrentlyRunning,
		IsUpdateAvailable:      info.AvailableUpdate != nil,
		LastCheckForUpdateTime: info.LastCheckForUpdateTime,
	}
	if a := info.AvailableUpdate; a != nil {
		v.AvailableUpdate = &availableView{UpdateID: a.UpdateID, CreatedAt: a.CreatedAt, Manifest: a.Manifest}
	}
	if info.Err != nil {
		v.Error = info.Err.Error()
	}
	return v
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func printRunning(p ui.Printer, r update.CurrentlyRunning) {
	p.Section("Currently running")
	id := orDash(r.UpdateID)
	if r.IsEmbeddedLaunch {
		id += " (embedded)"
	}
	p.KeyValueLine("Update ID", id, "")
	p.KeyValueLine("Channel", orDash(r.Channel), "")
	p.KeyValueLine("Runtime version", orDash(r.RuntimeVersion), "")
	p.KeyValueLine("Created", formatTime(r.CreatedAt), "dim")
	if r.IsEmergencyLaunch {
		p.Warn("Emergency launch: the app fell back to a previous bundle")
	}
}

func printInfoText(p ui.Printer, info update.Info) {
	if flagQuiet {
		v := newInfoView(info)
		p.Textf("available=%v update_id=%s error=%q\n", v.IsUpdateAvailable, availableID(info), v.Error)
		return
	}

	printRunning(p, info.CurrentlyRunning)
	p.Textf("\n")
	p.Section("Update")
	switch {
	case info.Err != nil:
		p.KeyValueLine("Status", info.Err.Error(), "error")
	case info.AvailableUpdate != nil:
		p.KeyValueLine("Status", "update available", "success")
		p.KeyValueLine("Update ID", orDash(info.AvailableUpdate.UpdateID), "")
		p.KeyValueLine("Created", formatTime(info.AvailableUpdate.CreatedAt), "dim")
	default:
		p.KeyValueLine("Status", "up to date", "")
	}
	p.KeyValueLine("Last check", formatTime(info.LastCheckForUpdateTime), "dim")
}

func availableID(info update.Info) string {
	if info.AvailableUpdate == nil {
		return ""
	}
	return info.AvailableUpdate.UpdateID
}
