package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Command       string     `json:"command"`
	Link          LinkJSON   `json:"link"`
	UptimeSeconds int64      `json:"uptime_seconds"`
	IdleSeconds   int64      `json:"idle_seconds"`
	StartTime     string     `json:"start_time"`
	Timestamp     string     `json:"timestamp"`
	BootCause     string     `json:"boot_cause"`
	MQTT          MQTTStatus `json:"mqtt"`
	Counts        CountsJSON `json:"counts"`
	Config        ConfigJSON `json:"config"`
}

// LinkJSON reports the BLE link state.
type LinkJSON struct {
	Phase       string `json:"phase"`
	Client      string `json:"client,omitempty"`
	Connections uint64 `json:"connections"`
}

// MQTTStatus reports MQTT mirror state.
type MQTTStatus struct {
	Enabled   bool   `json:"enabled"`
	Connected bool   `json:"connected"`
	Broker    string `json:"broker,omitempty"`
}

// CountsJSON is the JSON representation of activity counts.
type CountsJSON struct {
	Samples     int `json:"samples"`
	Transitions int `json:"transitions"`
}

// ConfigJSON is the JSON representation of the configuration.
type ConfigJSON struct {
	PollMs        int64  `json:"poll_ms"`
	SettleMs      int64  `json:"settle_ms"`
	IdleTimeoutMs int64  `json:"idle_timeout_ms"`
	BudgetMs      int64  `json:"suspend_budget_ms"`
	Low           int    `json:"threshold_low"`
	High          int    `json:"threshold_high"`
	LeftAsSelect  bool   `json:"left_as_select"`
	ButtonWakes   bool   `json:"button_is_activity"`
	Name          string `json:"name"`
	HTTPAddr      string `json:"http_addr"`
}

// FormatJSON returns the JSON status for the web endpoint.
func FormatJSON(snap Snapshot) []byte {
	cmd := string(snap.Command)
	if cmd == "" {
		cmd = "UNKNOWN"
	}

	sj := StatusJSON{
		Status: StatusInner{
			Command: cmd,
			Link: LinkJSON{
				Phase:       snap.Link.Phase.String(),
				Client:      string(snap.Link.Handle),
				Connections: snap.Connections,
			},
			UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
			IdleSeconds:   int64(snap.IdleFor().Truncate(time.Second).Seconds()),
			StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
			Timestamp:     snap.Now.UTC().Format(time.RFC3339),
			BootCause:     snap.Config.BootCause,
			MQTT: MQTTStatus{
				Enabled:   snap.Config.Broker != "",
				Connected: snap.MQTTConnected,
				Broker:    snap.Config.Broker,
			},
			Counts: CountsJSON{
				Samples:     snap.Counts.Samples,
				Transitions: snap.Counts.Transitions,
			},
			Config: ConfigJSON{
				PollMs:        snap.Config.PollMs,
				SettleMs:      snap.Config.SettleMs,
				IdleTimeoutMs: snap.Config.IdleTimeoutMs,
				BudgetMs:      snap.Config.BudgetMs,
				Low:           snap.Config.Low,
				High:          snap.Config.High,
				LeftAsSelect:  snap.Config.LeftAsSelect,
				ButtonWakes:   snap.Config.ButtonWakes,
				Name:          snap.Config.Name,
				HTTPAddr:      snap.Config.HTTPAddr,
			},
		},
	}

	data, _ := json.MarshalIndent(sj, "", "  ")
	return data
}
