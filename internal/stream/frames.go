package stream

import "watchtower/dashd/internal/topo"

// envelope carries just the discriminator; the full frame is re-decoded per
// type so one malformed frame never takes the connection down.
type envelope struct {
	Type string `json:"type"`
}

type statusChange struct {
	DeviceID  int64  `json:"device_id"`
	Hostname  string `json:"hostname"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
}

type statusChangeFrame struct {
	Changes []statusChange `json:"changes"`
}

type alertEvent struct {
	ID        int64  `json:"id"`
	DeviceID  int64  `json:"device_id"`
	Hostname  string `json:"hostname"`
	Severity  string `json:"severity"`
	Title     string `json:"title"`
	Timestamp string `json:"timestamp"`
}

type newAlertsFrame struct {
	Alerts []alertEvent `json:"alerts"`
}

type alertsResolvedFrame struct {
	AlertIDs []int64 `json:"alert_ids"`
}

type speedtestFrame struct {
	Result topo.SpeedtestResult `json:"result"`
}
