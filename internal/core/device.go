package core

import (
	"encoding/json"
	"fmt"
	"time"
)

// Device represents a remote device as stored in the registry table.
type Device struct {
	ID             string    `json:"id"`
	DeviceID       string    `json:"device_id"`
	DeviceModel    string    `json:"device_model"`
	AndroidVersion string    `json:"android_version"`
	LastSeen       time.Time `json:"last_seen"`
}

// timestampLayouts are the forms a last_seen column comes back in. Values
// without a zone are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999Z07",
	"2006-01-02 15:04:05.999999999",
}

// UnmarshalJSON decodes a registry row. last_seen may be null or a
// timestamp with or without a zone.
func (d *Device) UnmarshalJSON(data []byte) error {
	type row Device
	aux := struct {
		*row
		LastSeen *string `json:"last_seen"`
	}{row: (*row)(d)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	d.LastSeen = time.Time{}
	if aux.LastSeen == nil || *aux.LastSeen == "" {
		return nil
	}
	t, err := ParseTimestamp(*aux.LastSeen)
	if err != nil {
		return fmt.Errorf("last_seen: %w", err)
	}
	d.LastSeen = t
	return nil
}

// ParseTimestamp parses a database timestamp in any of the layouts the
// REST layer emits.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// ShortID returns the first eight characters of the external identifier.
func (d *Device) ShortID() string {
	if len(d.DeviceID) <= 8 {
		return d.DeviceID
	}
	return d.DeviceID[:8]
}

// Name returns a display name, falling back to the external identifier
// when the device did not report a model.
func (d *Device) Name() string {
	if d.DeviceModel != "" {
		return d.DeviceModel
	}
	return d.DeviceID
}
