package dashboard

import (
	"github.com/tessro/lookout/internal/core"
)

// State is the dashboard's view state. Every transition is a pure function
// returning the next state; the caller owns the single current value.
//
// Registry and media requests are numbered. A response only lands if it
// answers the latest request for its target, so a slow reply can never
// overwrite a newer one. At most one streaming tick load is in flight;
// ticks that arrive while it is pending are skipped.
type State struct {
	Devices   []core.Device
	Selected  *core.Device
	Media     []core.MediaFile
	Streaming bool

	registrySeq  uint64
	mediaSeq     uint64
	tickInFlight bool
}

// BeginRefresh issues a new registry request and returns its sequence.
func (s State) BeginRefresh() (State, uint64) {
	s.registrySeq++
	return s, s.registrySeq
}

// RefreshComplete applies a registry response. Failed or stale responses
// leave the device list unchanged.
func (s State) RefreshComplete(seq uint64, devices []core.Device, err error) State {
	if seq != s.registrySeq || err != nil {
		return s
	}
	s.Devices = devices
	return s
}

// Select makes d the selected device, clears the gallery and forces
// streaming off. It returns the sequence of the media load that must follow.
func (s State) Select(d core.Device) (State, uint64) {
	selected := d
	s.Selected = &selected
	s.Media = nil
	s.Streaming = false
	s.tickInFlight = false
	s.mediaSeq++
	return s, s.mediaSeq
}

// BeginTick issues a media reload for a streaming tick. It reports false
// when the tick no longer matches the selection, streaming has ended, or
// the previous tick's load has not landed yet.
func (s State) BeginTick(deviceID string) (State, uint64, bool) {
	if !s.Streaming || s.Selected == nil || s.Selected.DeviceID != deviceID {
		return s, 0, false
	}
	if s.tickInFlight {
		return s, 0, false
	}
	s.tickInFlight = true
	s.mediaSeq++
	return s, s.mediaSeq, true
}

// MediaLoaded applies a media listing. Responses for an older request or
// another device are dropped. A failed listing empties the gallery.
func (s State) MediaLoaded(seq uint64, deviceID string, files []core.MediaFile, err error) State {
	if seq != s.mediaSeq || s.Selected == nil || s.Selected.DeviceID != deviceID {
		return s
	}
	s.tickInFlight = false
	if err != nil {
		s.Media = nil
		return s
	}
	s.Media = files
	return s
}

// IssueCommand applies the local effect of a command label and returns the
// record to write. Without a selection it returns a nil command and the
// state unchanged.
func (s State) IssueCommand(label core.CommandType) (State, *core.Command) {
	if s.Selected == nil {
		return s, nil
	}
	switch label {
	case core.CommandStreamStart:
		s.Streaming = true
	case core.CommandStreamStop:
		s.Streaming = false
	}
	return s, &core.Command{
		DeviceUUID:  s.Selected.ID,
		CommandType: label,
	}
}

// IsSelected reports whether d is the selected device.
func (s State) IsSelected(d core.Device) bool {
	return s.Selected != nil && s.Selected.ID == d.ID
}

// StreamKey returns the device the streaming timer should be bound to.
func (s State) StreamKey() (string, bool) {
	if !s.Streaming || s.Selected == nil {
		return "", false
	}
	return s.Selected.DeviceID, true
}
