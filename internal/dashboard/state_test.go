package dashboard

import (
	"errors"
	"testing"

	"github.com/tessro/lookout/internal/core"
)

var (
	deviceA = core.Device{ID: "1", DeviceID: "abc123def456", DeviceModel: "Pixel 7"}
	deviceB = core.Device{ID: "2", DeviceID: "zzz999", DeviceModel: "Galaxy S22"}
)

func media(names ...string) []core.MediaFile {
	files := make([]core.MediaFile, 0, len(names))
	for _, n := range names {
		files = append(files, core.MediaFile{StorageObject: core.StorageObject{Name: n}})
	}
	return files
}

func TestRefreshReplacesDevices(t *testing.T) {
	var s State
	s, seq := s.BeginRefresh()
	s = s.RefreshComplete(seq, []core.Device{deviceA, deviceB}, nil)

	if len(s.Devices) != 2 {
		t.Fatalf("len(Devices) = %d, want 2", len(s.Devices))
	}
}

func TestRefreshFailureKeepsDevices(t *testing.T) {
	s := State{Devices: []core.Device{deviceA}}
	s, seq := s.BeginRefresh()
	s = s.RefreshComplete(seq, nil, errors.New("boom"))

	if len(s.Devices) != 1 || s.Devices[0].ID != "1" {
		t.Errorf("Devices = %+v, want unchanged", s.Devices)
	}
}

func TestRefreshDropsStaleResponse(t *testing.T) {
	var s State
	s, first := s.BeginRefresh()
	s, second := s.BeginRefresh()

	s = s.RefreshComplete(second, []core.Device{deviceB}, nil)
	s = s.RefreshComplete(first, []core.Device{deviceA}, nil)

	if len(s.Devices) != 1 || s.Devices[0].ID != "2" {
		t.Errorf("Devices = %+v, want only the newer response", s.Devices)
	}
}

func TestSelectClearsMediaAndStreaming(t *testing.T) {
	s := State{Media: media("old.jpg"), Streaming: true}
	s, _ = s.Select(deviceA)

	if s.Selected == nil || s.Selected.ID != "1" {
		t.Fatalf("Selected = %+v, want device 1", s.Selected)
	}
	if len(s.Media) != 0 {
		t.Errorf("Media = %v, want empty", s.Media)
	}
	if s.Streaming {
		t.Error("Streaming = true after select")
	}
}

func TestSelectionSwitchShowsOnlyNewDevice(t *testing.T) {
	var s State
	s, seqA := s.Select(deviceA)
	s, seqB := s.Select(deviceB)

	// B's listing arrives first, then A's late reply.
	s = s.MediaLoaded(seqB, deviceB.DeviceID, media("b.jpg"), nil)
	s = s.MediaLoaded(seqA, deviceA.DeviceID, media("a.jpg"), nil)

	if s.Selected.ID != "2" {
		t.Fatalf("Selected = %s, want 2", s.Selected.ID)
	}
	if len(s.Media) != 1 || s.Media[0].Name != "b.jpg" {
		t.Errorf("Media = %v, want only b.jpg", s.Media)
	}
}

func TestMediaLoadedIgnoresOtherDevice(t *testing.T) {
	var s State
	s, seq := s.Select(deviceA)
	s = s.MediaLoaded(seq, deviceB.DeviceID, media("b.jpg"), nil)

	if len(s.Media) != 0 {
		t.Errorf("Media = %v, want empty", s.Media)
	}
}

func TestMediaLoadedFailureEmptiesGallery(t *testing.T) {
	var s State
	s, seq := s.Select(deviceA)
	s = s.MediaLoaded(seq, deviceA.DeviceID, media("a.jpg"), nil)

	s, _ = s.IssueCommand(core.CommandStreamStart)
	s, tick, ok := s.BeginTick(deviceA.DeviceID)
	if !ok {
		t.Fatal("BeginTick() ok = false while streaming")
	}
	s = s.MediaLoaded(tick, deviceA.DeviceID, nil, errors.New("storage down"))

	if len(s.Media) != 0 {
		t.Errorf("Media = %v, want empty after failure", s.Media)
	}
	if !s.Streaming {
		t.Error("Streaming = false, a failed tick must not stop streaming")
	}
}

func TestBeginTick(t *testing.T) {
	tests := []struct {
		name   string
		setup  func() State
		device string
		want   bool
	}{
		{
			name:   "not streaming",
			setup:  func() State { s, _ := State{}.Select(deviceA); return s },
			device: deviceA.DeviceID,
			want:   false,
		},
		{
			name: "streaming selected device",
			setup: func() State {
				s, _ := State{}.Select(deviceA)
				s, _ = s.IssueCommand(core.CommandStreamStart)
				return s
			},
			device: deviceA.DeviceID,
			want:   true,
		},
		{
			name: "tick for previous device",
			setup: func() State {
				s, _ := State{}.Select(deviceA)
				s, _ = s.IssueCommand(core.CommandStreamStart)
				s, _ = s.Select(deviceB)
				s, _ = s.IssueCommand(core.CommandStreamStart)
				return s
			},
			device: deviceA.DeviceID,
			want:   false,
		},
		{
			name:   "no selection",
			setup:  func() State { return State{Streaming: true} },
			device: deviceA.DeviceID,
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, ok := tt.setup().BeginTick(tt.device)
			if ok != tt.want {
				t.Errorf("BeginTick() ok = %v, want %v", ok, tt.want)
			}
		})
	}
}

func TestTickDoesNotTouchSelection(t *testing.T) {
	s, _ := State{}.Select(deviceA)
	s, _ = s.IssueCommand(core.CommandStreamStart)
	s, seq, _ := s.BeginTick(deviceA.DeviceID)
	s = s.MediaLoaded(seq, deviceA.DeviceID, media("frame_1.jpg"), nil)

	if s.Selected.ID != "1" || !s.Streaming {
		t.Errorf("Selected = %s, Streaming = %v, want 1, true", s.Selected.ID, s.Streaming)
	}
	if len(s.Media) != 1 {
		t.Errorf("len(Media) = %d, want 1", len(s.Media))
	}
}

func TestIssueCommand(t *testing.T) {
	tests := []struct {
		name          string
		label         core.CommandType
		streaming     bool
		wantStreaming bool
	}{
		{"start", core.CommandStreamStart, false, true},
		{"stop", core.CommandStreamStop, true, false},
		{"location keeps flag on", core.CommandLocation, true, true},
		{"front cam keeps flag off", core.CommandCamFront, false, false},
		{"unknown label", core.CommandType("REBOOT"), true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := State{}.Select(deviceA)
			s.Streaming = tt.streaming

			s, cmd := s.IssueCommand(tt.label)
			if s.Streaming != tt.wantStreaming {
				t.Errorf("Streaming = %v, want %v", s.Streaming, tt.wantStreaming)
			}
			if cmd == nil {
				t.Fatal("IssueCommand() returned nil command")
			}
			if cmd.DeviceUUID != "1" || cmd.CommandType != tt.label {
				t.Errorf("command = %+v, want {1 %s}", *cmd, tt.label)
			}
		})
	}
}

func TestIssueCommandWithoutSelection(t *testing.T) {
	s, cmd := State{}.IssueCommand(core.CommandStreamStart)
	if cmd != nil {
		t.Errorf("command = %+v, want nil", *cmd)
	}
	if s.Streaming {
		t.Error("Streaming = true without a selected device")
	}
}

func TestStreamKey(t *testing.T) {
	s, _ := State{}.Select(deviceA)
	if _, ok := s.StreamKey(); ok {
		t.Error("StreamKey() ok = true while idle")
	}

	s, _ = s.IssueCommand(core.CommandStreamStart)
	key, ok := s.StreamKey()
	if !ok || key != deviceA.DeviceID {
		t.Errorf("StreamKey() = %q, %v, want %q, true", key, ok, deviceA.DeviceID)
	}
}

func TestIsSelected(t *testing.T) {
	s, _ := State{}.Select(deviceA)
	if !s.IsSelected(deviceA) {
		t.Error("IsSelected(A) = false")
	}
	if s.IsSelected(deviceB) {
		t.Error("IsSelected(B) = true")
	}
}

func TestSlowTickSkipsFollowingTicks(t *testing.T) {
	s, seq := State{}.Select(deviceA)
	s = s.MediaLoaded(seq, deviceA.DeviceID, media("a.jpg"), nil)
	s, _ = s.IssueCommand(core.CommandStreamStart)

	s, first, ok := s.BeginTick(deviceA.DeviceID)
	if !ok {
		t.Fatal("first BeginTick() ok = false")
	}
	s, _, ok = s.BeginTick(deviceA.DeviceID)
	if ok {
		t.Fatal("second BeginTick() ok = true while the first load is pending")
	}

	s = s.MediaLoaded(first, deviceA.DeviceID, media("frame_2.jpg", "frame_1.jpg"), nil)
	if len(s.Media) != 2 {
		t.Fatalf("len(Media) = %d, want 2: the slow load must still land", len(s.Media))
	}

	if _, _, ok = s.BeginTick(deviceA.DeviceID); !ok {
		t.Error("BeginTick() ok = false after the pending load landed")
	}
}

func TestSelectClearsPendingTick(t *testing.T) {
	s, _ := State{}.Select(deviceA)
	s, _ = s.IssueCommand(core.CommandStreamStart)
	s, _, _ = s.BeginTick(deviceA.DeviceID)

	s, seq := s.Select(deviceB)
	s = s.MediaLoaded(seq, deviceB.DeviceID, media("b.jpg"), nil)
	s, _ = s.IssueCommand(core.CommandStreamStart)

	if _, _, ok := s.BeginTick(deviceB.DeviceID); !ok {
		t.Error("BeginTick() ok = false, a pending tick for the old device must not block the new one")
	}
}
