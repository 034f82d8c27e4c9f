package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tessro/lookout/internal/core"
	lkerrors "github.com/tessro/lookout/internal/errors"
)

func TestFetchDevices(t *testing.T) {
	seen := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	b := &fakeBackend{devices: []core.Device{
		{ID: "1", DeviceID: "abc123def456", DeviceModel: "Pixel 7", AndroidVersion: "14", LastSeen: seen},
	}}

	devices, err := FetchDevices(context.Background(), b, "")
	if err != nil {
		t.Fatalf("FetchDevices() error = %v", err)
	}
	if len(devices) != 1 || devices[0].ShortID() != "abc123de" {
		t.Errorf("devices = %+v", devices)
	}
}

func TestFetchDevicesError(t *testing.T) {
	b := &fakeBackend{queryErr: errors.New("relation does not exist")}

	if _, err := FetchDevices(context.Background(), b, "devices"); err == nil {
		t.Fatal("expected error")
	}
}

func TestLoadMedia(t *testing.T) {
	b := &fakeBackend{objects: map[string][]core.StorageObject{
		"abc123": {{Name: "shot_2.jpg"}, {Name: "shot_1.jpg"}},
	}}

	files, err := LoadMedia(context.Background(), b, "abc123")
	if err != nil {
		t.Fatalf("LoadMedia() error = %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("len(files) = %d, want 2", len(files))
	}
	if files[0].PublicURL != "https://cdn.test/abc123/shot_2.jpg" {
		t.Errorf("PublicURL = %q", files[0].PublicURL)
	}

	opts := b.listOpts[0]
	if opts.Limit != MediaLimit || opts.SortBy.Column != "created_at" || opts.SortBy.Order != core.Descending {
		t.Errorf("list options = %+v", opts)
	}
}

func TestLoadMediaError(t *testing.T) {
	b := &fakeBackend{listErr: errors.New("bucket not found")}

	files, err := LoadMedia(context.Background(), b, "abc123")
	if err == nil {
		t.Fatal("expected error")
	}
	if files != nil {
		t.Errorf("files = %v, want nil", files)
	}
}

func TestDispatcherSend(t *testing.T) {
	b := &fakeBackend{}
	j := &fakeJournal{}
	d := NewDispatcher(b, "", j)

	if err := d.Send(context.Background(), deviceA, core.CommandLocation); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if len(b.inserts) != 1 {
		t.Fatalf("inserts = %d, want 1", len(b.inserts))
	}
	call := b.inserts[0]
	if call.table != core.TableCommands {
		t.Errorf("table = %q, want %q", call.table, core.TableCommands)
	}
	cmd, ok := call.record.(core.Command)
	if !ok {
		t.Fatalf("record type = %T", call.record)
	}
	if cmd.DeviceUUID != "1" || cmd.CommandType != core.CommandLocation {
		t.Errorf("record = %+v", cmd)
	}
	if len(j.calls) != 1 || j.calls[0].err != nil {
		t.Errorf("journal calls = %+v", j.calls)
	}
}

func TestDispatcherSendFailure(t *testing.T) {
	b := &fakeBackend{insErr: errors.New("permission denied for table commands")}
	j := &fakeJournal{}
	d := NewDispatcher(b, "commands", j)

	err := d.Send(context.Background(), deviceA, core.CommandCamBack)
	if err == nil || err.Error() != "permission denied for table commands" {
		t.Fatalf("Send() error = %v", err)
	}
	if len(b.inserts) != 1 {
		t.Errorf("inserts = %d, want exactly 1 (no retry)", len(b.inserts))
	}
	if len(j.calls) != 1 || j.calls[0].err == nil {
		t.Errorf("journal should record the failure: %+v", j.calls)
	}
}

func TestDispatcherUnknownLabel(t *testing.T) {
	b := &fakeBackend{}
	d := NewDispatcher(b, "", nil)

	if err := d.Send(context.Background(), deviceA, core.CommandType("REBOOT")); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if len(b.inserts) != 1 {
		t.Errorf("inserts = %d, want 1", len(b.inserts))
	}
}

func TestDispatcherJournalErrorIgnored(t *testing.T) {
	b := &fakeBackend{}
	j := &fakeJournal{err: errors.New("disk full")}
	d := NewDispatcher(b, "", j)

	if err := d.Send(context.Background(), deviceA, core.CommandCamFront); err != nil {
		t.Errorf("Send() error = %v, journal failures must not surface", err)
	}
}

func TestFindDevice(t *testing.T) {
	devices := []core.Device{deviceA, deviceB}

	tests := []struct {
		name    string
		query   string
		wantID  string
		wantErr bool
	}{
		{"registry id", "2", "2", false},
		{"external id", "abc123def456", "1", false},
		{"prefix", "abc123", "1", false},
		{"model", "Galaxy S22", "2", false},
		{"model prefix any case", "galaxy", "2", false},
		{"short prefix", "abc", "", true},
		{"missing", "nope", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := FindDevice(devices, tt.query)
			if tt.wantErr {
				if !errors.Is(err, lkerrors.ErrDeviceNotFound) {
					t.Errorf("error = %v, want ErrDeviceNotFound", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("FindDevice() error = %v", err)
			}
			if d.ID != tt.wantID {
				t.Errorf("ID = %q, want %q", d.ID, tt.wantID)
			}
		})
	}
}
