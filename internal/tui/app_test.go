package tui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tessro/lookout/internal/core"
)

type fakeBackend struct {
	mu      sync.Mutex
	devices []core.Device
	objects map[string][]core.StorageObject
	insErr  error
	inserts []any
	lists   int
}

func (f *fakeBackend) QueryAll(_ context.Context, _, _ string, _ core.SortOrder, out any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	*out.(*[]core.Device) = append([]core.Device(nil), f.devices...)
	return nil
}

func (f *fakeBackend) Insert(_ context.Context, _ string, record any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserts = append(f.inserts, record)
	return f.insErr
}

func (f *fakeBackend) ListObjects(_ context.Context, prefix string, _ core.ListOptions) ([]core.StorageObject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	return f.objects[prefix], nil
}

func (f *fakeBackend) PublicURL(prefix, name string) string {
	return "https://cdn.test/" + prefix + "/" + name
}

type fakeSub struct {
	mu     sync.Mutex
	closed bool
}

func (s *fakeSub) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

type fakeNotifier struct {
	sub *fakeSub
}

func (n *fakeNotifier) Subscribe(context.Context, string, core.EventType, func(core.ChangeEvent)) (core.Subscription, error) {
	return n.sub, nil
}

var (
	pixel  = core.Device{ID: "1", DeviceID: "abc123def456", DeviceModel: "Pixel 7", AndroidVersion: "14"}
	galaxy = core.Device{ID: "2", DeviceID: "zzz999", DeviceModel: "Galaxy S22", AndroidVersion: "13"}
)

func newTestModel(t *testing.T, b *fakeBackend, interval time.Duration) Model {
	t.Helper()
	if interval == 0 {
		interval = time.Hour
	}
	app := NewApp(Options{
		Backend:        b,
		StreamInterval: interval,
		OpenURL:        func(string) error { return nil },
	})
	t.Cleanup(func() { app.Close() })

	m := NewModel(app)
	m = apply(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	return apply(t, m, m.fetchDevices(m.initSeq)())
}

func apply(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

// collect runs cmd and every command it batches. Commands that block (the
// event listener) are abandoned after a short wait.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}

	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()

	var msg tea.Msg
	select {
	case msg = <-done:
	case <-time.After(200 * time.Millisecond):
		return nil
	}

	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

func press(t *testing.T, m Model, k string) (Model, tea.Cmd) {
	t.Helper()
	var msg tea.KeyMsg
	switch k {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func settle(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	for _, msg := range collect(cmd) {
		m = apply(t, m, msg)
	}
	return m
}

func TestInitialRefresh(t *testing.T) {
	b := &fakeBackend{devices: []core.Device{pixel, galaxy}}
	m := newTestModel(t, b, 0)

	if len(m.state.Devices) != 2 {
		t.Fatalf("len(Devices) = %d, want 2", len(m.state.Devices))
	}
	view := m.View()
	for _, want := range []string{"Connected Devices", "Pixel 7", "ID: abc123de...", "Ver: 14", "Galaxy S22", "Ver: 13", "Select a device to begin."} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestSelectDeviceLoadsMedia(t *testing.T) {
	b := &fakeBackend{
		devices: []core.Device{pixel},
		objects: map[string][]core.StorageObject{pixel.DeviceID: {{Name: "shot_1.jpg"}}},
	}
	m := newTestModel(t, b, 0)

	m, cmd := press(t, m, "enter")
	if m.state.Selected == nil || m.state.Selected.ID != "1" {
		t.Fatalf("Selected = %+v, want pixel", m.state.Selected)
	}
	m = settle(t, m, cmd)

	if len(m.state.Media) != 1 || m.state.Media[0].PublicURL != "https://cdn.test/abc123def456/shot_1.jpg" {
		t.Errorf("Media = %+v", m.state.Media)
	}
	view := m.View()
	if !strings.Contains(view, "Control: Pixel 7") {
		t.Error("view missing control title")
	}
	if !strings.Contains(view, "shot 1.jpg") {
		t.Error("gallery missing caption \"shot 1.jpg\"")
	}
}

func TestSwitchingSelectionDropsStaleMedia(t *testing.T) {
	b := &fakeBackend{
		devices: []core.Device{pixel, galaxy},
		objects: map[string][]core.StorageObject{
			pixel.DeviceID:  {{Name: "a.jpg"}},
			galaxy.DeviceID: {{Name: "b.jpg"}},
		},
	}
	m := newTestModel(t, b, 0)

	m, loadA := press(t, m, "enter")
	m, _ = press(t, m, "down")
	m, loadB := press(t, m, "enter")

	// B's listing lands first, A's reply arrives late.
	m = settle(t, m, loadB)
	m = settle(t, m, loadA)

	if m.state.Selected.ID != "2" {
		t.Fatalf("Selected = %s, want 2", m.state.Selected.ID)
	}
	if len(m.state.Media) != 1 || m.state.Media[0].Name != "b.jpg" {
		t.Errorf("Media = %+v, want only b.jpg", m.state.Media)
	}
}

func TestCommandWithoutSelectionIsNoop(t *testing.T) {
	b := &fakeBackend{devices: []core.Device{pixel}}
	m := newTestModel(t, b, 0)

	m, cmd := press(t, m, "4")
	if cmd != nil {
		t.Error("expected no command without a selected device")
	}
	if m.state.Streaming {
		t.Error("Streaming = true without a selected device")
	}
	if len(b.inserts) != 0 {
		t.Errorf("inserts = %d, want 0", len(b.inserts))
	}
}

func TestLocationWritesOneRecord(t *testing.T) {
	b := &fakeBackend{devices: []core.Device{pixel}}
	m := newTestModel(t, b, 0)

	m, cmd := press(t, m, "enter")
	m = settle(t, m, cmd)

	m, cmd = press(t, m, "3")
	m = settle(t, m, cmd)

	if len(b.inserts) != 1 {
		t.Fatalf("inserts = %d, want 1", len(b.inserts))
	}
	want := core.Command{DeviceUUID: "1", CommandType: core.CommandLocation}
	if b.inserts[0] != want {
		t.Errorf("record = %+v, want %+v", b.inserts[0], want)
	}
	if m.state.Streaming {
		t.Error("LOCATION must not change streaming")
	}
}

func TestStreamingBindsSingleTimer(t *testing.T) {
	b := &fakeBackend{devices: []core.Device{pixel, galaxy}}
	m := newTestModel(t, b, 0)
	ticker := m.app.ticker

	m, _ = press(t, m, "enter")
	m, _ = press(t, m, "4")

	if !m.state.Streaming {
		t.Fatal("Streaming = false after start")
	}
	if key, ok := ticker.Active(); !ok || key != pixel.DeviceID {
		t.Errorf("Active() = %q, %v, want %q", key, ok, pixel.DeviceID)
	}

	// Selecting another device forces streaming off.
	m, _ = press(t, m, "down")
	m, _ = press(t, m, "enter")
	if m.state.Streaming {
		t.Error("Streaming = true after selection change")
	}
	if _, ok := ticker.Active(); ok {
		t.Error("timer still active after selection change")
	}

	m, _ = press(t, m, "4")
	m, _ = press(t, m, "5")
	if _, ok := ticker.Active(); ok {
		t.Error("timer still active after stop")
	}
	if ticker.Started() != 2 {
		t.Errorf("Started() = %d, want 2", ticker.Started())
	}
}

func TestStreamTickReloadsMedia(t *testing.T) {
	b := &fakeBackend{
		devices: []core.Device{pixel},
		objects: map[string][]core.StorageObject{pixel.DeviceID: {{Name: "frame_1.jpg"}}},
	}
	m := newTestModel(t, b, 0)

	m, _ = press(t, m, "enter")
	m, _ = press(t, m, "4")

	next, cmd := m.Update(streamTickMsg{deviceID: pixel.DeviceID})
	m = settle(t, next.(Model), cmd)

	if len(m.state.Media) != 1 {
		t.Errorf("len(Media) = %d, want 1", len(m.state.Media))
	}
	if !m.state.Streaming || m.state.Selected.ID != "1" {
		t.Error("tick changed selection or streaming")
	}
}

func TestStaleTickIgnored(t *testing.T) {
	b := &fakeBackend{
		devices: []core.Device{pixel},
		objects: map[string][]core.StorageObject{"old-device": {{Name: "x.jpg"}}},
	}
	m := newTestModel(t, b, 0)

	m, _ = press(t, m, "enter")
	m, _ = press(t, m, "4")

	next, cmd := m.Update(streamTickMsg{deviceID: "old-device"})
	m = settle(t, next.(Model), cmd)

	if len(m.state.Media) != 0 {
		t.Errorf("Media = %+v, want empty", m.state.Media)
	}
}

func TestStreamTimerDeliversTicks(t *testing.T) {
	b := &fakeBackend{devices: []core.Device{pixel}}
	m := newTestModel(t, b, 10*time.Millisecond)

	m, _ = press(t, m, "enter")
	_, _ = press(t, m, "4")

	select {
	case msg := <-m.app.events:
		tick, ok := msg.(streamTickMsg)
		if !ok || tick.deviceID != pixel.DeviceID {
			t.Errorf("event = %#v, want stream tick for pixel", msg)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no stream tick delivered")
	}
}

func TestCommandFailureShowsBlockingAlert(t *testing.T) {
	b := &fakeBackend{
		devices: []core.Device{pixel},
		insErr:  errors.New("new row violates row-level security policy"),
	}
	m := newTestModel(t, b, 0)

	m, _ = press(t, m, "enter")
	m, cmd := press(t, m, "4")
	m = settle(t, m, cmd)

	if m.alert != "Error: new row violates row-level security policy" {
		t.Fatalf("alert = %q", m.alert)
	}
	if !m.state.Streaming {
		t.Error("streaming flag must not roll back on failure")
	}
	if !strings.Contains(m.View(), "row-level security") {
		t.Error("view does not show the alert")
	}

	m, _ = press(t, m, "q")
	if m.quitting || m.alert == "" {
		t.Error("alert must block other keys")
	}

	m, _ = press(t, m, "enter")
	if m.alert != "" {
		t.Error("enter should dismiss the alert")
	}
}

func TestChangeEventRefreshesRegistry(t *testing.T) {
	b := &fakeBackend{devices: []core.Device{pixel}}
	m := newTestModel(t, b, 0)

	b.mu.Lock()
	b.devices = []core.Device{pixel, galaxy}
	b.mu.Unlock()

	next, cmd := m.Update(changeMsg{Type: core.EventInsert, Table: core.TableDevices})
	m = settle(t, next.(Model), cmd)

	if len(m.state.Devices) != 2 {
		t.Errorf("len(Devices) = %d, want 2", len(m.state.Devices))
	}
}

func TestCloseTearsDownSubscription(t *testing.T) {
	sub := &fakeSub{}
	app := NewApp(Options{
		Backend:  &fakeBackend{},
		Notifier: &fakeNotifier{sub: sub},
	})
	m := NewModel(app)

	m = apply(t, m, m.subscribe()())
	if !m.live {
		t.Error("live = false after subscribe")
	}

	if err := app.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	sub.mu.Lock()
	defer sub.mu.Unlock()
	if !sub.closed {
		t.Error("subscription not closed")
	}
}

func TestFocusCycle(t *testing.T) {
	m := newTestModel(t, &fakeBackend{}, 0)

	for i := 0; i < int(panelCount); i++ {
		m, _ = press(t, m, "tab")
	}
	if m.focusedPanel != PanelDevices {
		t.Errorf("focusedPanel = %v, want PanelDevices", m.focusedPanel)
	}
}

func TestSlowTickLoadSkipsNextTick(t *testing.T) {
	b := &fakeBackend{
		devices: []core.Device{pixel},
		objects: map[string][]core.StorageObject{pixel.DeviceID: {{Name: "frame_1.jpg"}}},
	}
	m := newTestModel(t, b, 0)

	m, cmd := press(t, m, "enter")
	m = settle(t, m, cmd)
	m, _ = press(t, m, "4")

	next, first := m.Update(streamTickMsg{deviceID: pixel.DeviceID})
	m = next.(Model)
	next, second := m.Update(streamTickMsg{deviceID: pixel.DeviceID})
	m = next.(Model)

	b.mu.Lock()
	before := b.lists
	b.mu.Unlock()

	m = settle(t, m, second)
	m = settle(t, m, first)

	b.mu.Lock()
	defer b.mu.Unlock()
	if got := b.lists - before; got != 1 {
		t.Errorf("listings = %d, want 1 while the first tick was pending", got)
	}
	if len(m.state.Media) != 1 {
		t.Errorf("len(Media) = %d, want 1 from the slow tick", len(m.state.Media))
	}
}
