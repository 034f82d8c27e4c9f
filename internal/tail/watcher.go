package tail

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/tessro/lookout/internal/core"
	"github.com/tessro/lookout/internal/dashboard"
)

// EventType represents the kind of registry change.
type EventType int

const (
	EventDeviceAdded EventType = iota
	EventDeviceSeen
	EventDeviceUpdated
	EventDeviceRemoved
)

// Event represents a change to one registry entry.
type Event struct {
	Type      EventType
	Timestamp time.Time
	Previous  *core.Device
	Current   *core.Device
}

// Device returns the entry the event is about.
func (e Event) Device() *core.Device {
	if e.Current != nil {
		return e.Current
	}
	return e.Previous
}

// Watcher follows the device registry and emits one event per changed
// entry. Every realtime notification triggers a full refetch which is
// diffed against the previous snapshot. A non-zero resync interval also
// refetches periodically, which covers missed notifications.
type Watcher struct {
	backend  core.Backend
	notifier core.Notifier
	table    string
	resync   time.Duration
	events   chan Event
	done     chan struct{}
}

// NewWatcher creates a registry watcher. notifier may be nil, in which case
// only the resync interval drives refetches.
func NewWatcher(b core.Backend, notifier core.Notifier, table string, resync time.Duration) *Watcher {
	if table == "" {
		table = core.TableDevices
	}
	if notifier == nil && resync == 0 {
		resync = 10 * time.Second
	}
	return &Watcher{
		backend:  b,
		notifier: notifier,
		table:    table,
		resync:   resync,
		events:   make(chan Event, 16),
		done:     make(chan struct{}),
	}
}

// Events returns the channel of registry events.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Start fetches the initial snapshot, emits it as added devices, and
// follows changes until ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	defer close(w.events)

	prev, err := dashboard.FetchDevices(ctx, w.backend, w.table)
	if err != nil {
		return err
	}
	if !w.emit(ctx, diffDevices(nil, prev)) {
		return ctx.Err()
	}

	changed := make(chan struct{}, 1)
	if w.notifier != nil {
		sub, err := w.notifier.Subscribe(ctx, w.table, core.EventAll, func(core.ChangeEvent) {
			select {
			case changed <- struct{}{}:
			default:
			}
		})
		if err != nil {
			return err
		}
		defer sub.Close()
	}

	var tick <-chan time.Time
	if w.resync > 0 {
		ticker := time.NewTicker(w.resync)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.done:
			return nil
		case <-changed:
		case <-tick:
		}

		curr, err := dashboard.FetchDevices(ctx, w.backend, w.table)
		if err != nil {
			log.Warn().Err(err).Msg("registry refetch failed")
			continue
		}
		if !w.emit(ctx, diffDevices(prev, curr)) {
			return ctx.Err()
		}
		prev = curr
	}
}

// emit delivers events in order, waiting for the consumer. It reports false
// when the watcher was stopped or ctx ended first.
func (w *Watcher) emit(ctx context.Context, events []Event) bool {
	for _, e := range events {
		select {
		case w.events <- e:
		case <-ctx.Done():
			return false
		case <-w.done:
			return false
		}
	}
	return true
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	close(w.done)
}

// diffDevices compares two registry snapshots keyed by registry id. Added
// and changed entries follow the order of curr; removed entries come last.
func diffDevices(prev, curr []core.Device) []Event {
	now := time.Now()
	before := lo.SliceToMap(prev, func(d core.Device) (string, core.Device) {
		return d.ID, d
	})

	var events []Event
	for i := range curr {
		c := curr[i]
		p, ok := before[c.ID]
		if !ok {
			events = append(events, Event{Type: EventDeviceAdded, Timestamp: now, Current: &c})
			continue
		}
		delete(before, c.ID)

		switch {
		case p.DeviceID != c.DeviceID || p.DeviceModel != c.DeviceModel || p.AndroidVersion != c.AndroidVersion:
			events = append(events, Event{Type: EventDeviceUpdated, Timestamp: now, Previous: &p, Current: &c})
		case !p.LastSeen.Equal(c.LastSeen):
			events = append(events, Event{Type: EventDeviceSeen, Timestamp: now, Previous: &p, Current: &c})
		}
	}

	for i := range prev {
		p := prev[i]
		if _, gone := before[p.ID]; gone {
			events = append(events, Event{Type: EventDeviceRemoved, Timestamp: now, Previous: &p})
		}
	}
	return events
}
