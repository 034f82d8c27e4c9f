package tail

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/valyala/fasttemplate"
)

// Formatter formats events for output.
type Formatter struct {
	showEmoji     bool
	showTimestamp bool
	template      *fasttemplate.Template
}

// FormatterOption configures a Formatter.
type FormatterOption func(*Formatter)

// WithEmoji enables emoji output.
func WithEmoji(enabled bool) FormatterOption {
	return func(f *Formatter) {
		f.showEmoji = enabled
	}
}

// WithTimestamp enables timestamp output.
func WithTimestamp(enabled bool) FormatterOption {
	return func(f *Formatter) {
		f.showTimestamp = enabled
	}
}

// WithTemplate sets a custom format template. Placeholders are written as
// {name}, for example "{time} {type} {model}".
func WithTemplate(tmpl string) FormatterOption {
	return func(f *Formatter) {
		if tmpl != "" {
			t, err := fasttemplate.NewTemplate(tmpl, "{", "}")
			if err == nil {
				f.template = t
			}
		}
	}
}

// NewFormatter creates a new formatter with the given options.
func NewFormatter(opts ...FormatterOption) *Formatter {
	f := &Formatter{
		showEmoji:     true,
		showTimestamp: false,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format formats an event as a string.
func (f *Formatter) Format(e Event) string {
	if f.template != nil {
		return f.formatTemplate(e)
	}
	return f.formatLine(e)
}

func (f *Formatter) formatLine(e Event) string {
	var parts []string

	if f.showTimestamp {
		parts = append(parts, e.Timestamp.Format("15:04:05"))
	}
	if f.showEmoji {
		parts = append(parts, eventEmoji(e.Type))
	}
	parts = append(parts, eventDescription(e))

	return strings.Join(parts, " ")
}

func (f *Formatter) formatTemplate(e Event) string {
	vars := map[string]string{
		"type":  eventTypeName(e.Type),
		"emoji": eventEmoji(e.Type),
		"time":  e.Timestamp.Format("15:04:05"),
	}
	if d := e.Device(); d != nil {
		vars["id"] = d.ID
		vars["device_id"] = d.DeviceID
		vars["short_id"] = d.ShortID()
		vars["model"] = d.Name()
		vars["version"] = d.AndroidVersion
		vars["seen"] = d.LastSeen.Local().Format("2006-01-02 15:04:05")
	}

	return f.template.ExecuteFuncString(func(w io.Writer, tag string) (int, error) {
		return w.Write([]byte(vars[tag]))
	})
}

func eventDescription(e Event) string {
	d := e.Device()
	if d == nil {
		return "Unknown event"
	}

	switch e.Type {
	case EventDeviceAdded:
		return fmt.Sprintf("Connected: %s (%s...)", d.Name(), d.ShortID())
	case EventDeviceSeen:
		return fmt.Sprintf("Seen: %s %s", d.Name(), humanize.Time(d.LastSeen))
	case EventDeviceUpdated:
		if e.Previous != nil && e.Previous.AndroidVersion != d.AndroidVersion {
			return fmt.Sprintf("Updated: %s Android %s -> %s", d.Name(), e.Previous.AndroidVersion, d.AndroidVersion)
		}
		return fmt.Sprintf("Updated: %s", d.Name())
	case EventDeviceRemoved:
		return fmt.Sprintf("Removed: %s (%s...)", d.Name(), d.ShortID())
	default:
		return "Unknown event"
	}
}

func eventEmoji(t EventType) string {
	switch t {
	case EventDeviceAdded:
		return "📱"
	case EventDeviceSeen:
		return "👀"
	case EventDeviceUpdated:
		return "🔄"
	case EventDeviceRemoved:
		return "❌"
	default:
		return "❓"
	}
}

func eventTypeName(t EventType) string {
	switch t {
	case EventDeviceAdded:
		return "added"
	case EventDeviceSeen:
		return "seen"
	case EventDeviceUpdated:
		return "updated"
	case EventDeviceRemoved:
		return "removed"
	default:
		return "unknown"
	}
}
