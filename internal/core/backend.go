package core

import "context"

// Table names used by the dashboard.
const (
	TableDevices  = "devices"
	TableCommands = "commands"
)

// EventType is a row-level change event kind.
type EventType string

const (
	EventAll    EventType = "*"
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
)

// ChangeEvent is a row-level change pushed by the backend.
type ChangeEvent struct {
	Type      EventType      `json:"type"`
	Table     string         `json:"table"`
	Schema    string         `json:"schema"`
	Record    map[string]any `json:"record"`
	OldRecord map[string]any `json:"old_record"`
}

// Backend defines the data and storage operations of the hosted service.
type Backend interface {
	// QueryAll fetches every row of a table ordered by one column.
	QueryAll(ctx context.Context, table, orderBy string, order SortOrder, out any) error
	// Insert appends one row to a table.
	Insert(ctx context.Context, table string, record any) error
	// ListObjects lists storage objects under a path prefix.
	ListObjects(ctx context.Context, prefix string, opts ListOptions) ([]StorageObject, error)
	// PublicURL resolves the public address of a stored object.
	PublicURL(prefix, name string) string
}

// Subscription is a handle to an open change channel.
type Subscription interface {
	Close() error
}

// Notifier delivers row-level change events for a table.
type Notifier interface {
	Subscribe(ctx context.Context, table string, event EventType, fn func(ChangeEvent)) (Subscription, error)
}
