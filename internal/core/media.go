package core

import (
	"strings"
	"time"
)

// captionLimit is the maximum caption length shown under a thumbnail.
const captionLimit = 20

// StorageObject is one entry of a storage listing.
type StorageObject struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// MediaFile is a storage object with its resolved public address.
type MediaFile struct {
	StorageObject
	PublicURL string `json:"public_url"`
}

// Caption returns the gallery caption: underscores become spaces and the
// result is cut to 20 characters.
func (m *MediaFile) Caption() string {
	return Caption(m.Name)
}

// Caption formats a storage object name for display.
func Caption(name string) string {
	s := strings.ReplaceAll(name, "_", " ")
	if r := []rune(s); len(r) > captionLimit {
		s = string(r[:captionLimit])
	}
	return s
}

// SortOrder is the direction of a sort.
type SortOrder string

const (
	Ascending  SortOrder = "asc"
	Descending SortOrder = "desc"
)

// SortBy selects the column and direction of a storage listing.
type SortBy struct {
	Column string    `json:"column"`
	Order  SortOrder `json:"order"`
}

// ListOptions configures a storage listing.
type ListOptions struct {
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
	SortBy SortBy `json:"sortBy"`
}
