package domain

import "time"

// Source identifies the provider family a posting was fetched from.
type Source string

const (
	SourceGreenhouse Source = "greenhouse"
	SourceLever      Source = "lever"
	SourceRemoteOK   Source = "remoteok"
)

// Job is one posting in canonical form. Records are value types and
// are never mutated once built; pipeline stages produce new slices.
type Job struct {
	Company     string     `json:"company"`
	Title       string     `json:"title"`
	Location    string     `json:"location"` // "City, Region, Country", "Remote", or "" when unspecified
	URL         string     `json:"url"`
	PostedAt    *time.Time `json:"posted_at,omitempty"`
	Source      Source     `json:"source"`
	ExternalID  string     `json:"external_id"` // provider-scoped posting id
	Description string     `json:"description,omitempty"`
}
