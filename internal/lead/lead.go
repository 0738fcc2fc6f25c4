// Package lead defines the shared submission model produced by the form
// endpoints and consumed by the notifier, templates, and lead log. It is
// intentionally dependency-light: no other internal package is imported.
package lead

import (
	"time"

	"github.com/google/uuid"
)

// Kind distinguishes the two form flows.
type Kind string

const (
	KindQuote   Kind = "quote"
	KindContact Kind = "contact"
)

// Submission is one form submission. It is created once by the handler and
// never mutated — a resubmission produces a new Submission with a new ID.
type Submission struct {
	ID   uuid.UUID
	Kind Kind

	// Shared identity fields.
	Name    string
	Email   string
	Phone   string
	Company string

	// Contact-form fields.
	Subject          string
	Message          string
	PreferredContact string

	// Quote-form fields.
	Country     string
	Industry    string
	ProjectType string
	Budget      string
	Timeline    string
	Description string
	Features    []string

	// FinalPrice is the computed quote in whole currency units. Zero for
	// contact submissions.
	FinalPrice int64

	SubmittedAt time.Time
}

// New returns a Submission of the given kind with a fresh ID and timestamp.
func New(kind Kind) Submission {
	return Submission{
		ID:          uuid.New(),
		Kind:        kind,
		SubmittedAt: time.Now().UTC(),
	}
}
