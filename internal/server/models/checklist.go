// Package models holds the server-side records persisted by the repositories.
package models

import "time"

// Checklist belongs to exactly one account (OwnerID).
type Checklist struct {
	ID          int64
	Title       string
	Description string
	OwnerID     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Steps is filled only by operations that return nested steps.
	Steps []Step
}

// Step belongs to exactly one checklist. Order is caller-supplied and not unique.
type Step struct {
	ID          int64
	ChecklistID int64
	Text        string
	Description string
	Order       int
	Completed   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
