// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"inspection_portal/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Auth Domain Events
// =============================================================================

// PasswordResetRequested is published when a staff member requests a password reset.
type PasswordResetRequested struct {
	BaseEvent
	UserID     uuid.UUID `json:"userId"`
	Email      string    `json:"email"`
	FullName   string    `json:"fullName"`
	ResetToken string    `json:"resetToken"`
}

func (e PasswordResetRequested) EventName() string { return "auth.password.reset_requested" }

// =============================================================================
// Quote Domain Events
// =============================================================================

// LeadSubmitted is published after a quote submission has been persisted.
type LeadSubmitted struct {
	BaseEvent
	LeadID       uuid.UUID `json:"leadId"`
	FullName     string    `json:"fullName"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	PackageName  string    `json:"packageName"`
	CityName     string    `json:"cityName"`
	Neighborhood string    `json:"neighborhood"`
	TotalArea    string    `json:"totalArea"`
	FinalPrice   string    `json:"finalPrice"`
}

func (e LeadSubmitted) EventName() string { return "quotes.lead.submitted" }

// =============================================================================
// Report Domain Events
// =============================================================================

// ReportDownloadRequested is published when a visitor requests the sample report.
type ReportDownloadRequested struct {
	BaseEvent
	DownloadID uuid.UUID `json:"downloadId"`
	Phone      string    `json:"phone"`
	FullName   string    `json:"fullName,omitempty"`
	Email      string    `json:"email,omitempty"`
	Source     string    `json:"source,omitempty"`
}

func (e ReportDownloadRequested) EventName() string { return "reports.download.requested" }
