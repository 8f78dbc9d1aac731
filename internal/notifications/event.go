// Package notifications is the notification gateway of the inspection engine.
// Engines publish domain events; the dispatcher resolves recipients from the
// routing table and delivers one notification per recipient to every sender.
// Delivery is fire-and-forget: failures are logged and never reach the caller.
package notifications

import (
	"time"

	"github.com/google/uuid"

	"github.com/AliAliAhmad/inspection-system-sub003/internal/registry"
)

// EventType names a domain event.
type EventType string

const (
	AssessmentFinalized    EventType = "assessment_finalized"
	EngineerReviewRequired EventType = "engineer_review_required"
	AdminReviewRequired    EventType = "admin_review_required"
	EquipmentStopped       EventType = "equipment_stopped"
	FollowupPending        EventType = "followup_pending"
	FollowupScheduled      EventType = "followup_scheduled"
	FollowupAssigned       EventType = "followup_assignment_created"
	FollowupOverdue        EventType = "followup_overdue"
	FollowupCancelled      EventType = "followup_cancelled"
)

// Priority ranks how urgently a notification should be surfaced.
type Priority string

const (
	PriorityNormal   Priority = "normal"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Event is a domain event emitted by an engine. Users lists direct recipients;
// the routing table adds the roles that always receive the event type.
type Event struct {
	Type     EventType
	Title    string
	Message  string
	Related  registry.JobRef
	Priority Priority
	Users    []uuid.UUID
}

// Notification is a single delivery to one user.
type Notification struct {
	ID          uuid.UUID         `json:"id"`
	UserID      uuid.UUID         `json:"user_id"`
	Type        EventType         `json:"type"`
	Title       string            `json:"title"`
	Message     string            `json:"message"`
	RelatedType *registry.JobKind `json:"related_type,omitempty"`
	RelatedID   *uuid.UUID        `json:"related_id,omitempty"`
	Priority    Priority          `json:"priority"`
	CreatedAt   time.Time         `json:"created_at"`
}

// For builds the notification of e addressed to user.
func (e Event) For(user uuid.UUID, now time.Time) Notification {
	n := Notification{
		ID:        uuid.New(),
		UserID:    user,
		Type:      e.Type,
		Title:     e.Title,
		Message:   e.Message,
		Priority:  e.Priority,
		CreatedAt: now,
	}
	if n.Priority == "" {
		n.Priority = PriorityNormal
	}
	if e.Related != nil {
		kind := e.Related.Kind()
		id := e.Related.RefID()
		n.RelatedType = &kind
		n.RelatedID = &id
	}
	return n
}
