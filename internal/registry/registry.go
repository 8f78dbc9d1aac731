// Package registry is the equipment, assignment, and roster collaborator of the
// inspection engine. It owns equipment status, inspection assignments, the
// user roster with its leave calendar, and point awards. Every operation takes
// a repository.DB so callers can include it in their own transaction.
package registry

import (
	"time"

	"github.com/google/uuid"
)

// Role is a user's function in the inspection workflow.
type Role string

const (
	RoleInspector Role = "inspector"
	RoleEngineer  Role = "engineer"
	RoleAdmin     Role = "admin"
)

// Specialization is an inspector's discipline.
type Specialization string

const (
	Mechanical Specialization = "mechanical"
	Electrical Specialization = "electrical"
)

// EquipmentStatus is the operating state of a piece of equipment.
type EquipmentStatus string

const (
	EquipmentActive           EquipmentStatus = "active"
	EquipmentUnderMaintenance EquipmentStatus = "under_maintenance"
	EquipmentStopped          EquipmentStatus = "stopped"
)

// Location is a berth area where equipment is installed.
type Location string

const (
	East Location = "east"
	West Location = "west"
)

// Valid reports whether l is a known location.
func (l Location) Valid() bool {
	return l == East || l == West
}

// AssignmentStatus tracks an inspection assignment.
type AssignmentStatus string

const (
	AssignmentAssigned     AssignmentStatus = "assigned"
	AssignmentInProgress   AssignmentStatus = "in_progress"
	AssignmentMechComplete AssignmentStatus = "mech_complete"
	AssignmentElecComplete AssignmentStatus = "elec_complete"
	AssignmentBothComplete AssignmentStatus = "both_complete"
	AssignmentCompleted    AssignmentStatus = "completed"
)

// User is a roster entry. Specialization is set for inspectors only.
type User struct {
	ID             uuid.UUID       `json:"id"`
	Name           string          `json:"name"`
	Role           Role            `json:"role"`
	Specialization *Specialization `json:"specialization,omitempty"`
	Active         bool            `json:"active"`
}

// Has reports whether the user is an active member of role.
func (u User) Has(role Role) bool {
	return u.Active && u.Role == role
}

// Equipment is a piece of inspected equipment.
type Equipment struct {
	ID                    uuid.UUID       `json:"id"`
	Name                  string          `json:"name"`
	Status                EquipmentStatus `json:"status"`
	Location              Location        `json:"location"`
	StoppedByAssessmentID *uuid.UUID      `json:"stopped_by_assessment_id,omitempty"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

// Assignment is an inspection job given to a mechanical and an electrical inspector.
// Source is nil for routine assignments.
type Assignment struct {
	ID                    uuid.UUID        `json:"id"`
	EquipmentID           uuid.UUID        `json:"equipment_id"`
	MechInspectorID       uuid.UUID        `json:"mech_inspector_id"`
	ElecInspectorID       uuid.UUID        `json:"elec_inspector_id"`
	Status                AssignmentStatus `json:"status"`
	MechChecklistComplete bool             `json:"mech_checklist_complete"`
	ElecChecklistComplete bool             `json:"elec_checklist_complete"`
	Source                JobRef           `json:"-"`
	TargetDate            time.Time        `json:"target_date"`
	Shift                 string           `json:"shift"`
	CreatedAt             time.Time        `json:"created_at"`
	CompletedAt           *time.Time       `json:"completed_at,omitempty"`
}

// ChecklistStarted reports whether at least one checklist has been completed,
// the point at which an assessment may be opened.
func (a Assignment) ChecklistStarted() bool {
	return a.MechChecklistComplete || a.ElecChecklistComplete
}

// NewAssignment carries the data needed to open an inspection assignment.
type NewAssignment struct {
	EquipmentID     uuid.UUID
	MechInspectorID uuid.UUID
	ElecInspectorID uuid.UUID
	TargetDate      time.Time
	Shift           string
	Source          JobRef
}
