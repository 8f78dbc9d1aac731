// Package assessments reconciles the verdicts of an inspection team into a
// final equipment status. Disagreements escalate to an engineer and then to
// an admin, a single stop verdict always wins, and a finalized assessment
// has its consequences applied exactly once.
package assessments

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/AliAliAhmad/inspection-system-sub003/internal/verdict"
)

// EscalationLevel names the human tier that currently owns resolution.
type EscalationLevel string

const (
	LevelNone     EscalationLevel = "none"
	LevelEngineer EscalationLevel = "engineer"
	LevelAdmin    EscalationLevel = "admin"
)

// escalations is the escalation chain. The admin tier has no successor, which
// bounds resolution to three tiers: inspector pair, engineer, admin.
var escalations = map[EscalationLevel]EscalationLevel{
	LevelNone:     LevelEngineer,
	LevelEngineer: LevelAdmin,
}

// ResolvedBy records how a final status was reached.
type ResolvedBy string

const (
	ByAgreement  ResolvedBy = "agreement"
	BySafetyRule ResolvedBy = "safety_rule"
	ByEngineer   ResolvedBy = "engineer"
	ByAdmin      ResolvedBy = "admin"
)

// Step is the effect of a mutation on the assessment's lifecycle.
type Step int

const (
	Awaiting Step = iota
	EscalatedToEngineer
	EscalatedToAdmin
	Finalized
)

// Assessment is one round of condition evaluation for an assignment.
type Assessment struct {
	ID           uuid.UUID `json:"id"`
	EquipmentID  uuid.UUID `json:"equipment_id"`
	AssignmentID uuid.UUID `json:"assignment_id"`

	MechInspectorID   uuid.UUID        `json:"mech_inspector_id"`
	ElecInspectorID   uuid.UUID        `json:"elec_inspector_id"`
	MechVerdict       *verdict.Verdict `json:"mech_verdict,omitempty"`
	ElecVerdict       *verdict.Verdict `json:"elec_verdict,omitempty"`
	MechJustification *string          `json:"mech_justification,omitempty"`
	ElecJustification *string          `json:"elec_justification,omitempty"`

	SystemRecommendation *verdict.Verdict `json:"system_recommendation,omitempty"`
	EscalationLevel      EscalationLevel  `json:"escalation_level"`
	EngineerID           *uuid.UUID       `json:"engineer_id,omitempty"`
	EngineerVerdict      *verdict.Verdict `json:"engineer_verdict,omitempty"`
	EngineerNotes        *string          `json:"engineer_notes,omitempty"`
	AdminID              *uuid.UUID       `json:"admin_id,omitempty"`
	AdminDecision        *verdict.Verdict `json:"admin_decision,omitempty"`
	AdminNotes           *string          `json:"admin_notes,omitempty"`

	FinalStatus *verdict.Verdict `json:"final_status,omitempty"`
	ResolvedBy  *ResolvedBy      `json:"resolved_by,omitempty"`
	FinalizedAt *time.Time       `json:"finalized_at,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// Finalized reports whether the final status has been set.
func (a *Assessment) Finalized() bool {
	return a.FinalizedAt != nil
}

// Inspectors returns both assigned inspector IDs.
func (a *Assessment) Inspectors() []uuid.UUID {
	return []uuid.UUID{a.MechInspectorID, a.ElecInspectorID}
}

// SubmitVerdict records an inspector's verdict in their slot. When both slots
// are filled the pair is resolved or escalated.
func (a *Assessment) SubmitVerdict(inspectorID uuid.UUID, v verdict.Verdict, justification string, now time.Time) (Step, error) {
	if a.Finalized() {
		return Awaiting, ErrFinalized
	}
	if err := verdict.CheckJustification(v, justification); err != nil {
		return Awaiting, err
	}

	var slot **verdict.Verdict
	var note **string
	switch {
	case inspectorID == a.MechInspectorID && inspectorID == a.ElecInspectorID:
		return Awaiting, ErrNotAssignedInspector
	case inspectorID == a.MechInspectorID:
		slot, note = &a.MechVerdict, &a.MechJustification
	case inspectorID == a.ElecInspectorID:
		slot, note = &a.ElecVerdict, &a.ElecJustification
	default:
		return Awaiting, ErrNotAssignedInspector
	}

	if *slot != nil {
		return Awaiting, ErrSlotFilled
	}
	*slot = &v
	if justification != "" {
		*note = &justification
	}
	a.UpdatedAt = now

	if a.MechVerdict == nil || a.ElecVerdict == nil {
		return Awaiting, nil
	}

	res := Resolve(*a.MechVerdict, *a.ElecVerdict)
	if res.Escalate {
		rec := res.Recommendation
		a.SystemRecommendation = &rec
		return a.escalate(now)
	}
	return Finalized, a.finalize(res.Final, res.ResolvedBy, now)
}

// SubmitEngineerVerdict records the engineer review. A verdict agreeing with a
// prior opinion finalizes; otherwise the assessment escalates to admin.
func (a *Assessment) SubmitEngineerVerdict(engineerID uuid.UUID, v verdict.Verdict, notes string, now time.Time) (Step, error) {
	if a.Finalized() {
		return Awaiting, ErrFinalized
	}
	if a.EscalationLevel != LevelEngineer {
		return Awaiting, ErrNotAtEngineerTier
	}
	if a.EngineerVerdict != nil {
		return Awaiting, ErrEngineerReviewed
	}
	if !v.Valid() {
		return Awaiting, verdict.ErrInvalid
	}

	a.EngineerID = &engineerID
	a.EngineerVerdict = &v
	if notes = strings.TrimSpace(notes); notes != "" {
		a.EngineerNotes = &notes
	}
	a.UpdatedAt = now

	if a.EngineerAgrees(v) {
		return Finalized, a.finalize(v, ByEngineer, now)
	}
	return a.escalate(now)
}

// AdminResolve records the admin decision, which always finalizes.
func (a *Assessment) AdminResolve(adminID uuid.UUID, decision verdict.Verdict, notes string, now time.Time) (Step, error) {
	if a.Finalized() {
		return Awaiting, ErrFinalized
	}
	if a.EscalationLevel != LevelAdmin {
		return Awaiting, ErrNotAtAdminTier
	}
	if !decision.Valid() {
		return Awaiting, verdict.ErrInvalid
	}
	notes = strings.TrimSpace(notes)
	if notes == "" {
		return Awaiting, ErrNotesRequired
	}

	a.AdminID = &adminID
	a.AdminDecision = &decision
	a.AdminNotes = &notes
	a.UpdatedAt = now

	return Finalized, a.finalize(decision, ByAdmin, now)
}

// EngineerAgrees reports whether v matches the system recommendation or
// either inspector verdict.
func (a *Assessment) EngineerAgrees(v verdict.Verdict) bool {
	for _, prior := range []*verdict.Verdict{a.SystemRecommendation, a.MechVerdict, a.ElecVerdict} {
		if prior != nil && *prior == v {
			return true
		}
	}
	return false
}

func (a *Assessment) escalate(now time.Time) (Step, error) {
	next, ok := escalations[a.EscalationLevel]
	if !ok {
		return Awaiting, ErrEscalationExhausted
	}
	a.EscalationLevel = next
	a.UpdatedAt = now

	if next == LevelAdmin {
		return EscalatedToAdmin, nil
	}
	return EscalatedToEngineer, nil
}

func (a *Assessment) finalize(final verdict.Verdict, by ResolvedBy, now time.Time) error {
	if a.FinalStatus != nil || a.Finalized() {
		return ErrFinalized
	}
	a.FinalStatus = &final
	a.ResolvedBy = &by
	a.FinalizedAt = &now
	a.UpdatedAt = now
	return nil
}
