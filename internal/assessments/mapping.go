package assessments

import (
	"fmt"

	"github.com/AliAliAhmad/inspection-system-sub003/pkg/query"
	"github.com/AliAliAhmad/inspection-system-sub003/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "assessments", "a").
	Project("id", "ID").
	Project("equipment_id", "EquipmentID").
	Project("assignment_id", "AssignmentID").
	Project("mech_inspector_id", "MechInspectorID").
	Project("elec_inspector_id", "ElecInspectorID").
	Project("mech_verdict", "MechVerdict").
	Project("elec_verdict", "ElecVerdict").
	Project("mech_justification", "MechJustification").
	Project("elec_justification", "ElecJustification").
	Project("system_recommendation", "SystemRecommendation").
	Project("escalation_level", "EscalationLevel").
	Project("engineer_id", "EngineerID").
	Project("engineer_verdict", "EngineerVerdict").
	Project("engineer_notes", "EngineerNotes").
	Project("admin_id", "AdminID").
	Project("admin_decision", "AdminDecision").
	Project("admin_notes", "AdminNotes").
	Project("final_status", "FinalStatus").
	Project("resolved_by", "ResolvedBy").
	Project("finalized_at", "FinalizedAt").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: false,
}

var (
	selectForUpdate = fmt.Sprintf(
		"SELECT %s FROM %s WHERE %s = $1 FOR UPDATE",
		projection.Columns(), projection.Table(), projection.Column("ID"),
	)

	selectByAssignment = fmt.Sprintf(
		"SELECT %s FROM %s WHERE %s = $1",
		projection.Columns(), projection.Table(), projection.Column("AssignmentID"),
	)
)

// Mutable columns are written under the finalize guard: a row that is
// already finalized matches nothing.
const updateSQL = `
	UPDATE assessments SET
		mech_verdict = $2,
		elec_verdict = $3,
		mech_justification = $4,
		elec_justification = $5,
		system_recommendation = $6,
		escalation_level = $7,
		engineer_id = $8,
		engineer_verdict = $9,
		engineer_notes = $10,
		admin_id = $11,
		admin_decision = $12,
		admin_notes = $13,
		final_status = $14,
		resolved_by = $15,
		finalized_at = $16,
		updated_at = $17
	WHERE id = $1 AND finalized_at IS NULL`

const insertSQL = `
	INSERT INTO assessments(id, equipment_id, assignment_id, mech_inspector_id, elec_inspector_id, escalation_level)
	VALUES ($1, $2, $3, $4, $5, 'none')
	ON CONFLICT (assignment_id) DO NOTHING`

func (a *Assessment) updateArgs() []any {
	return []any{
		a.ID,
		a.MechVerdict,
		a.ElecVerdict,
		a.MechJustification,
		a.ElecJustification,
		a.SystemRecommendation,
		a.EscalationLevel,
		a.EngineerID,
		a.EngineerVerdict,
		a.EngineerNotes,
		a.AdminID,
		a.AdminDecision,
		a.AdminNotes,
		a.FinalStatus,
		a.ResolvedBy,
		a.FinalizedAt,
		a.UpdatedAt,
	}
}

func scanAssessment(s repository.Scanner) (Assessment, error) {
	var a Assessment
	err := s.Scan(
		&a.ID,
		&a.EquipmentID,
		&a.AssignmentID,
		&a.MechInspectorID,
		&a.ElecInspectorID,
		&a.MechVerdict,
		&a.ElecVerdict,
		&a.MechJustification,
		&a.ElecJustification,
		&a.SystemRecommendation,
		&a.EscalationLevel,
		&a.EngineerID,
		&a.EngineerVerdict,
		&a.EngineerNotes,
		&a.AdminID,
		&a.AdminDecision,
		&a.AdminNotes,
		&a.FinalStatus,
		&a.ResolvedBy,
		&a.FinalizedAt,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	return a, err
}
