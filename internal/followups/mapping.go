package followups

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/AliAliAhmad/inspection-system-sub003/pkg/query"
	"github.com/AliAliAhmad/inspection-system-sub003/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "followups", "f").
	Project("id", "ID").
	Project("assessment_id", "AssessmentID").
	Project("equipment_id", "EquipmentID").
	Project("parent_followup_id", "ParentID").
	Project("target_date", "TargetDate").
	Project("followup_type", "Type").
	Project("location", "Location").
	Project("shift", "Shift").
	Project("mech_inspector_id", "MechInspectorID").
	Project("elec_inspector_id", "ElecInspectorID").
	Project("scheduled_by", "ScheduledBy").
	Project("scheduler_role", "SchedulerRole").
	Project("notes", "Notes").
	Project("status", "Status").
	Project("inspection_assignment_id", "AssignmentID").
	Project("result_verdict", "ResultVerdict").
	Project("result_assessment_id", "ResultAssessmentID").
	Project("is_overdue", "IsOverdue").
	Project("overdue_since", "OverdueSince").
	Project("overdue_notification_count", "OverdueNotifications").
	Project("cancelled_by", "CancelledBy").
	Project("completed_at", "CompletedAt").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "TargetDate",
	Descending: false,
}

// selectForUpdate locks a single follow-up row for the enclosing transaction.
var selectForUpdate = fmt.Sprintf(
	"SELECT %s FROM %s WHERE %s = $1 FOR UPDATE",
	projection.Columns(), projection.Table(), projection.Column("ID"),
)

// Filters contains optional filtering criteria for follow-up queries.
type Filters struct {
	Status      *Status    `json:"status,omitempty"`
	EquipmentID *uuid.UUID `json:"equipment_id,omitempty"`
	Type        *Type      `json:"followup_type,omitempty"`
	Overdue     *bool      `json:"is_overdue,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Status", f.Status).
		WhereEquals("EquipmentID", f.EquipmentID).
		WhereEquals("Type", f.Type).
		WhereEquals("IsOverdue", f.Overdue)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if s := Status(values.Get("status")); s.Valid() {
		f.Status = &s
	}

	if id, err := uuid.Parse(values.Get("equipment_id")); err == nil {
		f.EquipmentID = &id
	}

	if t := Type(values.Get("followup_type")); t.Valid() {
		f.Type = &t
	}

	switch values.Get("is_overdue") {
	case "true":
		v := true
		f.Overdue = &v
	case "false":
		v := false
		f.Overdue = &v
	}

	return f
}

func scanFollowup(s repository.Scanner) (Followup, error) {
	var f Followup
	err := s.Scan(
		&f.ID,
		&f.AssessmentID,
		&f.EquipmentID,
		&f.ParentID,
		&f.TargetDate,
		&f.Type,
		&f.Location,
		&f.Shift,
		&f.MechInspectorID,
		&f.ElecInspectorID,
		&f.ScheduledBy,
		&f.SchedulerRole,
		&f.Notes,
		&f.Status,
		&f.AssignmentID,
		&f.ResultVerdict,
		&f.ResultAssessmentID,
		&f.IsOverdue,
		&f.OverdueSince,
		&f.OverdueNotifications,
		&f.CancelledBy,
		&f.CompletedAt,
		&f.CreatedAt,
		&f.UpdatedAt,
	)
	return f, err
}

// args returns the column values of f in projection order.
func (f *Followup) args() []any {
	return []any{
		f.ID,
		f.AssessmentID,
		f.EquipmentID,
		f.ParentID,
		f.TargetDate,
		f.Type,
		f.Location,
		f.Shift,
		f.MechInspectorID,
		f.ElecInspectorID,
		f.ScheduledBy,
		f.SchedulerRole,
		f.Notes,
		f.Status,
		f.AssignmentID,
		f.ResultVerdict,
		f.ResultAssessmentID,
		f.IsOverdue,
		f.OverdueSince,
		f.OverdueNotifications,
		f.CancelledBy,
		f.CompletedAt,
		f.CreatedAt,
		f.UpdatedAt,
	}
}

// insertSQL and updateSQL write every projected column in projection order;
// the first column is the id.
var insertSQL, updateSQL = writeStatements()

func writeStatements() (string, string) {
	cols := projection.Names()
	params := make([]string, len(cols))
	sets := make([]string, 0, len(cols)-1)

	for i, col := range cols {
		params[i] = fmt.Sprintf("$%d", i+1)
		if i > 0 {
			sets = append(sets, fmt.Sprintf("%s = %s", col, params[i]))
		}
	}

	insert := fmt.Sprintf(
		"INSERT INTO %s(%s) VALUES (%s)",
		projection.Name(), strings.Join(cols, ", "), strings.Join(params, ", "),
	)
	update := fmt.Sprintf(
		"UPDATE %s SET %s WHERE id = $1",
		projection.Name(), strings.Join(sets, ", "),
	)
	return insert, update
}
