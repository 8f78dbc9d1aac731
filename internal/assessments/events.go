package assessments

import (
	"fmt"

	"github.com/AliAliAhmad/inspection-system-sub003/internal/notifications"
	"github.com/AliAliAhmad/inspection-system-sub003/internal/registry"
	"github.com/AliAliAhmad/inspection-system-sub003/internal/verdict"
)

func engineerReviewEvent(a *Assessment) notifications.Event {
	return notifications.Event{
		Type:  notifications.EngineerReviewRequired,
		Title: "Assessment needs engineer review",
		Message: fmt.Sprintf(
			"Inspectors disagree on equipment %s (mechanical: %s, electrical: %s). System recommendation: %s.",
			a.EquipmentID, *a.MechVerdict, *a.ElecVerdict, *a.SystemRecommendation,
		),
		Related:  registry.AssessmentRef{ID: a.ID},
		Priority: notifications.PriorityHigh,
	}
}

func adminReviewEvent(a *Assessment) notifications.Event {
	return notifications.Event{
		Type:  notifications.AdminReviewRequired,
		Title: "Assessment needs admin decision",
		Message: fmt.Sprintf(
			"The engineer verdict (%s) on equipment %s disagrees with the inspectors and the system recommendation.",
			*a.EngineerVerdict, a.EquipmentID,
		),
		Related:  registry.AssessmentRef{ID: a.ID},
		Priority: notifications.PriorityHigh,
	}
}

func finalizedEvent(a *Assessment, eq *registry.Equipment) notifications.Event {
	users := a.Inspectors()
	if a.EngineerID != nil {
		users = append(users, *a.EngineerID)
	}

	priority := notifications.PriorityNormal
	if *a.FinalStatus == verdict.Stop {
		priority = notifications.PriorityCritical
	}

	return notifications.Event{
		Type:  notifications.AssessmentFinalized,
		Title: "Assessment finalized",
		Message: fmt.Sprintf(
			"The assessment of %s is final: %s (%s).",
			eq.Name, *a.FinalStatus, *a.ResolvedBy,
		),
		Related:  registry.AssessmentRef{ID: a.ID},
		Priority: priority,
		Users:    users,
	}
}

func stoppedEvent(a *Assessment, eq *registry.Equipment) notifications.Event {
	return notifications.Event{
		Type:     notifications.EquipmentStopped,
		Title:    "Equipment stopped",
		Message:  fmt.Sprintf("%s was stopped by assessment %s (%s).", eq.Name, a.ID, *a.ResolvedBy),
		Related:  registry.AssessmentRef{ID: a.ID},
		Priority: notifications.PriorityCritical,
	}
}
