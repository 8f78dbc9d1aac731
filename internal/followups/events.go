package followups

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/AliAliAhmad/inspection-system-sub003/internal/notifications"
	"github.com/AliAliAhmad/inspection-system-sub003/internal/registry"
)

func pendingEvent(f *Followup) notifications.Event {
	return notifications.Event{
		Type:  notifications.FollowupPending,
		Title: "Follow-up awaiting schedule",
		Message: fmt.Sprintf(
			"Equipment %s needs a follow-up inspection, proposed for %s.",
			f.EquipmentID, f.TargetDate.Format(time.DateOnly),
		),
		Related:  registry.FollowupRef{ID: f.ID},
		Priority: notifications.PriorityHigh,
	}
}

func scheduledEvent(f *Followup) notifications.Event {
	shift := DayShift
	if f.Shift != nil {
		shift = *f.Shift
	}
	return notifications.Event{
		Type:  notifications.FollowupScheduled,
		Title: "Follow-up inspection scheduled",
		Message: fmt.Sprintf(
			"You are assigned a %s of equipment %s on %s (%s shift, %s).",
			f.Type, f.EquipmentID, f.TargetDate.Format(time.DateOnly), shift, f.Location,
		),
		Related:  registry.FollowupRef{ID: f.ID},
		Priority: notifications.PriorityNormal,
		Users:    f.Inspectors(),
	}
}

func assignedEvent(f *Followup, assignmentID uuid.UUID) notifications.Event {
	return notifications.Event{
		Type:  notifications.FollowupAssigned,
		Title: "Follow-up inspection due today",
		Message: fmt.Sprintf(
			"The follow-up inspection of equipment %s is now an active assignment.",
			f.EquipmentID,
		),
		Related:  registry.InspectionRef{ID: assignmentID},
		Priority: notifications.PriorityHigh,
		Users:    f.Inspectors(),
	}
}

func overdueEvent(f *Followup, today time.Time) notifications.Event {
	days := int(today.Sub(f.TargetDate).Hours() / 24)
	return notifications.Event{
		Type:  notifications.FollowupOverdue,
		Title: "Follow-up overdue",
		Message: fmt.Sprintf(
			"The follow-up of equipment %s was due %s and is %d day(s) overdue (alert %d).",
			f.EquipmentID, f.TargetDate.Format(time.DateOnly), days, f.OverdueNotifications,
		),
		Related:  registry.FollowupRef{ID: f.ID},
		Priority: notifications.PriorityCritical,
	}
}

func cancelledEvent(f *Followup) notifications.Event {
	return notifications.Event{
		Type:     notifications.FollowupCancelled,
		Title:    "Follow-up cancelled",
		Message:  fmt.Sprintf("The follow-up of equipment %s was cancelled.", f.EquipmentID),
		Related:  registry.FollowupRef{ID: f.ID},
		Priority: notifications.PriorityNormal,
		Users:    f.Inspectors(),
	}
}
