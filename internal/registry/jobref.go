package registry

import (
	"fmt"

	"github.com/google/uuid"
)

// JobKind names a kind of job a record may reference.
type JobKind string

const (
	KindInspection JobKind = "inspection"
	KindAssessment JobKind = "assessment"
	KindFollowup   JobKind = "followup"
)

// JobRef is a reference to one of the job kinds. The set of implementations is
// closed: InspectionRef, AssessmentRef, and FollowupRef.
type JobRef interface {
	Kind() JobKind
	RefID() uuid.UUID
	jobRef()
}

// InspectionRef references an inspection assignment.
type InspectionRef struct{ ID uuid.UUID }

// AssessmentRef references an assessment.
type AssessmentRef struct{ ID uuid.UUID }

// FollowupRef references a follow-up.
type FollowupRef struct{ ID uuid.UUID }

func (InspectionRef) Kind() JobKind { return KindInspection }
func (AssessmentRef) Kind() JobKind { return KindAssessment }
func (FollowupRef) Kind() JobKind   { return KindFollowup }

func (r InspectionRef) RefID() uuid.UUID { return r.ID }
func (r AssessmentRef) RefID() uuid.UUID { return r.ID }
func (r FollowupRef) RefID() uuid.UUID   { return r.ID }

func (InspectionRef) jobRef() {}
func (AssessmentRef) jobRef() {}
func (FollowupRef) jobRef()   {}

// NewJobRef builds the reference for a stored kind tag and id.
func NewJobRef(kind JobKind, id uuid.UUID) (JobRef, error) {
	switch kind {
	case KindInspection:
		return InspectionRef{ID: id}, nil
	case KindAssessment:
		return AssessmentRef{ID: id}, nil
	case KindFollowup:
		return FollowupRef{ID: id}, nil
	}
	return nil, fmt.Errorf("unknown job kind %q", kind)
}

// splitRef returns the nullable column values for ref.
func splitRef(ref JobRef) (*string, *uuid.UUID) {
	if ref == nil {
		return nil, nil
	}
	kind := string(ref.Kind())
	id := ref.RefID()
	return &kind, &id
}

// joinRef rebuilds a reference from nullable column values.
func joinRef(kind *string, id *uuid.UUID) (JobRef, error) {
	if kind == nil || id == nil {
		return nil, nil
	}
	return NewJobRef(JobKind(*kind), *id)
}
