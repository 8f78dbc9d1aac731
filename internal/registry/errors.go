package registry

import (
	"fmt"

	"github.com/AliAliAhmad/inspection-system-sub003/pkg/failure"
)

// Domain errors for registry lookups.
var (
	ErrEquipmentNotFound  = fmt.Errorf("%w: equipment", failure.ErrNotFound)
	ErrAssignmentNotFound = fmt.Errorf("%w: inspection assignment", failure.ErrNotFound)
	ErrUserNotFound       = fmt.Errorf("%w: user", failure.ErrNotFound)
	ErrDuplicate          = fmt.Errorf("%w: record already exists", failure.ErrBusinessState)
)
