// Package verdict defines the equipment condition verdict shared by
// inspectors, engineers, and admins.
package verdict

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/AliAliAhmad/inspection-system-sub003/pkg/failure"
)

// Verdict is an opinion on equipment condition.
type Verdict string

const (
	Operational Verdict = "operational"
	Monitor     Verdict = "monitor"
	Stop        Verdict = "stop"
)

// Minimum justification lengths, in characters.
const (
	MinMonitorJustification = 30
	MinStopJustification    = 50
)

var verdicts = []Verdict{Operational, Monitor, Stop}

// ErrInvalid indicates a value outside {operational, monitor, stop}.
var ErrInvalid = fmt.Errorf("%w: verdict must be one of operational, monitor, stop", failure.ErrValidation)

// All returns the valid verdicts.
func All() []Verdict {
	return verdicts
}

// Parse validates s as a verdict.
func Parse(s string) (Verdict, error) {
	v := Verdict(s)
	if !v.Valid() {
		return "", ErrInvalid
	}
	return v, nil
}

// Valid reports whether v is a known verdict.
func (v Verdict) Valid() bool {
	return slices.Contains(verdicts, v)
}

// UnmarshalJSON rejects unknown verdict values.
func (v *Verdict) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := Parse(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// MinJustification returns the minimum justification length v requires.
func (v Verdict) MinJustification() int {
	switch v {
	case Monitor:
		return MinMonitorJustification
	case Stop:
		return MinStopJustification
	}
	return 0
}

// CheckJustification validates the verdict and its justification length.
func CheckJustification(v Verdict, justification string) error {
	if !v.Valid() {
		return ErrInvalid
	}
	if n := len([]rune(justification)); n < v.MinJustification() {
		return fmt.Errorf(
			"%w: %s verdict requires a justification of at least %d characters, got %d",
			failure.ErrValidation, v, v.MinJustification(), n,
		)
	}
	return nil
}

// Severity orders verdicts from least to most cautious.
func (v Verdict) Severity() int {
	return slices.Index(verdicts, v)
}

// MostCautious returns the most cautious of the given verdicts.
func MostCautious(vs ...Verdict) Verdict {
	var out Verdict
	for _, v := range vs {
		if out == "" || v.Severity() > out.Severity() {
			out = v
		}
	}
	return out
}
