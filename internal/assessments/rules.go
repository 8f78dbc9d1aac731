package assessments

import "github.com/AliAliAhmad/inspection-system-sub003/internal/verdict"

// Resolution is the evaluation of a complete inspector verdict pair.
type Resolution struct {
	Final      verdict.Verdict
	ResolvedBy ResolvedBy
	// Escalate is set when the pair cannot be resolved automatically;
	// Recommendation then holds the system's suggested verdict.
	Escalate       bool
	Recommendation verdict.Verdict
}

// Resolve applies the safety-first rule to an inspector verdict pair. Any
// stop wins. Two operational verdicts agree. Every other pair escalates with
// the more cautious verdict as the recommendation.
func Resolve(mech, elec verdict.Verdict) Resolution {
	switch {
	case mech == verdict.Stop && elec == verdict.Stop:
		return Resolution{Final: verdict.Stop, ResolvedBy: ByAgreement}
	case mech == verdict.Stop || elec == verdict.Stop:
		return Resolution{Final: verdict.Stop, ResolvedBy: BySafetyRule}
	case mech == verdict.Operational && elec == verdict.Operational:
		return Resolution{Final: verdict.Operational, ResolvedBy: ByAgreement}
	}
	return Resolution{Escalate: true, Recommendation: verdict.MostCautious(mech, elec)}
}
