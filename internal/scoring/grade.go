package scoring

import "sc2-coach/internal/domain"

// GradeForScore buckets a total score into a letter grade. Cutoffs
// are inclusive: exactly 95.0 is still an S.
func GradeForScore(total float64) domain.Grade {
	switch {
	case total >= GradeCutoffS:
		return domain.GradeS
	case total >= GradeCutoffA:
		return domain.GradeA
	case total >= GradeCutoffB:
		return domain.GradeB
	case total >= GradeCutoffC:
		return domain.GradeC
	case total >= GradeCutoffD:
		return domain.GradeD
	}
	return domain.GradeF
}

var gradeDescriptions = map[domain.Grade]string{
	domain.GradeS: "Flawless execution. You hit the build's benchmarks in every phase.",
	domain.GradeA: "Excellent execution with only minor slips from the build.",
	domain.GradeB: "Solid execution. Tighten up your weakest phase to climb further.",
	domain.GradeC: "Workable foundation, but key parts of the build arrived late or not at all.",
	domain.GradeD: "Large deviations from the build. Focus on worker production and supply first.",
	domain.GradeF: "The game drifted from the build almost immediately. Re-drill the opening.",
}

// GradeDescription returns the coaching line shown next to a grade.
// Unrecognized grades fall back to the F description.
func GradeDescription(g domain.Grade) string {
	if desc, ok := gradeDescriptions[g]; ok {
		return desc
	}
	return gradeDescriptions[domain.GradeF]
}
