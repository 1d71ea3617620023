package schema

type Status string

const (
	StatusCoherent        Status = "coherent"
	StatusNeedsReordering Status = "needs-reordering"
	StatusContextFailure  Status = "context-failure"
)

const (
	CoherentThreshold   = 0.85
	ReorderingThreshold = 0.70
)

// StatusFor bands a self-reported confidence. Boundaries belong to the higher band.
func StatusFor(confidence float64) Status {
	switch {
	case confidence >= CoherentThreshold:
		return StatusCoherent
	case confidence >= ReorderingThreshold:
		return StatusNeedsReordering
	default:
		return StatusContextFailure
	}
}
