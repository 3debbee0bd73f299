package plugin

const (
	ThresholdModeAbsolute   = 1
	ThresholdModePercentage = 2
)

// Results holds the counts aggregated over one or more xUnit reports.
type Results struct {
	Total    int
	Failures int
	Errors   int
	Skipped  int
	Duration float64
}

// Add accumulates other into r.
func (r *Results) Add(other Results) {
	r.Total += other.Total
	r.Failures += other.Failures
	r.Errors += other.Errors
	r.Skipped += other.Skipped
	r.Duration += other.Duration
}
