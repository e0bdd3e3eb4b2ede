package outcome

// Result is the result of a step, a group of steps or a whole scenario.
type Result string

const (
	ResultSuccess Result = "SUCCESS"
	ResultFailure Result = "FAILURE"
	ResultPending Result = "PENDING"
	ResultIgnored Result = "IGNORED"
	ResultSkipped Result = "SKIPPED"
)

// IsValid checks if the result is one of the known results.
func (r Result) IsValid() bool {
	switch r {
	case ResultSuccess, ResultFailure, ResultPending, ResultIgnored, ResultSkipped:
		return true
	default:
		return false
	}
}

// precedence orders results when they are aggregated into a parent result.
// FAILURE > PENDING > SKIPPED > IGNORED > SUCCESS.
func (r Result) precedence() int {
	switch r {
	case ResultFailure:
		return 4
	case ResultPending:
		return 3
	case ResultSkipped:
		return 2
	case ResultIgnored:
		return 1
	default:
		return 0
	}
}

// Outranks reports whether r wins over other when both are aggregated.
func (r Result) Outranks(other Result) bool {
	return r.precedence() > other.precedence()
}

// Aggregate returns the highest-precedence result of results, or SUCCESS if there are none.
func Aggregate(results ...Result) Result {
	agg := ResultSuccess
	for _, r := range results {
		if r.Outranks(agg) {
			agg = r
		}
	}
	return agg
}
