package reconcile

// Outcome classifies what happened to one declared repository during a run.
type Outcome string

const (
	OutcomeUnchanged Outcome = "unchanged"
	OutcomeChanged   Outcome = "changed"
	OutcomeFailed    Outcome = "failed"
)

// RepoResult records the outcome for one declared repository, with the
// concrete actions that were applied.
type RepoResult struct {
	Repo    string
	Path    string
	Outcome Outcome
	Actions []string
	Err     error
}

// Report is the result of reconciling one or more trees.
type Report struct {
	Results   []RepoResult
	Unmanaged []string
}

// Failed reports whether any repository could not be reconciled.
func (r Report) Failed() bool {
	for _, result := range r.Results {
		if result.Outcome == OutcomeFailed {
			return true
		}
	}
	return false
}

// Changed reports whether any repository was modified.
func (r Report) Changed() bool {
	for _, result := range r.Results {
		if result.Outcome == OutcomeChanged {
			return true
		}
	}
	return false
}
