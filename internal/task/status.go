package task

// Status represents the lifecycle of an import task.
type Status string

const (
	StatusCreated            Status = "created"
	StatusRead               Status = "read"
	StatusGrouped            Status = "grouped"
	StatusCandidatesFetched  Status = "candidates_fetched"
	StatusChoiceMade         Status = "choice_made"
	StatusDuplicatesResolved Status = "duplicates_resolved"
	StatusApplied            Status = "applied"
	StatusSkipped            Status = "skipped"
	StatusFailed             Status = "failed"
)

// forwardTransitions lists the single legal successor of each working
// state. Skipped and failed are handled separately.
var forwardTransitions = map[Status]Status{
	StatusCreated:            StatusRead,
	StatusRead:               StatusGrouped,
	StatusGrouped:            StatusCandidatesFetched,
	StatusCandidatesFetched:  StatusChoiceMade,
	StatusChoiceMade:         StatusDuplicatesResolved,
	StatusDuplicatesResolved: StatusApplied,
}

// skippableFrom lists states from which a task may be skipped.
var skippableFrom = map[Status]struct{}{
	StatusCandidatesFetched:  {},
	StatusChoiceMade:         {},
	StatusDuplicatesResolved: {},
}

// NextStatus returns the single legal successor of a working state.
func NextStatus(s Status) (Status, bool) {
	next, ok := forwardTransitions[s]
	return next, ok
}

// Terminal reports whether the status ends a task's lifecycle.
func (s Status) Terminal() bool {
	switch s {
	case StatusApplied, StatusSkipped, StatusFailed:
		return true
	}
	return false
}
