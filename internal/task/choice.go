package task

import "fmt"

// ChoiceKind enumerates the closed set of decisions for a task.
type ChoiceKind int

const (
	// ChoiceNone means no decision has been made yet.
	ChoiceNone ChoiceKind = iota
	// ChoiceApply applies the candidate at Choice.Index.
	ChoiceApply
	// ChoiceAsIs keeps the observed tags unchanged.
	ChoiceAsIs
	// ChoiceSkip drops the task without applying anything.
	ChoiceSkip
	// ChoiceAbort cancels the whole run.
	ChoiceAbort
)

func (k ChoiceKind) String() string {
	switch k {
	case ChoiceApply:
		return "apply"
	case ChoiceAsIs:
		return "as-is"
	case ChoiceSkip:
		return "skip"
	case ChoiceAbort:
		return "abort"
	}
	return "none"
}

// Choice is the finalized decision for a task. Index is only meaningful
// for ChoiceApply and refers to the task's ranked candidate list.
type Choice struct {
	Kind  ChoiceKind
	Index int
}

// Apply builds an apply choice for the candidate at index.
func Apply(index int) Choice { return Choice{Kind: ChoiceApply, Index: index} }

// AsIs builds a keep-observed-tags choice.
func AsIs() Choice { return Choice{Kind: ChoiceAsIs} }

// Skip builds a skip choice.
func Skip() Choice { return Choice{Kind: ChoiceSkip} }

// Abort builds an abort-run choice.
func Abort() Choice { return Choice{Kind: ChoiceAbort} }

// validate checks the choice against the candidate list length at the
// decision boundary, before the choice is committed to a task.
func (c Choice) validate(candidates int) error {
	switch c.Kind {
	case ChoiceApply:
		if c.Index < 0 || c.Index >= candidates {
			return fmt.Errorf("choice index %d out of range (have %d candidates)", c.Index, candidates)
		}
		return nil
	case ChoiceAsIs, ChoiceSkip, ChoiceAbort:
		return nil
	}
	return fmt.Errorf("invalid choice kind %d", c.Kind)
}
