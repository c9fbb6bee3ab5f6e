package driven

import "context"

// Confirmer asks the operator to approve a destructive action.
type Confirmer interface {
	// Confirm shows prompt and reports whether the operator agreed.
	Confirm(ctx context.Context, prompt string) (bool, error)
}
