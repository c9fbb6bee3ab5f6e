package services

import (
	"context"
	"fmt"

	"github.com/refeel-health/refeel-cli/internal/core/domain"
	"github.com/refeel-health/refeel-cli/internal/core/ports/driven"
)

// confirm asks c and maps a refusal to domain.ErrCancelled.
func confirm(ctx context.Context, c driven.Confirmer, prompt string) error {
	if c == nil {
		return fmt.Errorf("%w: %s", domain.ErrConfirmationRequired, prompt)
	}
	ok, err := c.Confirm(ctx, prompt)
	if err != nil {
		return fmt.Errorf("confirm: %w", err)
	}
	if !ok {
		return domain.ErrCancelled
	}
	return nil
}
