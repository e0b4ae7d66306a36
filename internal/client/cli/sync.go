package cli

import (
	"context"
	"fmt"
)

// Sync runs a reconciliation by hand and prints its outcome. A run already
// in progress absorbs the trigger.
func (a *App) Sync(ctx context.Context) error {
	report, ran, err := a.inventory.SyncIfIdle(ctx)
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}
	if !ran {
		printlnFn("Sync already in progress.")
		return nil
	}

	printlnFn(fmt.Sprintf("Sync finished: %s.", report.String()))
	return nil
}
