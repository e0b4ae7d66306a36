package cli

import (
	"context"
	"fmt"
	"os"
)

// Report downloads the CSV inventory report to a local file. Admin only,
// and only while the server is reachable.
func (a *App) Report(ctx context.Context) error {
	if !a.auth.CurrentUser().IsAdmin() {
		return errNotPermitted
	}

	path, err := getSimpleText(a.reader, "Save as [inventory_report.csv]", os.Stdout)
	if err != nil {
		return err
	}
	if path == "" {
		path = "inventory_report.csv"
	}

	data, err := a.inventory.Report(ctx)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	printlnFn("Report saved to", path)
	return nil
}
