package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/mzarins/invsync/internal/client/models"
)

func syncMarker(record *models.Record) string {
	if record.Synced() {
		return " "
	}
	return "*"
}

// List prints the visible records. Rows carrying unsynced local changes are
// marked with an asterisk.
func (a *App) List(ctx context.Context) error {
	records, err := a.inventory.List(ctx)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		printlnFn("No records.")
		return nil
	}

	for i := range records {
		record := &records[i]
		assigned := "-"
		if record.AssignedToName != "" {
			assigned = record.AssignedToName
		} else if record.AssignedTo != nil {
			assigned = fmt.Sprintf("user %d", *record.AssignedTo)
		}
		printlnFn(fmt.Sprintf("%s %-36s  %-20s  %-12s  qty %-4d  %s",
			syncMarker(record), record.Key, record.Name, record.Status, record.Quantity, assigned))
	}
	return nil
}

// Show prints all fields of a single record, looked up by its key.
func (a *App) Show(ctx context.Context) error {
	key, err := getSimpleText(a.reader, "Enter record key", os.Stdout)
	if err != nil {
		return err
	}

	record, err := a.inventory.Get(ctx, key)
	if err != nil {
		return err
	}

	printlnFn("Key:          ", record.Key)
	if record.OnServer() {
		printlnFn("Server id:    ", record.ID)
	} else {
		printlnFn("Server id:     (not synced yet)")
	}
	printlnFn("Name:         ", record.Name)
	printlnFn("Serial number:", record.SerialNumber)
	printlnFn("Location:     ", record.Location)
	printlnFn("Status:       ", record.Status)
	printlnFn("Quantity:     ", record.Quantity)
	if record.AssignedTo != nil {
		printlnFn("Assigned to:  ", *record.AssignedTo, record.AssignedToName)
	} else {
		printlnFn("Assigned to:   -")
	}
	printlnFn("Updated:      ", record.Timestamp.Format("2006-01-02 15:04:05"))
	printlnFn("Sync state:   ", string(record.SyncStatus))
	return nil
}
