// Package reports renders inventory reports for download.
package reports

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/mzarins/invsync/internal/server/inventory"
)

// csvHeader is the column order of the inventory report. Kept stable for
// downstream spreadsheet consumers.
var csvHeader = []string{"ID", "Name", "Serial Number", "Location", "Status", "Quantity", "Assigned To", "Timestamp"}

// WriteInventoryCSV writes the full inventory as CSV to w, one row per
// record. The Assigned To column carries the user's display name, empty when
// unassigned.
func WriteInventoryCSV(w io.Writer, records []inventory.Record) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, record := range records {
		row := []string{
			strconv.FormatInt(record.ID, 10),
			record.Name,
			record.SerialNumber,
			record.Location,
			record.Status,
			strconv.Itoa(record.Quantity),
			record.AssignedToName,
			record.Timestamp.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
