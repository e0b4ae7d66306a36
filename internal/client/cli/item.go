package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/mzarins/invsync/internal/client/models"
	"github.com/mzarins/invsync/internal/common"
)

var errNotPermitted = errors.New("your account is not permitted to do that")

// Add creates a new record. Client accounts never create records, matching
// the server's policy, so the rejection happens before any prompt.
func (a *App) Add(ctx context.Context) error {
	user := a.auth.CurrentUser()
	if user.IsClient() {
		return errNotPermitted
	}

	record := &models.Record{}
	var err error
	if record.Name, err = getSimpleText(a.reader, "Name", os.Stdout); err != nil {
		return err
	}
	if record.SerialNumber, err = getSimpleText(a.reader, "Serial number", os.Stdout); err != nil {
		return err
	}
	if record.Location, err = getSimpleText(a.reader, "Location", os.Stdout); err != nil {
		return err
	}
	if record.Status, err = getSimpleText(a.reader, "Status", os.Stdout); err != nil {
		return err
	}
	quantity, ok, err := GetIntText(a.reader, "Quantity", os.Stdout)
	if err != nil {
		return err
	}
	if ok {
		record.Quantity = quantity
	}
	assignee, ok, err := GetIntText(a.reader, "Assigned user id (empty for none)", os.Stdout)
	if err != nil {
		return err
	}
	if ok {
		id := int64(assignee)
		record.AssignedTo = &id
	}

	record, err = a.inventory.Add(ctx, record)
	if err != nil {
		return err
	}

	if record.Synced() {
		printlnFn(fmt.Sprintf("Created record %d.", record.ID))
	} else {
		printlnFn("Created locally; will sync when the server is reachable.")
	}
	return nil
}

// Edit applies a partial change to one record. Empty answers keep the
// current value.
func (a *App) Edit(ctx context.Context) error {
	user := a.auth.CurrentUser()
	if !user.CanWrite() {
		return errNotPermitted
	}

	key, err := getSimpleText(a.reader, "Enter record key", os.Stdout)
	if err != nil {
		return err
	}

	record, err := a.inventory.Get(ctx, key)
	if err != nil {
		return err
	}

	update := &models.Update{}
	prompt := func(label, current string) (*string, error) {
		text, err := getSimpleText(a.reader, fmt.Sprintf("%s [%s]", label, current), os.Stdout)
		if err != nil {
			return nil, err
		}
		if text == "" {
			return nil, nil
		}
		return &text, nil
	}

	if update.Name, err = prompt("Name", record.Name); err != nil {
		return err
	}
	if update.SerialNumber, err = prompt("Serial number", record.SerialNumber); err != nil {
		return err
	}
	if update.Location, err = prompt("Location", record.Location); err != nil {
		return err
	}
	if update.Status, err = prompt("Status", record.Status); err != nil {
		return err
	}
	quantity, ok, err := GetIntText(a.reader, fmt.Sprintf("Quantity [%d]", record.Quantity), os.Stdout)
	if err != nil {
		return err
	}
	if ok {
		update.Quantity = &quantity
	}
	if !user.IsClient() {
		assignee, ok, err := GetIntText(a.reader, "Assigned user id (empty to keep)", os.Stdout)
		if err != nil {
			return err
		}
		if ok {
			id := int64(assignee)
			update.AssignedTo = &id
		}
	}

	if err := a.inventory.Edit(ctx, key, update); err != nil {
		return err
	}
	printlnFn("Saved.")
	return nil
}

// Delete removes one record. Deletion of server records is an admin
// operation; other roles are turned away up front.
func (a *App) Delete(ctx context.Context) error {
	user := a.auth.CurrentUser()

	key, err := getSimpleText(a.reader, "Enter record key", os.Stdout)
	if err != nil {
		return err
	}

	record, err := a.inventory.Get(ctx, key)
	if err != nil {
		return err
	}
	if record.OnServer() && !user.IsAdmin() {
		return errNotPermitted
	}

	confirmation, err := getSimpleText(a.reader, "Type the record name to confirm deletion", os.Stdout)
	if err != nil {
		return err
	}
	if confirmation != record.Name {
		printlnFn("Aborted.")
		return nil
	}

	if err := a.inventory.Delete(ctx, key); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return fmt.Errorf("record %s not found", strconv.Quote(key))
		}
		return err
	}
	printlnFn("Deleted.")
	return nil
}
