package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/mzarins/invsync/internal/client/api"
	"github.com/mzarins/invsync/internal/common"
)

// Users lists accounts. Admin only; the server enforces the same rule.
func (a *App) Users(ctx context.Context) error {
	if !a.auth.CurrentUser().IsAdmin() {
		return errNotPermitted
	}

	role, err := getSimpleText(a.reader, "Filter by role (empty for all)", os.Stdout)
	if err != nil {
		return err
	}

	list, err := a.auth.ListUsers(ctx, role)
	if err != nil {
		return err
	}

	for i := range list {
		user := &list[i]
		permissions := "-"
		if user.Permissions != nil {
			permissions = *user.Permissions
		}
		printlnFn(fmt.Sprintf("%-5d %-20s %-10s %-10s %s", user.ID, user.Username, user.Role, permissions, user.Name))
	}
	return nil
}

// promptNewUser collects the fields of a new account. Client accounts also
// get a permissions level.
func (a *App) promptNewUser() (api.NewUser, error) {
	user := api.NewUser{}
	var err error
	if user.Username, err = getSimpleText(a.reader, "Username", os.Stdout); err != nil {
		return user, err
	}
	if user.Name, err = getSimpleText(a.reader, "Full name", os.Stdout); err != nil {
		return user, err
	}
	if user.Role, err = getSimpleText(a.reader, "Role (admin/staff/client)", os.Stdout); err != nil {
		return user, err
	}
	if user.Role == "client" {
		permissions, err := getSimpleText(a.reader, "Permissions (read_only/read_write)", os.Stdout)
		if err != nil {
			return user, err
		}
		user.Permissions = &permissions
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return user, err
	}
	defer common.WipeByteArray(password)
	user.Password = string(password)
	return user, nil
}

// AddUser creates an account.
func (a *App) AddUser(ctx context.Context) error {
	if !a.auth.CurrentUser().IsAdmin() {
		return errNotPermitted
	}

	user, err := a.promptNewUser()
	if err != nil {
		return err
	}
	if err := a.auth.CreateUser(ctx, user); err != nil {
		return err
	}
	printlnFn("User created.")
	return nil
}

// DeleteUser removes an account.
func (a *App) DeleteUser(ctx context.Context) error {
	if !a.auth.CurrentUser().IsAdmin() {
		return errNotPermitted
	}

	id, ok, err := GetIntText(a.reader, "User id", os.Stdout)
	if err != nil {
		return err
	}
	if !ok {
		printlnFn("Aborted.")
		return nil
	}

	if err := a.auth.DeleteUser(ctx, int64(id)); err != nil {
		return err
	}
	printlnFn("User deleted.")
	return nil
}

// ResetPassword replaces another account's password.
func (a *App) ResetPassword(ctx context.Context) error {
	if !a.auth.CurrentUser().IsAdmin() {
		return errNotPermitted
	}

	username, err := getSimpleText(a.reader, "Username", os.Stdout)
	if err != nil {
		return err
	}
	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.auth.ResetPassword(ctx, username, string(password)); err != nil {
		return err
	}
	printlnFn("Password reset.")
	return nil
}
