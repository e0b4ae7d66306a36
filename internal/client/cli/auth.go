package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/mzarins/invsync/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login prompts for credentials and authenticates. When the server is
// unreachable the auth service resumes the cached session, so a returning
// user keeps access to the local replica.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	online, err := a.auth.Login(ctx, userName, string(password))
	if err != nil {
		return err
	}

	if online {
		printlnFn("Logged in.")
		if _, _, err := a.inventory.SyncIfIdle(ctx); err != nil {
			a.logger.Warn(ctx, "initial sync failed", "error", err)
		}
	} else {
		printlnFn("Server unreachable; resumed offline session.")
	}
	return nil
}

// Register creates a new account. The endpoint is open, so this works
// before login, but only when the server is reachable.
func (a *App) Register(ctx context.Context) error {
	user, err := a.promptNewUser()
	if err != nil {
		return err
	}
	if err := a.auth.Register(ctx, user); err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}
	printlnFn("Account created; you can log in now.")
	return nil
}

// Logout wipes the local replica and the cached session.
func (a *App) Logout(ctx context.Context) error {
	if err := a.auth.Logout(ctx); err != nil {
		return err
	}
	printlnFn("Logged out; local data wiped.")
	return nil
}

// ChangePassword replaces the password of the logged-in account. Online only.
func (a *App) ChangePassword(ctx context.Context) error {
	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.auth.ChangePassword(ctx, string(password)); err != nil {
		return fmt.Errorf("password change failed: %w", err)
	}
	printlnFn("Password changed.")
	return nil
}
