package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Register(ctx context.Context) error
	Logout(ctx context.Context) error
	ChangePassword(ctx context.Context) error
	List(ctx context.Context) error
	Show(ctx context.Context) error
	Add(ctx context.Context) error
	Edit(ctx context.Context) error
	Delete(ctx context.Context) error
	Sync(ctx context.Context) error
	Users(ctx context.Context) error
	AddUser(ctx context.Context) error
	DeleteUser(ctx context.Context) error
	ResetPassword(ctx context.Context) error
	Report(ctx context.Context) error
}

// runREPL reads a line, parses the first token as the command, and
// dispatches to methods on 'a'. The loop exits on scanner EOF or when the
// user types "exit" or "quit".
//
// Command handlers report their own errors; the loop only prints them and
// keeps going.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("inv> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		if !a.isLoggedIn() {
			switch cmd {
			case "help":
				printlnFn("Available commands: login, register, exit")
			case "login":
				report(a.Login(ctx))
			case "register":
				report(a.Register(ctx))
			case "exit", "quit":
				printlnFn("Bye!")
				return
			default:
				printlnFn("Unknown command:", cmd)
			}
			continue
		}

		switch cmd {
		case "help":
			printlnFn("Available commands: (l)ist, show, add, edit, del, sync, passwd, users, adduser, deluser, resetpw, report, logout, exit")

		case "l", "list":
			report(a.List(ctx))

		case "show":
			report(a.Show(ctx))

		case "add":
			report(a.Add(ctx))

		case "edit":
			report(a.Edit(ctx))

		case "del":
			report(a.Delete(ctx))

		case "sync":
			report(a.Sync(ctx))

		case "passwd":
			report(a.ChangePassword(ctx))

		case "users":
			report(a.Users(ctx))

		case "adduser":
			report(a.AddUser(ctx))

		case "deluser":
			report(a.DeleteUser(ctx))

		case "resetpw":
			report(a.ResetPassword(ctx))

		case "report":
			report(a.Report(ctx))

		case "logout":
			report(a.Logout(ctx))

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

func report(err error) {
	if err != nil {
		printlnFn("Error:", err.Error())
	}
}
