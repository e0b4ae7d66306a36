package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// stubExec records which commands the REPL dispatched.
type stubExec struct {
	loggedIn bool
	calls    []string
}

func (s *stubExec) isLoggedIn() bool { return s.loggedIn }

func (s *stubExec) record(name string) error {
	s.calls = append(s.calls, name)
	return nil
}

func (s *stubExec) Login(ctx context.Context) error          { return s.record("login") }
func (s *stubExec) Register(ctx context.Context) error       { return s.record("register") }
func (s *stubExec) Logout(ctx context.Context) error         { return s.record("logout") }
func (s *stubExec) ChangePassword(ctx context.Context) error { return s.record("passwd") }
func (s *stubExec) List(ctx context.Context) error           { return s.record("list") }
func (s *stubExec) Show(ctx context.Context) error           { return s.record("show") }
func (s *stubExec) Add(ctx context.Context) error            { return s.record("add") }
func (s *stubExec) Edit(ctx context.Context) error           { return s.record("edit") }
func (s *stubExec) Delete(ctx context.Context) error         { return s.record("del") }
func (s *stubExec) Sync(ctx context.Context) error           { return s.record("sync") }
func (s *stubExec) Users(ctx context.Context) error          { return s.record("users") }
func (s *stubExec) AddUser(ctx context.Context) error        { return s.record("adduser") }
func (s *stubExec) DeleteUser(ctx context.Context) error     { return s.record("deluser") }
func (s *stubExec) ResetPassword(ctx context.Context) error  { return s.record("resetpw") }
func (s *stubExec) Report(ctx context.Context) error         { return s.record("report") }

func runScript(t *testing.T, exec *stubExec, script string) []string {
	t.Helper()

	var output []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		output = append(output, fmt.Sprintln(a...))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })

	scanner := bufio.NewScanner(strings.NewReader(script))
	runREPL(context.Background(), exec, func() string { return "status" }, scanner)
	return output
}

func TestREPLDispatchesLoggedInCommands(t *testing.T) {
	exec := &stubExec{loggedIn: true}
	runScript(t, exec, "list\nshow\nadd\nedit\ndel\nsync\nusers\nreport\nlogout\nexit\n")
	assert.Equal(t, []string{"list", "show", "add", "edit", "del", "sync", "users", "report", "logout"}, exec.calls)
}

func TestREPLLoggedOutSurface(t *testing.T) {
	exec := &stubExec{loggedIn: false}
	output := runScript(t, exec, "list\nregister\nlogin\nexit\n")

	// Inventory commands are not reachable before login.
	assert.Equal(t, []string{"register", "login"}, exec.calls)
	joined := strings.Join(output, "")
	assert.Contains(t, joined, "Unknown command: list")
	assert.Contains(t, joined, "Bye!")
}

func TestREPLIgnoresBlankLinesAndEOF(t *testing.T) {
	exec := &stubExec{loggedIn: true}
	runScript(t, exec, "\n\nlist\n")
	assert.Equal(t, []string{"list"}, exec.calls)
}
