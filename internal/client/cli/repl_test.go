package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	loggedIn bool
	failWith error

	calls []string
}

func (f *fakeExec) record(call string) error {
	f.calls = append(f.calls, call)
	return f.failWith
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) Register(ctx context.Context) error { return f.record("register") }
func (f *fakeExec) Projects(ctx context.Context) error { return f.record("projects") }
func (f *fakeExec) Upload(ctx context.Context) error { return f.record("upload") }
func (f *fakeExec) Login(ctx context.Context) error {
	f.loggedIn = true
	return f.record("login")
}
func (f *fakeExec) Logout(ctx context.Context) error {
	f.loggedIn = false
	return f.record("logout")
}
func (f *fakeExec) Segments(ctx context.Context, projectID string) error {
	return f.record("segments " + projectID)
}
func (f *fakeExec) Save(ctx context.Context, segmentID string) error {
	return f.record("save " + segmentID)
}
func (f *fakeExec) Delete(ctx context.Context, projectID string) error {
	return f.record("delete " + projectID)
}
func (f *fakeExec) Source(ctx context.Context, projectID, dest string) error {
	return f.record("source " + projectID + " " + dest)
}

func script(lines ...string) string {
	return strings.Join(lines, "\n") + "\n"
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	exec := &fakeExec{}
	var out bytes.Buffer

	in := script(
		"help",
		"login",
		"help",
		"",
		"projects",
		"p",
		"segments p1",
		"save s1",
		"upload",
		"delete p1",
		"source p1",
		"source p1 out.json",
		"foobar",
		"logout",
		"exit",
		"projects",
	)
	runREPL(context.Background(), exec, func() string { return "status" }, rdr(in), &out)

	assert.Equal(t, []string{
		"login", "projects", "projects", "segments p1", "save s1", "upload",
		"delete p1", "source p1 ", "source p1 out.json", "logout",
	}, exec.calls)

	s := out.String()
	assert.Contains(t, s, "icarus status> ")
	assert.Contains(t, s, "Available commands: register, login, exit")
	assert.Contains(t, s, "Available commands: projects")
	assert.Contains(t, s, "Unknown command: foobar")
	assert.Contains(t, s, "Bye!")
}

func TestRunREPL_UsageWithoutArgs(t *testing.T) {
	exec := &fakeExec{loggedIn: true}
	var out bytes.Buffer

	runREPL(context.Background(), exec, func() string { return "" }, rdr(script("segments", "save", "delete", "source")), &out)

	assert.Empty(t, exec.calls)
	for _, u := range []string{"segments <project>", "save <segment>", "delete <project>", "source <project> [file]"} {
		assert.Contains(t, out.String(), "Usage: "+u)
	}
}

func TestRunREPL_PrintsCommandErrors(t *testing.T) {
	exec := &fakeExec{failWith: errors.New("server returned 403: forbidden")}
	var out bytes.Buffer

	runREPL(context.Background(), exec, func() string { return "" }, rdr(script("projects", "projects")), &out)

	assert.Len(t, exec.calls, 2)
	assert.Equal(t, 2, strings.Count(out.String(), "error: server returned 403: forbidden"))
}

func TestRunREPL_StopsOnCanceledContext(t *testing.T) {
	exec := &fakeExec{}
	var out bytes.Buffer
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runREPL(ctx, exec, func() string { return "" }, rdr(script("projects")), &out)

	assert.Empty(t, exec.calls)
	assert.Empty(t, out.String())
}
