package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// execIface defines the command surface the REPL dispatches to.
// The real App satisfies it; tests provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Projects(ctx context.Context) error
	Segments(ctx context.Context, projectID string) error
	Save(ctx context.Context, segmentID string) error
	Upload(ctx context.Context) error
	Delete(ctx context.Context, projectID string) error
	Source(ctx context.Context, projectID, dest string) error
}

// runREPL reads one command per line from r and dispatches it to a. Command
// errors are printed and the loop goes on. The loop exits on EOF, on "exit"
// or "quit", or when ctx is done.
func runREPL(ctx context.Context, a execIface, statusFn func() string, r *bufio.Reader, w io.Writer) {
	for {
		if ctx.Err() != nil {
			return
		}

		fmt.Fprintf(w, "icarus %s> ", statusFn())
		line, err := readLine(r)
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		arg := func(i int) string {
			if i < len(args) {
				return args[i]
			}
			return ""
		}
		usage := func(u string) bool {
			if len(args) == 0 {
				fmt.Fprintln(w, "Usage:", u)
				return true
			}
			return false
		}

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Fprintln(w, "Available commands: projects, segments <project>, save <segment>, upload, delete <project>, source <project> [file], logout, exit")
			} else {
				fmt.Fprintln(w, "Available commands: register, login, exit")
			}

		case "register":
			cmdErr = a.Register(ctx)

		case "login":
			cmdErr = a.Login(ctx)

		case "logout":
			cmdErr = a.Logout(ctx)

		case "p", "projects":
			cmdErr = a.Projects(ctx)

		case "segments":
			if usage("segments <project>") {
				continue
			}
			cmdErr = a.Segments(ctx, arg(0))

		case "save":
			if usage("save <segment>") {
				continue
			}
			cmdErr = a.Save(ctx, arg(0))

		case "upload":
			cmdErr = a.Upload(ctx)

		case "delete":
			if usage("delete <project>") {
				continue
			}
			cmdErr = a.Delete(ctx, arg(0))

		case "source":
			if usage("source <project> [file]") {
				continue
			}
			cmdErr = a.Source(ctx, arg(0), arg(1))

		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return

		default:
			fmt.Fprintln(w, "Unknown command:", cmd)
		}

		if cmdErr != nil {
			fmt.Fprintln(w, "error:", cmdErr)
		}
	}
}
