package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/icarus/internal/client/api"
	"github.com/dmitrijs2005/icarus/internal/client/config"
)

// apiClient is the part of *api.Client the commands use.
type apiClient interface {
	Register(ctx context.Context, username, password string) (string, error)
	Login(ctx context.Context, username, password string) (string, error)
	Logout(ctx context.Context) error
	Session(ctx context.Context) (*api.Session, error)
	Projects(ctx context.Context) ([]api.Project, error)
	Segments(ctx context.Context, projectID string) ([]api.Segment, error)
	Save(ctx context.Context, segmentID, translation string) error
	Upload(ctx context.Context, projectName, filename string, r io.Reader) (string, error)
	Delete(ctx context.Context, projectID string) error
	SourceURL(ctx context.Context, projectID string) (string, error)
}

type App struct {
	config   *config.Config
	api      apiClient
	reader   *bufio.Reader
	out      io.Writer
	userName string
}

func NewApp(c *config.Config) (*App, error) {
	client, err := api.New(c.ServerURL, c.RequestTimeout)
	if err != nil {
		return nil, err
	}

	return &App{config: c, api: client, reader: bufio.NewReader(os.Stdin), out: os.Stdout}, nil
}

func (a *App) isLoggedIn() bool {
	return a.userName != ""
}

func (a *App) getStatus() string {
	if a.userName == "" {
		return ""
	}
	return fmt.Sprintf("(%s) ", a.userName)
}

// Run checks that the server answers and then serves the REPL until exit,
// EOF or ctx cancellation.
func (a *App) Run(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to ICARUS CLI (type 'help' for commands)")

	if _, err := a.api.Session(ctx); err != nil {
		fmt.Fprintf(a.out, "warning: server %s is not reachable: %v\n", a.config.ServerURL, err)
	}

	runREPL(ctx, a, a.getStatus, a.reader, a.out)
}
