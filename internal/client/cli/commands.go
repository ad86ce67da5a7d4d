package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/dmitrijs2005/icarus/internal/filex"
	"github.com/dmitrijs2005/icarus/internal/netx"
)

// Indirections over the interactive helpers and the download, swapped in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	confirm       = Confirm
	download      = netx.DownloadFromPresignedURL
)

func (a *App) readCredentials() (string, string, error) {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return "", "", err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return "", "", err
	}
	return userName, password, nil
}

// Register creates an account and logs into it.
func (a *App) Register(ctx context.Context) error {
	userName, password, err := a.readCredentials()
	if err != nil {
		return err
	}

	name, err := a.api.Register(ctx, userName, password)
	if err != nil {
		return err
	}

	a.userName = name
	fmt.Fprintln(a.out, "Success!")
	return nil
}

func (a *App) Login(ctx context.Context) error {
	userName, password, err := a.readCredentials()
	if err != nil {
		return err
	}

	name, err := a.api.Login(ctx, userName, password)
	if err != nil {
		return err
	}

	a.userName = name
	fmt.Fprintln(a.out, "Login successful")
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.api.Logout(ctx); err != nil {
		return err
	}
	a.userName = ""
	return nil
}

func (a *App) Projects(ctx context.Context) error {
	projects, err := a.api.Projects(ctx)
	if err != nil {
		return err
	}
	if len(projects) == 0 {
		fmt.Fprintln(a.out, "No projects yet, use 'upload' to create one")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCREATED")
	for _, p := range projects {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", p.ID, p.Name, p.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

func (a *App) Segments(ctx context.Context, projectID string) error {
	segments, err := a.api.Segments(ctx, projectID)
	if err != nil {
		return err
	}

	for i, s := range segments {
		fmt.Fprintf(a.out, "#%d %s\n  source:      %s\n  translation: %s\n", i+1, s.ID, s.Source, s.Translation)
	}
	fmt.Fprintf(a.out, "%d segment(s)\n", len(segments))
	return nil
}

func (a *App) Save(ctx context.Context, segmentID string) error {
	translation, err := getSimpleText(a.reader, "Enter translation", a.out)
	if err != nil {
		return err
	}

	if err := a.api.Save(ctx, segmentID, translation); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Saved")
	return nil
}

// Upload creates a project from a local .json, .txt or .md file.
func (a *App) Upload(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter project name", a.out)
	if err != nil {
		return err
	}
	path, err := getSimpleText(a.reader, "Enter file path", a.out)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	id, err := a.api.Upload(ctx, name, filepath.Base(path), f)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Created project", id)
	return nil
}

func (a *App) Delete(ctx context.Context, projectID string) error {
	ok, err := confirm(a.reader, fmt.Sprintf("Delete project %s and all its segments?", projectID), a.out)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(a.out, "Cancelled")
		return nil
	}

	if err := a.api.Delete(ctx, projectID); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Deleted")
	return nil
}

// Source prints the download link of the project's original file, or saves
// the file to dest when it is given.
func (a *App) Source(ctx context.Context, projectID, dest string) error {
	url, err := a.api.SourceURL(ctx, projectID)
	if err != nil {
		return err
	}
	if dest == "" {
		fmt.Fprintln(a.out, url)
		return nil
	}

	f, err := os.Create(dest)
	if err != nil {
		return err
	}

	n, err := download(ctx, url, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = filex.RemoveIfExists(dest)
		return err
	}

	fmt.Fprintf(a.out, "Saved %d bytes to %s\n", n, dest)
	return nil
}
