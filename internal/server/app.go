// Package server wires the ICARUS application together: it opens the
// database, applies migrations, builds the services and runs the HTTP API
// until the process is signalled to stop.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/icarus/internal/filex"
	"github.com/dmitrijs2005/icarus/internal/logging"
	"github.com/dmitrijs2005/icarus/internal/server/archive"
	"github.com/dmitrijs2005/icarus/internal/server/config"
	"github.com/dmitrijs2005/icarus/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/icarus/internal/server/rest"
	"github.com/dmitrijs2005/icarus/internal/server/services"
	_ "github.com/jackc/pgx/v5/stdlib"
)

type App struct {
	config         *config.Config
	logger         logging.Logger
	db             *sql.DB
	userService    *services.UserService
	projectService *services.ProjectService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, slog.LevelInfo)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	uploadDir, err := filex.EnsureDir(c.UploadDir)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("upload dir error: %w", err)
	}
	c.UploadDir = uploadDir

	var sourceArchive services.SourceArchive
	if c.ArchiveEnabled() {
		a, err := archive.NewS3Archive(ctx, c)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("archive init error: %w", err)
		}
		sourceArchive = a
	}

	us := services.NewUserService(db, rm, c, logger.With("module", "users"))
	ps := services.NewProjectService(db, rm, sourceArchive, logger.With("module", "projects"))

	return &App{config: c, logger: logger, db: db, userService: us, projectService: ps}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := rest.NewHTTPServer(app.config, app.logger, app.userService, app.projectService)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// seedDemoData creates the demo account and its sample project on an empty
// database. Failures are logged and do not stop the server.
func (app *App) seedDemoData(ctx context.Context) {
	user, err := app.userService.SeedDemoUser(ctx, app.config.DemoUserPassword)
	if err != nil {
		app.logger.Warn(ctx, "demo user seed failed", "error", err)
		return
	}
	if user == nil {
		return
	}

	projectID, err := app.projectService.SeedDemoProject(ctx, user.ID)
	if err != nil {
		app.logger.Warn(ctx, "demo project seed failed", "error", err)
		return
	}
	app.logger.Info(ctx, "demo data created", "user_id", user.ID, "project_id", projectID)
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()
	defer app.db.Close()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	app.seedDemoData(ctx)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()
}
