// Package rest exposes the ICARUS JSON API over HTTP using gin.
package rest

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/icarus/internal/logging"
	"github.com/dmitrijs2005/icarus/internal/server/config"
	"github.com/dmitrijs2005/icarus/internal/server/models"
	"github.com/dmitrijs2005/icarus/internal/server/services"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 5 * time.Second

type UserService interface {
	Register(ctx context.Context, username, password string) (*models.User, error)
	Login(ctx context.Context, username, password string) (*models.User, error)
	Get(ctx context.Context, userID string) (*models.User, error)
	IssueSession(userID string) (string, error)
	SessionValidity() time.Duration
	Authenticate(token string) (string, error)
}

type ProjectService interface {
	Ingest(ctx context.Context, ownerUserID string, req services.IngestRequest) (string, error)
	ListProjects(ctx context.Context, userID string) ([]*models.Project, error)
	GetSegments(ctx context.Context, userID, projectID string) ([]*models.Segment, error)
	UpdateSegmentTranslation(ctx context.Context, userID, segmentID, translation string) error
	DeleteProject(ctx context.Context, userID, projectID string) (int64, error)
	SourceURL(ctx context.Context, userID, projectID string) (string, error)
}

type HTTPServer struct {
	address       string
	uploadDir     string
	maxUploadSize int64
	static        http.Handler
	users         UserService
	projects      ProjectService
	logger        logging.Logger
}

func NewHTTPServer(c *config.Config, l logging.Logger, us UserService, ps ProjectService) *HTTPServer {
	s := &HTTPServer{
		address:       c.EndpointAddrHTTP,
		uploadDir:     c.UploadDir,
		maxUploadSize: c.MaxUploadSize,
		users:         us,
		projects:      ps,
		logger:        l.With("module", "http_server"),
	}
	if c.StaticDir != "" {
		s.static = http.FileServer(http.Dir(c.StaticDir))
	}
	return s
}

// Router builds the gin engine with every route and middleware installed.
func (s *HTTPServer) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger(), s.session())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.POST("/register", s.register)
		api.POST("/login", s.login)
		api.POST("/logout", s.logout)
		api.GET("/session", s.currentSession)

		authed := api.Group("", requireUser)
		authed.GET("/projects", s.listProjects)
		authed.DELETE("/projects/:projectId", s.deleteProject)
		authed.GET("/projects/:projectId/source", s.sourceURL)
		authed.GET("/segments/:projectId", s.getSegments)
		authed.POST("/save", s.save)
		authed.POST("/upload", s.upload)
	}

	router.NoRoute(s.notFound)

	return router
}

func (s *HTTPServer) notFound(c *gin.Context) {
	if s.static == nil || strings.HasPrefix(c.Request.URL.Path, "/api/") {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	s.static.ServeHTTP(c.Writer, c.Request)
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP server shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
