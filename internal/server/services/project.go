package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dmitrijs2005/icarus/internal/common"
	"github.com/dmitrijs2005/icarus/internal/dbx"
	"github.com/dmitrijs2005/icarus/internal/filex"
	"github.com/dmitrijs2005/icarus/internal/logging"
	"github.com/dmitrijs2005/icarus/internal/server/access"
	"github.com/dmitrijs2005/icarus/internal/server/archive"
	"github.com/dmitrijs2005/icarus/internal/server/metrics"
	"github.com/dmitrijs2005/icarus/internal/server/models"
	"github.com/dmitrijs2005/icarus/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/icarus/internal/server/segmenter"
	"github.com/google/uuid"
)

// Upload is a document materialised on local disk by the transport layer.
type Upload struct {
	OriginalFilename string `validate:"required"`
	TempPath         string `validate:"required"`
}

type IngestRequest struct {
	ProjectName string  `validate:"required"`
	Upload      *Upload `validate:"required"`
}

// SourceArchive stores original documents. It is optional.
type SourceArchive interface {
	Put(ctx context.Context, key string, filename string, body []byte) error
	PresignGet(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

// ProjectService owns projects and their segments. Every operation except
// Ingest acts on behalf of userID and goes through the access guard.
type ProjectService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	archive     SourceArchive
	logger      logging.Logger
}

// NewProjectService constructs a ProjectService. archive may be nil.
func NewProjectService(db *sql.DB, m repomanager.RepositoryManager, archive SourceArchive, logger logging.Logger) *ProjectService {
	return &ProjectService{
		db:          db,
		repomanager: m,
		archive:     archive,
		logger:      logger,
	}
}

// Ingest segments the uploaded document and creates a project holding the
// segments. The upload's temporary file is removed on every return path.
func (s *ProjectService) Ingest(ctx context.Context, ownerUserID string, req IngestRequest) (projectID string, err error) {
	if req.Upload != nil && req.Upload.TempPath != "" {
		defer func() {
			if rmErr := filex.RemoveIfExists(req.Upload.TempPath); rmErr != nil {
				s.logger.Warn(ctx, "upload cleanup failed", "error", rmErr)
			}
		}()
	}

	var units []segmenter.Unit
	defer func() {
		metrics.ObserveIngestion(ingestResult(err), len(units))
	}()

	if ownerUserID == "" {
		return "", common.ErrorUnauthorized
	}

	req.ProjectName = strings.TrimSpace(req.ProjectName)
	if err := validate.Struct(req); err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrorInvalidRequest, err)
	}

	data, err := os.ReadFile(req.Upload.TempPath)
	if err != nil {
		return "", fmt.Errorf("%w: read upload: %v", common.ErrorInternal, err)
	}

	units, err = segmenter.Segment(data, segmenter.Ext(req.Upload.OriginalFilename))
	if err != nil {
		s.logger.Info(ctx, "upload rejected", "user_id", ownerUserID, "filename", req.Upload.OriginalFilename, "error", err)
		return "", err
	}

	project, err := s.createProjectWithSegments(ctx, ownerUserID, req.ProjectName, units)
	if err != nil {
		s.logger.Error(ctx, "project creation failed", "user_id", ownerUserID, "error", err)
		return "", fmt.Errorf("%w: %v", common.ErrorStorage, err)
	}

	if s.archive != nil {
		if err := s.archive.Put(ctx, archive.SourceKey(project.ID), req.Upload.OriginalFilename, data); err != nil {
			s.logger.Warn(ctx, "source archive failed", "project_id", project.ID, "error", err)
		}
	}

	s.logger.Info(ctx, "project ingested", "project_id", project.ID, "user_id", ownerUserID, "segments", len(units))
	return project.ID, nil
}

func (s *ProjectService) createProjectWithSegments(ctx context.Context, ownerUserID, name string, units []segmenter.Unit) (*models.Project, error) {
	var project *models.Project

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		p, err := s.repomanager.Projects(tx).Create(ctx, &models.Project{Name: name, UserID: ownerUserID})
		if err != nil {
			return err
		}

		segments := make([]*models.Segment, len(units))
		for i, u := range units {
			segments[i] = &models.Segment{Source: u.Source, Translation: u.Translation}
		}
		if err := s.repomanager.Segments(tx).CreateBatch(ctx, p.ID, segments); err != nil {
			return err
		}

		project = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	return project, nil
}

// SeedDemoProject gives a freshly seeded demo account an empty sample project.
func (s *ProjectService) SeedDemoProject(ctx context.Context, ownerUserID string) (string, error) {
	project, err := s.createProjectWithSegments(ctx, ownerUserID, common.DemoProjectName, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrorStorage, err)
	}
	return project.ID, nil
}

func ingestResult(err error) string {
	switch {
	case err == nil:
		return metrics.ResultOK
	case errors.Is(err, common.ErrorInvalidRequest), errors.Is(err, common.ErrorUnauthorized):
		return metrics.ResultInvalid
	case errors.Is(err, common.ErrorUnsupportedFormat):
		return metrics.ResultUnsupported
	case errors.Is(err, common.ErrorParse):
		return metrics.ResultParseError
	case errors.Is(err, common.ErrorStorage):
		return metrics.ResultStorage
	default:
		return metrics.ResultError
	}
}

// ListProjects returns the projects owned by userID, oldest first.
func (s *ProjectService) ListProjects(ctx context.Context, userID string) ([]*models.Project, error) {
	if userID == "" {
		return nil, common.ErrorUnauthorized
	}

	projects, err := s.repomanager.Projects(s.db).ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorStorage, err)
	}
	return projects, nil
}

// authorizeProject loads projectID and checks that userID may perform action
// on it. Missing projects and malformed ids are reported as forbidden.
func (s *ProjectService) authorizeProject(ctx context.Context, userID, projectID string, action access.Action) (*models.Project, error) {
	if userID == "" {
		return nil, common.ErrorUnauthorized
	}

	var project *models.Project
	if _, err := uuid.Parse(projectID); err == nil {
		p, err := s.repomanager.Projects(s.db).GetByID(ctx, projectID)
		switch {
		case err == nil:
			project = p
		case !errors.Is(err, common.ErrorNotFound):
			return nil, fmt.Errorf("%w: %v", common.ErrorStorage, err)
		}
	}

	if err := access.Authorize(userID, project, action); err != nil {
		return nil, err
	}
	return project, nil
}

// GetSegments returns the segments of projectID in document order.
func (s *ProjectService) GetSegments(ctx context.Context, userID, projectID string) ([]*models.Segment, error) {
	if _, err := s.authorizeProject(ctx, userID, projectID, access.Read); err != nil {
		return nil, err
	}

	segments, err := s.repomanager.Segments(s.db).ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorStorage, err)
	}
	return segments, nil
}

// UpdateSegmentTranslation overwrites the translation of segmentID. The
// caller must own the segment's project.
func (s *ProjectService) UpdateSegmentTranslation(ctx context.Context, userID, segmentID, translation string) error {
	if userID == "" {
		return common.ErrorUnauthorized
	}
	if strings.ContainsRune(translation, 0) {
		return fmt.Errorf("%w: translation contains a NUL character", common.ErrorInvalidRequest)
	}
	if _, err := uuid.Parse(segmentID); err != nil {
		return fmt.Errorf("%w: segment %q", common.ErrorNotFound, segmentID)
	}

	segment, err := s.repomanager.Segments(s.db).GetByID(ctx, segmentID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return err
		}
		return fmt.Errorf("%w: %v", common.ErrorStorage, err)
	}

	if _, err := s.authorizeProject(ctx, userID, segment.ProjectID, access.Update); err != nil {
		return err
	}

	if err := s.repomanager.Segments(s.db).UpdateTranslation(ctx, segmentID, translation); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return err
		}
		return fmt.Errorf("%w: %v", common.ErrorStorage, err)
	}

	metrics.TranslationUpdatesTotal.Inc()
	return nil
}

// DeleteProject removes projectID and all of its segments and returns the
// number of projects removed.
func (s *ProjectService) DeleteProject(ctx context.Context, userID, projectID string) (int64, error) {
	if _, err := s.authorizeProject(ctx, userID, projectID, access.Delete); err != nil {
		return 0, err
	}

	var removed int64
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.Segments(tx).DeleteByProject(ctx, projectID); err != nil {
			return err
		}
		n, err := s.repomanager.Projects(tx).Delete(ctx, projectID)
		if err != nil {
			return err
		}
		removed = n
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", common.ErrorStorage, err)
	}
	if removed == 0 {
		return 0, fmt.Errorf("%w: project %q", common.ErrorNotFound, projectID)
	}

	metrics.ProjectsDeletedTotal.Inc()

	if s.archive != nil {
		if err := s.archive.Delete(ctx, archive.SourceKey(projectID)); err != nil {
			s.logger.Warn(ctx, "source archive cleanup failed", "project_id", projectID, "error", err)
		}
	}

	s.logger.Info(ctx, "project deleted", "project_id", projectID, "user_id", userID)
	return removed, nil
}

// SourceURL returns a temporary download link for the document projectID was
// created from.
func (s *ProjectService) SourceURL(ctx context.Context, userID, projectID string) (string, error) {
	if _, err := s.authorizeProject(ctx, userID, projectID, access.Read); err != nil {
		return "", err
	}
	if s.archive == nil {
		return "", fmt.Errorf("%w: source archive disabled", common.ErrorNotFound)
	}

	url, err := s.archive.PresignGet(ctx, archive.SourceKey(projectID))
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	return url, nil
}
