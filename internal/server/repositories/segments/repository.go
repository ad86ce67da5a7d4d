package segments

import (
	"context"

	"github.com/dmitrijs2005/icarus/internal/server/models"
)

type Repository interface {
	CreateBatch(ctx context.Context, projectID string, segments []*models.Segment) error
	ListByProject(ctx context.Context, projectID string) ([]*models.Segment, error)
	GetByID(ctx context.Context, id string) (*models.Segment, error)
	UpdateTranslation(ctx context.Context, id string, translation string) error
	DeleteByProject(ctx context.Context, projectID string) (int64, error)
}
