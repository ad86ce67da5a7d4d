package projects

import (
	"context"

	"github.com/dmitrijs2005/icarus/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, project *models.Project) (*models.Project, error)
	GetByID(ctx context.Context, id string) (*models.Project, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Project, error)
	Delete(ctx context.Context, id string) (int64, error)
}
