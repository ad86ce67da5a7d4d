// Package segments provides the PostgreSQL-backed segment repository.
package segments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/icarus/internal/common"
	"github.com/dmitrijs2005/icarus/internal/dbx"
	"github.com/dmitrijs2005/icarus/internal/server/models"
)

// PostgresRepository implements segment storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// CreateBatch inserts segments for projectID in slice order, assigning each
// its ID. The insert stops at the first failure; run it inside a
// transaction to get all-or-nothing behaviour.
func (r *PostgresRepository) CreateBatch(ctx context.Context, projectID string, segments []*models.Segment) error {
	query :=
		`INSERT INTO segments (project_id, position, source_text, translation_text)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id
		 `

	for i, s := range segments {
		s.ProjectID = projectID
		s.Position = i
		if err := r.db.QueryRowContext(ctx, query, projectID, i, s.Source, s.Translation).Scan(&s.ID); err != nil {
			return fmt.Errorf("db error: segment %d: %w", i, err)
		}
	}

	return nil
}

// ListByProject returns the project's segments in upload order.
func (r *PostgresRepository) ListByProject(ctx context.Context, projectID string) ([]*models.Segment, error) {
	query :=
		`SELECT id, project_id, position, source_text, translation_text FROM segments
		 WHERE project_id = $1
		 ORDER BY position
		 `

	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to select segments: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Segment, 0)
	for rows.Next() {
		var item models.Segment
		if err := rows.Scan(&item.ID, &item.ProjectID, &item.Position, &item.Source, &item.Translation); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// GetByID returns the segment or common.ErrorNotFound.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Segment, error) {
	query :=
		`SELECT id, project_id, position, source_text, translation_text FROM segments
		 WHERE id = $1
		 `

	s := &models.Segment{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&s.ID, &s.ProjectID, &s.Position, &s.Source, &s.Translation)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

// UpdateTranslation overwrites the translation. PostgreSQL counts a matched
// row as affected even when the value is unchanged, so zero rows means the
// segment does not exist.
func (r *PostgresRepository) UpdateTranslation(ctx context.Context, id string, translation string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE segments SET translation_text = $1 WHERE id = $2`, translation, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrorNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

// DeleteByProject removes every segment of projectID and returns the count.
func (r *PostgresRepository) DeleteByProject(ctx context.Context, projectID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM segments WHERE project_id = $1`, projectID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	return n, nil
}
