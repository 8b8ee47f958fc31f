package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stonebridge/family-office-portal/models"
	"github.com/stonebridge/family-office-portal/repositories"
	"github.com/stonebridge/family-office-portal/services"
)

// OfficeRepository implements the repositories.OfficeRepository interface
type OfficeRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewOfficeRepository creates a new family office repository
func NewOfficeRepository(db *DB, logger *zap.Logger) repositories.OfficeRepository {
	return &OfficeRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new family office
func (r *OfficeRepository) Create(ctx context.Context, office *models.FamilyOffice) error {
	query := `
		INSERT INTO family_offices (id, name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		office.ID,
		office.Name,
		office.Description,
		office.CreatedAt,
		office.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create family office: %w", err)
	}

	r.logger.Debug("family office created", zap.String("id", office.ID.String()), zap.String("name", office.Name))
	return nil
}

// GetByID retrieves a family office by ID
func (r *OfficeRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.FamilyOffice, error) {
	query := `
		SELECT id, name, description, created_at, updated_at
		FROM family_offices
		WHERE id = $1
	`

	executor := GetExecutor(ctx, r.db)
	office := &models.FamilyOffice{}

	err := executor.QueryRowContext(ctx, query, id).Scan(
		&office.ID,
		&office.Name,
		&office.Description,
		&office.CreatedAt,
		&office.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, services.ErrOfficeNotFound
		}
		return nil, fmt.Errorf("failed to get family office: %w", err)
	}

	return office, nil
}

// List retrieves all family offices
func (r *OfficeRepository) List(ctx context.Context) ([]*models.FamilyOffice, error) {
	query := `
		SELECT id, name, description, created_at, updated_at
		FROM family_offices
		ORDER BY created_at DESC
	`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query family offices: %w", err)
	}
	defer rows.Close()

	var offices []*models.FamilyOffice
	for rows.Next() {
		office := &models.FamilyOffice{}
		err := rows.Scan(
			&office.ID,
			&office.Name,
			&office.Description,
			&office.CreatedAt,
			&office.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan family office: %w", err)
		}
		offices = append(offices, office)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating family office rows: %w", err)
	}

	return offices, nil
}
