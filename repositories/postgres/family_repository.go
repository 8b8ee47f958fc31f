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

// FamilyRepository implements the repositories.FamilyRepository interface
type FamilyRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewFamilyRepository creates a new family repository
func NewFamilyRepository(db *DB, logger *zap.Logger) repositories.FamilyRepository {
	return &FamilyRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new family
func (r *FamilyRepository) Create(ctx context.Context, family *models.Family) error {
	query := `
		INSERT INTO families (id, name, family_office_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		family.ID,
		family.Name,
		family.FamilyOfficeID,
		family.CreatedAt,
		family.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create family: %w", err)
	}

	r.logger.Debug("family created", zap.String("id", family.ID.String()), zap.String("name", family.Name))
	return nil
}

// GetByID retrieves a family by ID
func (r *FamilyRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Family, error) {
	query := `
		SELECT id, name, family_office_id, created_at, updated_at
		FROM families
		WHERE id = $1
	`

	executor := GetExecutor(ctx, r.db)
	family := &models.Family{}

	err := executor.QueryRowContext(ctx, query, id).Scan(
		&family.ID,
		&family.Name,
		&family.FamilyOfficeID,
		&family.CreatedAt,
		&family.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, services.ErrFamilyNotFound
		}
		return nil, fmt.Errorf("failed to get family: %w", err)
	}

	return family, nil
}

// List retrieves all families
func (r *FamilyRepository) List(ctx context.Context) ([]*models.Family, error) {
	query := `
		SELECT id, name, family_office_id, created_at, updated_at
		FROM families
		ORDER BY created_at DESC
	`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query families: %w", err)
	}
	defer rows.Close()

	return collectFamilies(rows)
}

// GetByOfficeID retrieves all families for a family office
func (r *FamilyRepository) GetByOfficeID(ctx context.Context, officeID uuid.UUID) ([]*models.Family, error) {
	query := `
		SELECT id, name, family_office_id, created_at, updated_at
		FROM families
		WHERE family_office_id = $1
		ORDER BY created_at DESC
	`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, officeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query families: %w", err)
	}
	defer rows.Close()

	return collectFamilies(rows)
}

func collectFamilies(rows *sql.Rows) ([]*models.Family, error) {
	var families []*models.Family
	for rows.Next() {
		family := &models.Family{}
		err := rows.Scan(
			&family.ID,
			&family.Name,
			&family.FamilyOfficeID,
			&family.CreatedAt,
			&family.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan family: %w", err)
		}
		families = append(families, family)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating family rows: %w", err)
	}

	return families, nil
}
