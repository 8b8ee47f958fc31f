package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stonebridge/family-office-portal/repositories"
)

// RelationshipRepository answers existence queries over the relations that
// tie an advisor to a family. It backs the access decision engine, which
// only cares whether at least one qualifying row exists.
type RelationshipRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewRelationshipRepository creates a new relationship repository
func NewRelationshipRepository(db *DB, logger *zap.Logger) repositories.RelationshipRepository {
	return &RelationshipRepository{
		db:     db,
		logger: logger,
	}
}

// CountMeetingFacts counts meetings linking the advisor to the family
func (r *RelationshipRepository) CountMeetingFacts(ctx context.Context, advisorID, familyID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM meetings WHERE advisor_id = $1 AND family_id = $2`

	executor := GetExecutor(ctx, r.db)
	var count int
	if err := executor.QueryRowContext(ctx, query, advisorID, familyID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count meeting relations: %w", err)
	}

	return count, nil
}

// CountMessageFacts counts messages tagged to the family where the principal
// is sender or recipient
func (r *RelationshipRepository) CountMessageFacts(ctx context.Context, principalID, familyID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM messages WHERE family_id = $2 AND (sender_id = $1 OR recipient_id = $1)`

	executor := GetExecutor(ctx, r.db)
	var count int
	if err := executor.QueryRowContext(ctx, query, principalID, familyID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count message relations: %w", err)
	}

	return count, nil
}
