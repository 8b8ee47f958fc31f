package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stonebridge/family-office-portal/models"
	"github.com/stonebridge/family-office-portal/repositories"
	"github.com/stonebridge/family-office-portal/services"
)

const messageColumns = `id, content, message_type, sender_id, recipient_id, family_id, attachment_id, is_read, created_at`

// MessageRepository implements the repositories.MessageRepository interface
type MessageRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(db *DB, logger *zap.Logger) repositories.MessageRepository {
	return &MessageRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new message
func (r *MessageRepository) Create(ctx context.Context, message *models.Message) error {
	query := `
		INSERT INTO messages (` + messageColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		message.ID,
		message.Content,
		message.MessageType,
		message.SenderID,
		message.RecipientID,
		message.FamilyID,
		message.AttachmentID,
		message.IsRead,
		message.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}

	r.logger.Debug("message created",
		zap.String("id", message.ID.String()),
		zap.String("family_id", message.FamilyID.String()))
	return nil
}

// List retrieves messages where the participant is sender or recipient,
// newest first, optionally narrowed by family or the other party.
func (r *MessageRepository) List(ctx context.Context, filter repositories.MessageFilter) ([]*models.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE (sender_id = $1 OR recipient_id = $1)`
	args := []interface{}{filter.ParticipantID}

	if filter.FamilyID != nil {
		args = append(args, *filter.FamilyID)
		query += fmt.Sprintf(" AND family_id = $%d", len(args))
	}
	if filter.CorrespondentID != nil {
		args = append(args, *filter.CorrespondentID)
		query += fmt.Sprintf(" AND (sender_id = $%d OR recipient_id = $%d)", len(args), len(args))
	}
	query += " ORDER BY created_at DESC"

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var messages []*models.Message
	for rows.Next() {
		message, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating message rows: %w", err)
	}

	return messages, nil
}

// MarkRead marks a message as read. Only the recipient may mark a message
// read, so the recipient is part of the predicate rather than a post-check.
func (r *MessageRepository) MarkRead(ctx context.Context, id, recipientID uuid.UUID) error {
	query := `UPDATE messages SET is_read = true WHERE id = $1 AND recipient_id = $2`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, id, recipientID)
	if err != nil {
		return fmt.Errorf("failed to mark message read: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return services.ErrMessageNotFound
	}

	r.logger.Debug("message marked read", zap.String("id", id.String()))
	return nil
}

func scanMessage(rows *sql.Rows) (*models.Message, error) {
	message := &models.Message{}

	err := rows.Scan(
		&message.ID,
		&message.Content,
		&message.MessageType,
		&message.SenderID,
		&message.RecipientID,
		&message.FamilyID,
		&message.AttachmentID,
		&message.IsRead,
		&message.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan message: %w", err)
	}

	return message, nil
}
