package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/stonebridge/family-office-portal/models"
	"github.com/stonebridge/family-office-portal/repositories"
	"github.com/stonebridge/family-office-portal/services"
)

const meetingColumns = `id, title, description, start_time, end_time, family_id, advisor_id, attendees, status, meeting_link, notes, action_items, created_by, created_at, updated_at`

// MeetingRepository implements the repositories.MeetingRepository interface
type MeetingRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewMeetingRepository creates a new meeting repository
func NewMeetingRepository(db *DB, logger *zap.Logger) repositories.MeetingRepository {
	return &MeetingRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new meeting
func (r *MeetingRepository) Create(ctx context.Context, meeting *models.Meeting) error {
	query := `
		INSERT INTO meetings (` + meetingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		meeting.ID,
		meeting.Title,
		meeting.Description,
		meeting.StartTime,
		meeting.EndTime,
		meeting.FamilyID,
		meeting.AdvisorID,
		uuidArray(meeting.Attendees),
		meeting.Status,
		meeting.MeetingLink,
		meeting.Notes,
		pq.Array(meeting.ActionItems),
		meeting.CreatedBy,
		meeting.CreatedAt,
		meeting.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create meeting: %w", err)
	}

	r.logger.Debug("meeting created",
		zap.String("id", meeting.ID.String()),
		zap.String("family_id", meeting.FamilyID.String()))
	return nil
}

// GetByID retrieves a meeting by ID
func (r *MeetingRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Meeting, error) {
	query := `SELECT ` + meetingColumns + ` FROM meetings WHERE id = $1`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query meeting: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to get meeting: %w", err)
		}
		return nil, services.ErrMeetingNotFound
	}

	return scanMeeting(rows)
}

// List retrieves meetings matching the filter
func (r *MeetingRepository) List(ctx context.Context, filter repositories.MeetingFilter) ([]*models.Meeting, error) {
	query := `SELECT ` + meetingColumns + ` FROM meetings WHERE 1=1`
	args := []interface{}{}

	if filter.FamilyID != nil {
		args = append(args, *filter.FamilyID)
		query += fmt.Sprintf(" AND family_id = $%d", len(args))
	}
	if filter.AdvisorID != nil {
		args = append(args, *filter.AdvisorID)
		query += fmt.Sprintf(" AND advisor_id = $%d", len(args))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	query += " ORDER BY start_time ASC"

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query meetings: %w", err)
	}
	defer rows.Close()

	var meetings []*models.Meeting
	for rows.Next() {
		meeting, err := scanMeeting(rows)
		if err != nil {
			return nil, err
		}
		meetings = append(meetings, meeting)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating meeting rows: %w", err)
	}

	return meetings, nil
}

// Update updates a meeting
func (r *MeetingRepository) Update(ctx context.Context, meeting *models.Meeting) error {
	query := `
		UPDATE meetings
		SET title = $2,
		    description = $3,
		    start_time = $4,
		    end_time = $5,
		    status = $6,
		    meeting_link = $7,
		    notes = $8,
		    action_items = $9,
		    updated_at = $10
		WHERE id = $1
	`

	meeting.UpdatedAt = time.Now().UTC()

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query,
		meeting.ID,
		meeting.Title,
		meeting.Description,
		meeting.StartTime,
		meeting.EndTime,
		meeting.Status,
		meeting.MeetingLink,
		meeting.Notes,
		pq.Array(meeting.ActionItems),
		meeting.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update meeting: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return services.ErrMeetingNotFound
	}

	r.logger.Debug("meeting updated", zap.String("id", meeting.ID.String()))
	return nil
}

func scanMeeting(rows *sql.Rows) (*models.Meeting, error) {
	meeting := &models.Meeting{}
	var attendees pq.StringArray
	var actionItems pq.StringArray

	err := rows.Scan(
		&meeting.ID,
		&meeting.Title,
		&meeting.Description,
		&meeting.StartTime,
		&meeting.EndTime,
		&meeting.FamilyID,
		&meeting.AdvisorID,
		&attendees,
		&meeting.Status,
		&meeting.MeetingLink,
		&meeting.Notes,
		&actionItems,
		&meeting.CreatedBy,
		&meeting.CreatedAt,
		&meeting.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan meeting: %w", err)
	}

	meeting.ActionItems = actionItems
	meeting.Attendees, err = parseUUIDs(attendees)
	if err != nil {
		return nil, err
	}

	return meeting, nil
}
