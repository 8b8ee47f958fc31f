package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/stonebridge/family-office-portal/models"
	"github.com/stonebridge/family-office-portal/repositories"
	"github.com/stonebridge/family-office-portal/services"
)

// documentColumns is the metadata column list shared by document queries.
// file_content is fetched separately; listings never carry the body.
const documentColumns = `id, filename, original_filename, file_size, content_type, document_type, family_id, uploaded_by, tags, description, access_permissions, is_active, uploaded_at`

// DocumentRepository implements the repositories.DocumentRepository interface
type DocumentRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *DB, logger *zap.Logger) repositories.DocumentRepository {
	return &DocumentRepository{
		db:     db,
		logger: logger,
	}
}

// Create stores a new document record with its base64 content
func (r *DocumentRepository) Create(ctx context.Context, doc *models.Document, contentBase64 string) error {
	query := `
		INSERT INTO documents (` + documentColumns + `, file_content)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		doc.ID,
		doc.Filename,
		doc.OriginalFilename,
		doc.FileSize,
		doc.ContentType,
		doc.DocumentType,
		doc.FamilyID,
		doc.UploadedBy,
		pq.Array(doc.Tags),
		doc.Description,
		uuidArray(doc.AccessPermissions),
		doc.IsActive,
		doc.UploadedAt,
		contentBase64,
	)

	if err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}

	r.logger.Debug("document created",
		zap.String("id", doc.ID.String()),
		zap.String("family_id", doc.FamilyID.String()),
		zap.Int64("size", doc.FileSize))
	return nil
}

// GetByID retrieves a document's metadata by ID
func (r *DocumentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1 AND is_active = true`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query document: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to get document: %w", err)
		}
		return nil, services.ErrDocumentNotFound
	}

	return scanDocument(rows)
}

// GetContent retrieves a document's base64 content by ID
func (r *DocumentRepository) GetContent(ctx context.Context, id uuid.UUID) (string, error) {
	query := `SELECT file_content FROM documents WHERE id = $1 AND is_active = true`

	executor := GetExecutor(ctx, r.db)

	var content string
	err := executor.QueryRowContext(ctx, query, id).Scan(&content)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", services.ErrDocumentNotFound
		}
		return "", fmt.Errorf("failed to get document content: %w", err)
	}

	return content, nil
}

// List retrieves documents matching the filter
func (r *DocumentRepository) List(ctx context.Context, filter repositories.DocumentFilter) ([]*models.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE is_active = true`
	args := []interface{}{}

	if filter.FamilyID != nil {
		args = append(args, *filter.FamilyID)
		query += fmt.Sprintf(" AND family_id = $%d", len(args))
	}
	if filter.DocumentType != nil {
		args = append(args, *filter.DocumentType)
		query += fmt.Sprintf(" AND document_type = $%d", len(args))
	}
	query += " ORDER BY uploaded_at DESC"

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var docs []*models.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating document rows: %w", err)
	}

	return docs, nil
}

func scanDocument(rows *sql.Rows) (*models.Document, error) {
	doc := &models.Document{}
	var tags pq.StringArray
	var permissions pq.StringArray

	err := rows.Scan(
		&doc.ID,
		&doc.Filename,
		&doc.OriginalFilename,
		&doc.FileSize,
		&doc.ContentType,
		&doc.DocumentType,
		&doc.FamilyID,
		&doc.UploadedBy,
		&tags,
		&doc.Description,
		&permissions,
		&doc.IsActive,
		&doc.UploadedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan document: %w", err)
	}

	doc.Tags = tags
	doc.AccessPermissions, err = parseUUIDs(permissions)
	if err != nil {
		return nil, err
	}

	return doc, nil
}
