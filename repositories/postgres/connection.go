package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"go.uber.org/zap"

	"github.com/stonebridge/family-office-portal/config"
)

// DB wraps the sql.DB connection pool
type DB struct {
	*sql.DB
	logger *zap.Logger
}

// NewDB creates a new database connection pool
func NewDB(cfg config.DatabaseConfig, logger *zap.Logger) (*DB, error) {
	dsn := cfg.DSN()

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("database connection established",
		zap.String("connection", cfg.LogString()))

	return &DB{
		DB:     db,
		logger: logger,
	}, nil
}

// Close closes the database connection pool
func (db *DB) Close() error {
	db.logger.Info("closing database connection")
	return db.DB.Close()
}

// HealthCheck performs a health check on the database
func (db *DB) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	var result int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("database query check failed: %w", err)
	}

	return nil
}

// Stats returns database connection pool statistics
func (db *DB) Stats() sql.DBStats {
	return db.DB.Stats()
}

// InitSchema initializes the database schema
func (db *DB) InitSchema(ctx context.Context) error {
	schema := `
		-- Family offices table (tenant boundary)
		CREATE TABLE IF NOT EXISTS family_offices (
			id UUID PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		-- Families table
		CREATE TABLE IF NOT EXISTS families (
			id UUID PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			family_office_id UUID NOT NULL REFERENCES family_offices(id) ON DELETE CASCADE,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		-- Users table
		CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			email VARCHAR(255) NOT NULL UNIQUE,
			password_hash VARCHAR(255) NOT NULL,
			first_name VARCHAR(255) NOT NULL,
			last_name VARCHAR(255) NOT NULL,
			role VARCHAR(50) NOT NULL,
			family_office_id UUID NOT NULL REFERENCES family_offices(id) ON DELETE CASCADE,
			family_id UUID REFERENCES families(id) ON DELETE SET NULL,
			is_active BOOLEAN NOT NULL DEFAULT true,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		-- Documents table; file body kept as base64 text, keyed by id
		CREATE TABLE IF NOT EXISTS documents (
			id UUID PRIMARY KEY,
			filename VARCHAR(255) NOT NULL,
			original_filename VARCHAR(255) NOT NULL,
			file_size BIGINT NOT NULL,
			content_type VARCHAR(255) NOT NULL,
			document_type VARCHAR(50) NOT NULL,
			family_id UUID NOT NULL REFERENCES families(id) ON DELETE CASCADE,
			uploaded_by UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			tags TEXT[] NOT NULL DEFAULT '{}',
			description TEXT NOT NULL DEFAULT '',
			access_permissions UUID[] NOT NULL DEFAULT '{}',
			is_active BOOLEAN NOT NULL DEFAULT true,
			file_content TEXT NOT NULL,
			uploaded_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		-- Meetings table
		CREATE TABLE IF NOT EXISTS meetings (
			id UUID PRIMARY KEY,
			title VARCHAR(255) NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			start_time TIMESTAMP NOT NULL,
			end_time TIMESTAMP NOT NULL,
			family_id UUID NOT NULL REFERENCES families(id) ON DELETE CASCADE,
			advisor_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			attendees UUID[] NOT NULL DEFAULT '{}',
			status VARCHAR(50) NOT NULL,
			meeting_link TEXT NOT NULL DEFAULT '',
			notes TEXT NOT NULL DEFAULT '',
			action_items TEXT[] NOT NULL DEFAULT '{}',
			created_by UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		-- Messages table
		CREATE TABLE IF NOT EXISTS messages (
			id UUID PRIMARY KEY,
			content TEXT NOT NULL,
			message_type VARCHAR(50) NOT NULL,
			sender_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			recipient_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			family_id UUID NOT NULL REFERENCES families(id) ON DELETE CASCADE,
			attachment_id UUID REFERENCES documents(id) ON DELETE SET NULL,
			is_read BOOLEAN NOT NULL DEFAULT false,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		-- Indexes for performance
		CREATE INDEX IF NOT EXISTS idx_families_office_id ON families(family_office_id);
		CREATE INDEX IF NOT EXISTS idx_users_office_id ON users(family_office_id);
		CREATE INDEX IF NOT EXISTS idx_users_family_id ON users(family_id);
		CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);
		CREATE INDEX IF NOT EXISTS idx_documents_family_id ON documents(family_id);
		CREATE INDEX IF NOT EXISTS idx_meetings_family_id ON meetings(family_id);
		CREATE INDEX IF NOT EXISTS idx_meetings_advisor_id ON meetings(advisor_id);
		CREATE INDEX IF NOT EXISTS idx_messages_family_id ON messages(family_id);
		CREATE INDEX IF NOT EXISTS idx_messages_sender_id ON messages(sender_id);
		CREATE INDEX IF NOT EXISTS idx_messages_recipient_id ON messages(recipient_id);
	`

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	db.logger.Info("database schema initialized successfully")
	return nil
}
