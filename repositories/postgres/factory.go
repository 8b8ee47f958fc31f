package postgres

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/stonebridge/family-office-portal/config"
	"github.com/stonebridge/family-office-portal/repositories"
)

// RepositoryFactory creates PostgreSQL-backed repositories sharing one pool
type RepositoryFactory struct {
	db     *DB
	logger *zap.Logger
}

// NewRepositoryFactory creates a new repository factory with a database connection
func NewRepositoryFactory(cfg *config.Config, logger *zap.Logger) (*RepositoryFactory, error) {
	db, err := NewDB(cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection: %w", err)
	}

	return &RepositoryFactory{
		db:     db,
		logger: logger,
	}, nil
}

// NewRepositories creates the full repository set
func (f *RepositoryFactory) NewRepositories() *repositories.Repositories {
	return &repositories.Repositories{
		Users:         NewUserRepository(f.db, f.logger),
		Offices:       NewOfficeRepository(f.db, f.logger),
		Families:      NewFamilyRepository(f.db, f.logger),
		Documents:     NewDocumentRepository(f.db, f.logger),
		Meetings:      NewMeetingRepository(f.db, f.logger),
		Messages:      NewMessageRepository(f.db, f.logger),
		Relationships: NewRelationshipRepository(f.db, f.logger),
	}
}

// GetTransactionManager returns a transaction manager for the shared pool
func (f *RepositoryFactory) GetTransactionManager() repositories.TransactionManager {
	return NewTransactionManager(f.db, f.logger)
}

// GetDB returns the underlying database connection
func (f *RepositoryFactory) GetDB() *DB {
	return f.db
}

// Close closes the database connection
func (f *RepositoryFactory) Close() error {
	return f.db.Close()
}
