package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/stonebridge/family-office-portal/access"
	"github.com/stonebridge/family-office-portal/config"
	"github.com/stonebridge/family-office-portal/handlers"
	"github.com/stonebridge/family-office-portal/middleware"
	"github.com/stonebridge/family-office-portal/repositories"
	"github.com/stonebridge/family-office-portal/repositories/postgres"
	"github.com/stonebridge/family-office-portal/services"
	"github.com/stonebridge/family-office-portal/tokens"
)

// Dependencies holds all application dependencies. This is the central
// wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	DB     *postgres.DB
	Logger *zap.Logger

	// Repository Factory
	RepoFactory *postgres.RepositoryFactory

	// Repositories
	Users         repositories.UserRepository
	Offices       repositories.OfficeRepository
	Families      repositories.FamilyRepository
	Documents     repositories.DocumentRepository
	Meetings      repositories.MeetingRepository
	Messages      repositories.MessageRepository
	Relationships repositories.RelationshipRepository
	TxManager     repositories.TransactionManager

	// Auth and access control
	TokenIssuer    *tokens.Issuer
	TokenVerifier  *tokens.Verifier
	AccessEngine   *access.Engine
	AuthService    *services.AuthService
	AuthMiddleware *middleware.AuthMiddleware

	// Handlers
	AuthHandler     *handlers.AuthHandler
	OfficeHandler   *handlers.OfficeHandler
	FamilyHandler   *handlers.FamilyHandler
	DocumentHandler *handlers.DocumentHandler
	MeetingHandler  *handlers.MeetingHandler
	MessageHandler  *handlers.MessageHandler
	HealthHandler   *handlers.HealthHandler
}

// NewDependencies creates and wires up all application dependencies
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initDatabase(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	deps.initRepositories()
	deps.initAuth(cfg)
	deps.initHandlers()

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initDatabase initializes the PostgreSQL database connection and factory
func (d *Dependencies) initDatabase(ctx context.Context, cfg *config.Config) error {
	factory, err := postgres.NewRepositoryFactory(cfg, d.Logger)
	if err != nil {
		return fmt.Errorf("failed to create repository factory: %w", err)
	}

	d.RepoFactory = factory
	d.DB = factory.GetDB()

	if err := d.DB.InitSchema(ctx); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	return nil
}

// initRepositories initializes all repository instances
func (d *Dependencies) initRepositories() {
	repos := d.RepoFactory.NewRepositories()

	d.Users = repos.Users
	d.Offices = repos.Offices
	d.Families = repos.Families
	d.Documents = repos.Documents
	d.Meetings = repos.Meetings
	d.Messages = repos.Messages
	d.Relationships = repos.Relationships
	d.TxManager = d.RepoFactory.GetTransactionManager()

	d.Logger.Info("repositories initialized")
}

// initAuth wires the token issuer/verifier, the access engine, the auth
// service and the auth middleware
func (d *Dependencies) initAuth(cfg *config.Config) {
	d.TokenIssuer = tokens.NewIssuer(cfg.Auth)
	d.TokenVerifier = tokens.NewVerifier(cfg.Auth)
	d.AccessEngine = access.NewEngine(d.Relationships, d.Logger)
	d.AuthService = services.NewAuthService(d.Users, d.Offices, d.Families,
		d.TxManager, d.TokenIssuer, d.Logger)
	d.AuthMiddleware = middleware.NewAuthMiddleware(d.TokenVerifier, d.Users, d.Logger)

	d.Logger.Info("auth components initialized")
}

// initHandlers initializes all HTTP handlers
func (d *Dependencies) initHandlers() {
	d.AuthHandler = handlers.NewAuthHandler(d.AuthService, d.Logger)
	d.OfficeHandler = handlers.NewOfficeHandler(d.Offices, d.Logger)
	d.FamilyHandler = handlers.NewFamilyHandler(d.Families, d.AccessEngine, d.Logger)
	d.DocumentHandler = handlers.NewDocumentHandler(d.Documents, d.AccessEngine, d.Logger)
	d.MeetingHandler = handlers.NewMeetingHandler(d.Meetings, d.AccessEngine, d.Logger)
	d.MessageHandler = handlers.NewMessageHandler(d.Messages, d.AccessEngine, d.Logger)
	d.HealthHandler = handlers.NewHealthHandler(d.DB, d.Logger)
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	if d.RepoFactory != nil {
		if err := d.RepoFactory.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		} else {
			d.Logger.Info("database connection closed")
		}
	}

	if d.Logger != nil {
		_ = d.Logger.Sync()
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}

	return nil
}
