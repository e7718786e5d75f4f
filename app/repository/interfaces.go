package repository

import (
	"context"

	"github.com/ManuelReschke/PointsBridge/app/models"
)

// AuthAttemptRepository stores interactive login attempts keyed by state.
type AuthAttemptRepository interface {
	CreateAuthAttempt(ctx context.Context, state, codeVerifier string) (*models.AuthAttempt, error)
	GetAuthAttemptByState(ctx context.Context, state string) (*models.AuthAttempt, error)
}

// OrgConfigRepository stores the per-organization points ratio.
type OrgConfigRepository interface {
	GetConfig(ctx context.Context, orgID string) (*models.OrgConfig, error)
	SetConfig(ctx context.Context, orgID string, config models.OrgConfig) error
	ClearConfig(ctx context.Context, orgID string) error
}

// OrganizationRepository stores the organization to brand link.
type OrganizationRepository interface {
	LinkBrandToOrganization(ctx context.Context, orgID string, brand models.Brand) (bool, error)
	GetOrganization(ctx context.Context, orgID string) (*models.LinkedOrganization, error)
}

// TransactionRepository stores the transaction ledger.
type TransactionRepository interface {
	CreateTransaction(ctx context.Context, tx models.Transaction) (*models.Transaction, error)
	GetTransactions(ctx context.Context, orgID string) ([]models.Transaction, error)
	GetTransactionByID(ctx context.Context, transactionID string) (*models.Transaction, error)
}

// Repository is the full persistence surface. Lookups of a single entity
// return (nil, nil) when it does not exist; primary-key violations return
// ErrConflict.
type Repository interface {
	AuthAttemptRepository
	OrgConfigRepository
	OrganizationRepository
	TransactionRepository

	// Destroy releases the underlying connections. Safe to call more than once.
	Destroy() error
}
