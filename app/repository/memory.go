package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ManuelReschke/PointsBridge/app/models"
)

// MemoryRepository keeps all state in process memory. It is meant for tests
// and local development, never for production persistence.
type MemoryRepository struct {
	mu            sync.RWMutex
	authAttempts  map[string]models.AuthAttempt
	orgConfigs    map[string]models.OrgConfig
	organizations map[string]models.Organization
	transactions  map[string]models.Transaction
	now           func() time.Time
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		authAttempts:  make(map[string]models.AuthAttempt),
		orgConfigs:    make(map[string]models.OrgConfig),
		organizations: make(map[string]models.Organization),
		transactions:  make(map[string]models.Transaction),
		now:           time.Now,
	}
}

var _ Repository = (*MemoryRepository)(nil)

func (r *MemoryRepository) CreateAuthAttempt(_ context.Context, state, codeVerifier string) (*models.AuthAttempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.authAttempts[state]; ok {
		return nil, fmt.Errorf("create auth attempt: %w", ErrConflict)
	}
	attempt := models.AuthAttempt{
		State:        state,
		CodeVerifier: codeVerifier,
		Created:      r.now(),
	}
	r.authAttempts[state] = attempt
	return &attempt, nil
}

func (r *MemoryRepository) GetAuthAttemptByState(_ context.Context, state string) (*models.AuthAttempt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	attempt, ok := r.authAttempts[state]
	if !ok {
		return nil, nil
	}
	return &attempt, nil
}

func (r *MemoryRepository) GetConfig(_ context.Context, orgID string) (*models.OrgConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	config, ok := r.orgConfigs[orgID]
	if !ok {
		return nil, nil
	}
	return &config, nil
}

func (r *MemoryRepository) SetConfig(_ context.Context, orgID string, config models.OrgConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	config.OrgID = orgID
	r.orgConfigs[orgID] = config
	return nil
}

func (r *MemoryRepository) ClearConfig(_ context.Context, orgID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.orgConfigs, orgID)
	return nil
}

func (r *MemoryRepository) LinkBrandToOrganization(_ context.Context, orgID string, brand models.Brand) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.organizations[orgID]; ok {
		return false, fmt.Errorf("link brand: %w", ErrConflict)
	}
	r.organizations[orgID] = models.Organization{
		OrgID:     orgID,
		BrandID:   brand.ID,
		BrandName: brand.Name,
		BrandURL:  brand.WebsiteURL,
	}
	return true, nil
}

func (r *MemoryRepository) GetOrganization(_ context.Context, orgID string) (*models.LinkedOrganization, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	org, ok := r.organizations[orgID]
	if !ok {
		return nil, nil
	}
	return org.Linked(), nil
}

func (r *MemoryRepository) CreateTransaction(_ context.Context, tx models.Transaction) (*models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.transactions[tx.TransactionID]; ok {
		return nil, fmt.Errorf("create transaction: %w", ErrConflict)
	}
	r.transactions[tx.TransactionID] = tx
	return &tx, nil
}

// GetTransactions returns the organization's ledger ordered by creation time.
func (r *MemoryRepository) GetTransactions(_ context.Context, orgID string) ([]models.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	txs := make([]models.Transaction, 0)
	for _, tx := range r.transactions {
		if tx.LokeOrganizationID == orgID {
			txs = append(txs, tx)
		}
	}
	sort.Slice(txs, func(i, j int) bool {
		if txs[i].CreatedAt.Equal(txs[j].CreatedAt) {
			return txs[i].TransactionID < txs[j].TransactionID
		}
		return txs[i].CreatedAt.Before(txs[j].CreatedAt)
	})
	return txs, nil
}

func (r *MemoryRepository) GetTransactionByID(_ context.Context, transactionID string) (*models.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tx, ok := r.transactions[transactionID]
	if !ok {
		return nil, nil
	}
	return &tx, nil
}

// Destroy is a no-op for the in-memory repository.
func (r *MemoryRepository) Destroy() error {
	return nil
}
