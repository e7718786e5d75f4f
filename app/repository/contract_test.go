package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/PointsBridge/app/models"
)

// runRepositoryContract checks the behaviour every Repository must share.
func runRepositoryContract(t *testing.T, newRepo func(t *testing.T) Repository) {
	t.Helper()
	ctx := context.Background()

	t.Run("AuthAttempt/CreateMultiple", func(t *testing.T) {
		repo := newRepo(t)
		a1, err := repo.CreateAuthAttempt(ctx, "state-"+uuid.NewString(), "verifier1")
		require.NoError(t, err)
		a2, err := repo.CreateAuthAttempt(ctx, "state-"+uuid.NewString(), "verifier2")
		require.NoError(t, err)

		assert.NotEqual(t, a1.State, a2.State)
		assert.False(t, a1.Created.IsZero())
	})

	t.Run("AuthAttempt/LookupIsolation", func(t *testing.T) {
		repo := newRepo(t)
		s1, s2 := uuid.NewString(), uuid.NewString()
		_, err := repo.CreateAuthAttempt(ctx, s1, "verifier1")
		require.NoError(t, err)
		_, err = repo.CreateAuthAttempt(ctx, s2, "verifier2")
		require.NoError(t, err)

		got1, err := repo.GetAuthAttemptByState(ctx, s1)
		require.NoError(t, err)
		got2, err := repo.GetAuthAttemptByState(ctx, s2)
		require.NoError(t, err)

		require.NotNil(t, got1)
		require.NotNil(t, got2)
		assert.Equal(t, s1, got1.State)
		assert.Equal(t, "verifier1", got1.CodeVerifier)
		assert.Equal(t, s2, got2.State)
		assert.Equal(t, "verifier2", got2.CodeVerifier)
	})

	t.Run("AuthAttempt/DuplicateState", func(t *testing.T) {
		repo := newRepo(t)
		state := uuid.NewString()
		_, err := repo.CreateAuthAttempt(ctx, state, "verifier1")
		require.NoError(t, err)

		_, err = repo.CreateAuthAttempt(ctx, state, "verifier2")
		assert.True(t, errors.Is(err, ErrConflict), "got %v", err)
	})

	t.Run("AuthAttempt/Missing", func(t *testing.T) {
		repo := newRepo(t)
		got, err := repo.GetAuthAttemptByState(ctx, uuid.NewString())
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("OrgConfig/Create", func(t *testing.T) {
		repo := newRepo(t)
		orgID := uuid.NewString()
		require.NoError(t, repo.SetConfig(ctx, orgID, models.OrgConfig{PointsForDollarSpent: 10}))

		config, err := repo.GetConfig(ctx, orgID)
		require.NoError(t, err)
		require.NotNil(t, config)
		assert.Equal(t, orgID, config.OrgID)
		assert.Equal(t, 10.0, config.PointsForDollarSpent)
	})

	t.Run("OrgConfig/Overwrite", func(t *testing.T) {
		repo := newRepo(t)
		orgID := uuid.NewString()
		require.NoError(t, repo.SetConfig(ctx, orgID, models.OrgConfig{PointsForDollarSpent: 10}))
		require.NoError(t, repo.SetConfig(ctx, orgID, models.OrgConfig{PointsForDollarSpent: 10}))
		require.NoError(t, repo.SetConfig(ctx, orgID, models.OrgConfig{OrgID: "ignored", PointsForDollarSpent: 3}))

		config, err := repo.GetConfig(ctx, orgID)
		require.NoError(t, err)
		require.NotNil(t, config)
		assert.Equal(t, orgID, config.OrgID)
		assert.Equal(t, 3.0, config.PointsForDollarSpent)
	})

	t.Run("OrgConfig/Clear", func(t *testing.T) {
		repo := newRepo(t)
		orgID := uuid.NewString()
		require.NoError(t, repo.SetConfig(ctx, orgID, models.OrgConfig{PointsForDollarSpent: 10}))
		require.NoError(t, repo.ClearConfig(ctx, orgID))

		config, err := repo.GetConfig(ctx, orgID)
		require.NoError(t, err)
		assert.Nil(t, config)
	})

	t.Run("Organization/LinkOnce", func(t *testing.T) {
		repo := newRepo(t)
		orgID := uuid.NewString()
		url := "https://cafe.example"
		ok, err := repo.LinkBrandToOrganization(ctx, orgID, models.Brand{ID: "brand_1", Name: "Cafe", WebsiteURL: &url})
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = repo.LinkBrandToOrganization(ctx, orgID, models.Brand{ID: "brand_2", Name: "Other"})
		assert.False(t, ok)
		assert.True(t, errors.Is(err, ErrConflict), "got %v", err)

		org, err := repo.GetOrganization(ctx, orgID)
		require.NoError(t, err)
		require.NotNil(t, org)
		assert.Equal(t, orgID, org.OrgID)
		assert.Equal(t, "brand_1", org.Brand.ID)
		assert.Equal(t, "Cafe", org.Brand.Name)
		require.NotNil(t, org.Brand.WebsiteURL)
		assert.Equal(t, url, *org.Brand.WebsiteURL)
	})

	t.Run("Organization/Missing", func(t *testing.T) {
		repo := newRepo(t)
		org, err := repo.GetOrganization(ctx, uuid.NewString())
		require.NoError(t, err)
		assert.Nil(t, org)
	})

	t.Run("Transaction/IdempotentLedger", func(t *testing.T) {
		repo := newRepo(t)
		orgID := uuid.NewString()
		tx := newTestTransaction(orgID, uuid.NewString(), 100)

		_, err := repo.CreateTransaction(ctx, tx)
		require.NoError(t, err)

		dup := tx
		dup.PointsAwarded = 999
		_, err = repo.CreateTransaction(ctx, dup)
		assert.True(t, errors.Is(err, ErrConflict), "got %v", err)

		txs, err := repo.GetTransactions(ctx, orgID)
		require.NoError(t, err)
		require.Len(t, txs, 1)
		assert.Equal(t, 100.0, txs[0].PointsAwarded)
	})

	t.Run("Transaction/ByIDAndOrg", func(t *testing.T) {
		repo := newRepo(t)
		orgA, orgB := uuid.NewString(), uuid.NewString()
		txA := newTestTransaction(orgA, uuid.NewString(), 10)
		txB := newTestTransaction(orgB, uuid.NewString(), 20)
		_, err := repo.CreateTransaction(ctx, txA)
		require.NoError(t, err)
		_, err = repo.CreateTransaction(ctx, txB)
		require.NoError(t, err)

		got, err := repo.GetTransactionByID(ctx, txB.TransactionID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, orgB, got.LokeOrganizationID)
		assert.Equal(t, "GBP", got.Currency)
		assert.True(t, txB.CreatedAt.Equal(got.CreatedAt))

		txs, err := repo.GetTransactions(ctx, orgA)
		require.NoError(t, err)
		require.Len(t, txs, 1)
		assert.Equal(t, txA.TransactionID, txs[0].TransactionID)

		missing, err := repo.GetTransactionByID(ctx, uuid.NewString())
		require.NoError(t, err)
		assert.Nil(t, missing)

		empty, err := repo.GetTransactions(ctx, uuid.NewString())
		require.NoError(t, err)
		assert.Empty(t, empty)
	})
}

func newTestTransaction(orgID, id string, points float64) models.Transaction {
	return models.Transaction{
		TransactionID:      id,
		LokeCustomerID:     "cust_1",
		LocationID:         "loc_1",
		CardID:             "card_1",
		BrandID:            "brand_1",
		ProgramID:          "prog_1",
		LokeOrganizationID: orgID,
		PointsAwarded:      points,
		Amount:             points,
		Currency:           "GBP",
		CreatedAt:          time.Date(2022, 10, 4, 8, 50, 4, 0, time.UTC),
	}
}
