package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/PointsBridge/app/repository"
)

// TransactionController exposes the points ledger.
type TransactionController struct {
	transactionRepo repository.TransactionRepository
}

func NewTransactionController(transactionRepo repository.TransactionRepository) *TransactionController {
	return &TransactionController{transactionRepo: transactionRepo}
}

// HandleListTransactions returns the organization's ledger, oldest first.
func (tc *TransactionController) HandleListTransactions(c *fiber.Ctx) error {
	txs, err := tc.transactionRepo.GetTransactions(c.UserContext(), c.Params("orgId"))
	if err != nil {
		return internalError(c, "load transactions", err)
	}
	return c.JSON(txs)
}
