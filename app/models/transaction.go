package models

import "time"

// Transaction is one ledger row, written once per processed webhook event.
// TransactionID is the provider's id and doubles as the idempotency key.
type Transaction struct {
	TransactionID      string    `gorm:"column:transaction_id;type:varchar(191);primaryKey" json:"transactionId"`
	LokeCustomerID     string    `gorm:"column:loke_customer_id;type:varchar(191);not null" json:"lokeCustomerId"`
	LocationID         string    `gorm:"column:location_id;type:varchar(191);not null" json:"locationId"`
	CardID             string    `gorm:"column:card_id;type:varchar(191);not null" json:"cardId"`
	BrandID            string    `gorm:"column:brand_id;type:varchar(191);not null" json:"brandId"`
	ProgramID          string    `gorm:"column:program_id;type:varchar(191);not null" json:"programId"`
	LokeOrganizationID string    `gorm:"column:loke_organization_id;type:varchar(191);not null;index" json:"lokeOrganizationId"`
	PointsAwarded      float64   `gorm:"column:points_awarded;not null" json:"pointsAwarded"`
	Amount             float64   `gorm:"column:amount;not null" json:"amount"`
	Currency           string    `gorm:"column:currency;type:varchar(10);not null" json:"currency"`
	CreatedAt          time.Time `gorm:"column:created_at;not null;autoCreateTime:false" json:"createdAt"`
}

func (Transaction) TableName() string { return "transactions" }
