package repository

import (
	"sync"

	"gorm.io/gorm"
)

// gormRepository composes the GORM-backed repositories into one Repository.
type gormRepository struct {
	AuthAttemptRepository
	OrgConfigRepository
	OrganizationRepository
	TransactionRepository

	db        *gorm.DB
	closeOnce sync.Once
	closeErr  error
}

// NewGormRepository creates the durable repository on top of a GORM handle.
// Destroy closes the underlying connection pool.
func NewGormRepository(db *gorm.DB) Repository {
	return &gormRepository{
		AuthAttemptRepository:  NewAuthAttemptRepository(db),
		OrgConfigRepository:    NewOrgConfigRepository(db),
		OrganizationRepository: NewOrganizationRepository(db),
		TransactionRepository:  NewTransactionRepository(db),
		db:                     db,
	}
}

func (r *gormRepository) Destroy() error {
	r.closeOnce.Do(func() {
		sqlDB, err := r.db.DB()
		if err != nil {
			r.closeErr = err
			return
		}
		r.closeErr = sqlDB.Close()
	})
	return r.closeErr
}
