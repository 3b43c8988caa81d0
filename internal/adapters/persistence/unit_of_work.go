package persistence

import (
	"context"
	"fmt"
	"hash/fnv"
	"time"

	"gorm.io/gorm"

	"github.com/kaitori/dispatch-go/internal/application/common"
)

// GormUnitOfWork binds every repository to one transaction per Execute
// call
type GormUnitOfWork struct {
	db *gorm.DB
}

func NewGormUnitOfWork(db *gorm.DB) *GormUnitOfWork {
	return &GormUnitOfWork{db: db}
}

// NewRepositories wires the repository set onto one database handle
func NewRepositories(db *gorm.DB) *common.Repositories {
	return &common.Repositories{
		Stores:   NewGormStoreRepository(db),
		Products: NewGormProductRepository(db),
		Orders:   NewGormOrderRepository(db),
		Lists:    NewGormPurchaseListRepository(db),
		Routes:   NewGormRouteRepository(db),
		Staff:    NewGormStaffRepository(db),
		Policies: NewGormPolicyRepository(db),
		Matrix:   NewGormDistanceMatrixRepository(db),
		Failures: NewGormFailureRepository(db),
	}
}

// Execute runs fn inside one transaction; any returned error rolls the
// whole unit back
func (u *GormUnitOfWork) Execute(ctx context.Context, fn func(ctx context.Context, repos *common.Repositories) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, NewRepositories(tx))
	})
}

// ExecuteForDate additionally serializes transactions planning the same
// date. Postgres takes a transaction-scoped advisory lock on the date;
// SQLite is single-writer and relies on the (staff_id, purchase_date)
// unique index as the backstop.
func (u *GormUnitOfWork) ExecuteForDate(ctx context.Context, date time.Time, fn func(ctx context.Context, repos *common.Repositories) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if tx.Dialector.Name() == "postgres" {
			if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", dateLockKey(date)).Error; err != nil {
				return fmt.Errorf("failed to take plan lock: %w", err)
			}
		}
		return fn(ctx, NewRepositories(tx))
	})
}

func dateLockKey(date time.Time) int64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "plan:%s", date.Format("2006-01-02"))
	return int64(h.Sum64())
}
