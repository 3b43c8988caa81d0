package persistence

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/kaitori/dispatch-go/internal/domain/execution"
	"github.com/kaitori/dispatch-go/internal/domain/shared"
)

// GormFailureRepository implements FailureRepository using GORM
type GormFailureRepository struct {
	db *gorm.DB
}

func NewGormFailureRepository(db *gorm.DB) *GormFailureRepository {
	return &GormFailureRepository{db: db}
}

// Record persists one purchase failure
func (r *GormFailureRepository) Record(ctx context.Context, failure *execution.PurchaseFailure) error {
	model := &PurchaseFailureModel{
		ListItemID:         failure.ListItemID,
		StaffID:            failure.StaffID,
		FailureType:        string(failure.FailureType),
		AlternativeStoreID: failure.AlternativeStoreID,
		Note:               failure.Note,
		RecordedAt:         failure.RecordedAt,
	}
	result := r.db.WithContext(ctx).Create(model)
	if result.Error != nil {
		return fmt.Errorf("failed to record purchase failure: %w", result.Error)
	}
	failure.FailureID = model.FailureID
	return nil
}

// ListByStaffAndDate retrieves a buyer's failures recorded on the civil
// date (UTC day window)
func (r *GormFailureRepository) ListByStaffAndDate(ctx context.Context, staffID int, date time.Time) ([]*execution.PurchaseFailure, error) {
	day := shared.DateOf(date)
	var models []PurchaseFailureModel
	result := r.db.WithContext(ctx).
		Where("staff_id = ? AND recorded_at >= ? AND recorded_at < ?",
			staffID, day, day.AddDate(0, 0, 1)).
		Order("failure_id").
		Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list purchase failures: %w", result.Error)
	}

	failures := make([]*execution.PurchaseFailure, 0, len(models))
	for i := range models {
		m := models[i]
		failures = append(failures, &execution.PurchaseFailure{
			FailureID:          m.FailureID,
			ListItemID:         m.ListItemID,
			StaffID:            m.StaffID,
			FailureType:        execution.FailureType(m.FailureType),
			AlternativeStoreID: m.AlternativeStoreID,
			Note:               m.Note,
			RecordedAt:         m.RecordedAt.UTC(),
		})
	}
	return failures, nil
}
