package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/kaitori/dispatch-go/internal/domain/shared"
	"github.com/kaitori/dispatch-go/internal/domain/staff"
)

// GormStaffRepository implements StaffRepository using GORM
type GormStaffRepository struct {
	db *gorm.DB
}

func NewGormStaffRepository(db *gorm.DB) *GormStaffRepository {
	return &GormStaffRepository{db: db}
}

// FindByID retrieves a staff member by id
func (r *GormStaffRepository) FindByID(ctx context.Context, staffID int) (*staff.Staff, error) {
	var model StaffModel
	result := r.db.WithContext(ctx).First(&model, "staff_id = ?", staffID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("staff", staffID)
		}
		return nil, fmt.Errorf("failed to find staff: %w", result.Error)
	}
	return r.modelToStaff(&model), nil
}

// ListAssignableBuyers retrieves active buyers not off duty, in id order
// so assignment runs are deterministic
func (r *GormStaffRepository) ListAssignableBuyers(ctx context.Context) ([]*staff.Staff, error) {
	var models []StaffModel
	result := r.db.WithContext(ctx).
		Where("is_active = ? AND role = ? AND status <> ?",
			true, string(staff.RoleBuyer), string(staff.StatusOffDuty)).
		Order("staff_id").
		Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list buyers: %w", result.Error)
	}

	buyers := make([]*staff.Staff, 0, len(models))
	for i := range models {
		buyers = append(buyers, r.modelToStaff(&models[i]))
	}
	return buyers, nil
}

// Save persists a staff member (insert or update)
func (r *GormStaffRepository) Save(ctx context.Context, member *staff.Staff) error {
	model := r.staffToModel(member)
	result := r.db.WithContext(ctx).Save(model)
	if result.Error != nil {
		return fmt.Errorf("failed to save staff: %w", result.Error)
	}
	member.StaffID = model.StaffID
	return nil
}

// UpdateStatus updates one staff member's status column
func (r *GormStaffRepository) UpdateStatus(ctx context.Context, staffID int, status staff.Status) error {
	result := r.db.WithContext(ctx).Model(&StaffModel{}).
		Where("staff_id = ?", staffID).
		Update("status", string(status))
	if result.Error != nil {
		return fmt.Errorf("failed to update staff status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("staff", staffID)
	}
	return nil
}

func (r *GormStaffRepository) modelToStaff(model *StaffModel) *staff.Staff {
	return &staff.Staff{
		StaffID:          model.StaffID,
		Name:             model.Name,
		Role:             staff.Role(model.Role),
		Status:           staff.Status(model.Status),
		MaxDailyCapacity: model.MaxDailyCapacity,
		StartLocation:    decimalsToCoord(model.StartLatitude, model.StartLongitude),
		IsActive:         model.IsActive,
	}
}

func (r *GormStaffRepository) staffToModel(member *staff.Staff) *StaffModel {
	lat, lng := coordToDecimals(member.StartLocation)
	return &StaffModel{
		StaffID:          member.StaffID,
		Name:             member.Name,
		Role:             string(member.Role),
		Status:           string(member.Status),
		MaxDailyCapacity: member.MaxDailyCapacity,
		StartLatitude:    lat,
		StartLongitude:   lng,
		IsActive:         member.IsActive,
	}
}
