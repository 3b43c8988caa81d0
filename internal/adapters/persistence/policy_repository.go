package persistence

import (
	"context"
	"fmt"
	"strconv"

	"gorm.io/gorm"

	"github.com/kaitori/dispatch-go/internal/domain/policy"
	"github.com/kaitori/dispatch-go/internal/domain/shared"
)

// Business-rule keys. Unknown keys are ignored so operators can stash
// extra settings without breaking the planner.
const (
	ruleCutoffTime           = "cutoff_time"
	ruleWeekendProcessing    = "weekend_processing"
	ruleHolidayOverride      = "holiday_override"
	ruleDefaultStartLat      = "default_start_lat"
	ruleDefaultStartLng      = "default_start_lng"
	ruleMaxOrdersPerStaff    = "max_orders_per_staff"
	ruleAutoAssign           = "auto_assign"
	ruleOptimizationPriority = "optimization_priority"
	ruleMaxRouteTimeHours    = "max_route_time_hours"
	ruleIncludeReturn        = "include_return"
	ruleRouteStartTime       = "route_start_time"
)

// GormPolicyRepository implements PolicyRepository using GORM
type GormPolicyRepository struct {
	db *gorm.DB
}

func NewGormPolicyRepository(db *gorm.DB) *GormPolicyRepository {
	return &GormPolicyRepository{db: db}
}

// LoadSnapshot reads the business_rules table onto the default snapshot.
// Missing keys keep their defaults.
func (r *GormPolicyRepository) LoadSnapshot(ctx context.Context) (*policy.Snapshot, error) {
	var models []BusinessRuleModel
	result := r.db.WithContext(ctx).Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to load business rules: %w", result.Error)
	}

	snapshot := policy.DefaultSnapshot()
	for _, rule := range models {
		if err := applyRule(snapshot, rule.RuleKey, rule.RuleValue); err != nil {
			return nil, fmt.Errorf("invalid business rule %s=%q: %w", rule.RuleKey, rule.RuleValue, err)
		}
	}
	return snapshot, nil
}

func applyRule(s *policy.Snapshot, key, value string) error {
	switch key {
	case ruleCutoffTime:
		minute, err := shared.ParseClockMinute(value)
		if err != nil {
			return err
		}
		s.CutoffMinute = minute
	case ruleRouteStartTime:
		minute, err := shared.ParseClockMinute(value)
		if err != nil {
			return err
		}
		s.RouteStartMinute = minute
	case ruleWeekendProcessing:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		s.WeekendProcessing = b
	case ruleHolidayOverride:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		s.HolidayOverride = b
	case ruleAutoAssign:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		s.AutoAssign = b
	case ruleIncludeReturn:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		s.IncludeReturn = b
	case ruleDefaultStartLat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		s.DefaultStartLocation.Lat = f
	case ruleDefaultStartLng:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		s.DefaultStartLocation.Lng = f
	case ruleMaxOrdersPerStaff:
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		s.MaxOrdersPerStaff = n
	case ruleMaxRouteTimeHours:
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		s.MaxRouteTimeHours = n
	case ruleOptimizationPriority:
		s.OptimizationPriority = policy.OptimizationPriority(value)
	}
	return nil
}

// UpsertRule writes one key-value rule
func (r *GormPolicyRepository) UpsertRule(ctx context.Context, key, value string) error {
	model := &BusinessRuleModel{RuleKey: key, RuleValue: value}
	result := r.db.WithContext(ctx).Save(model)
	if result.Error != nil {
		return fmt.Errorf("failed to upsert rule %s: %w", key, result.Error)
	}
	return nil
}

// ListHolidays retrieves the full holiday calendar
func (r *GormPolicyRepository) ListHolidays(ctx context.Context) ([]policy.Holiday, error) {
	var models []HolidayModel
	result := r.db.WithContext(ctx).Order("date").Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to load holidays: %w", result.Error)
	}

	holidays := make([]policy.Holiday, 0, len(models))
	for _, m := range models {
		holidays = append(holidays, policy.Holiday{
			HolidayID: m.HolidayID,
			Date:      shared.DateOf(m.Date),
			Name:      m.Name,
			IsWorking: m.IsWorking,
		})
	}
	return holidays, nil
}

// SaveHoliday persists one holiday record
func (r *GormPolicyRepository) SaveHoliday(ctx context.Context, holiday policy.Holiday) error {
	model := &HolidayModel{
		HolidayID: holiday.HolidayID,
		Date:      shared.DateOf(holiday.Date),
		Name:      holiday.Name,
		IsWorking: holiday.IsWorking,
	}
	result := r.db.WithContext(ctx).Save(model)
	if result.Error != nil {
		return fmt.Errorf("failed to save holiday: %w", result.Error)
	}
	return nil
}
