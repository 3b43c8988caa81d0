package staff

import (
	"fmt"

	"github.com/kaitori/dispatch-go/internal/domain/shared"
)

// Role determines what a staff member may do.
// Only buyers participate in daily assignment.
type Role string

const (
	RoleBuyer      Role = "buyer"
	RoleSupervisor Role = "supervisor"
	RoleAdmin      Role = "admin"
)

// Status is the staff member's operational state
type Status string

const (
	StatusActive  Status = "active"
	StatusEnRoute Status = "en_route"
	StatusIdle    Status = "idle"
	StatusOffDuty Status = "off_duty"
)

// Staff is a field buyer, supervisor, or administrator.
// StartLocation defaults to the office when absent.
type Staff struct {
	StaffID          int
	Name             string
	Role             Role
	Status           Status
	MaxDailyCapacity int
	StartLocation    *shared.Coordinate
	IsActive         bool
}

// NewStaff creates an active staff member
func NewStaff(name string, role Role, capacity int) (*Staff, error) {
	if name == "" {
		return nil, shared.NewValidationError("name", "cannot be empty")
	}
	if capacity < 1 {
		return nil, shared.NewValidationError("max_daily_capacity", fmt.Sprintf("must be >= 1, got %d", capacity))
	}
	return &Staff{
		Name:             name,
		Role:             role,
		Status:           StatusActive,
		MaxDailyCapacity: capacity,
		IsActive:         true,
	}, nil
}

// IsAssignableBuyer reports whether this member can receive daily work
func (s *Staff) IsAssignableBuyer() bool {
	return s.IsActive && s.Role == RoleBuyer && s.Status != StatusOffDuty
}

// StartPoint returns the buyer's start coordinate, falling back to the office
func (s *Staff) StartPoint(office shared.Coordinate) shared.Coordinate {
	if s.StartLocation != nil {
		return *s.StartLocation
	}
	return office
}

func (s *Staff) String() string {
	return fmt.Sprintf("Staff(%d %s %s)", s.StaffID, s.Name, s.Role)
}
