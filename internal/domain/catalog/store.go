package catalog

import (
	"fmt"

	"github.com/kaitori/dispatch-go/internal/domain/shared"
)

// Store is a physical shop a buyer can visit.
// Location may be nil for stores whose address has not been geocoded yet;
// such stores still receive allocations but are ordered after all
// geo-located stops when routes are built.
type Store struct {
	StoreID       int
	StoreName     string
	Address       string
	Location      *shared.Coordinate
	District      string
	Category      string
	PriorityLevel int // 1 = highest
	IsActive      bool
	OpeningHours  shared.WeeklyHours
}

// NewStore creates an active store with the default priority
func NewStore(name string) (*Store, error) {
	if name == "" {
		return nil, shared.NewValidationError("store_name", "cannot be empty")
	}
	return &Store{StoreName: name, PriorityLevel: 3, IsActive: true}, nil
}

// HasLocation reports whether the store has been geocoded
func (s *Store) HasLocation() bool {
	return s.Location != nil
}

func (s *Store) String() string {
	return fmt.Sprintf("Store(%d %s)", s.StoreID, s.StoreName)
}
