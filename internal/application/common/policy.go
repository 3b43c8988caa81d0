package common

import (
	"context"
	"fmt"

	"github.com/kaitori/dispatch-go/internal/domain/policy"
)

// LoadPolicy reads the business-rule snapshot and attaches the holiday
// calendar. Planning transactions call this once up front and never
// consult the rules again mid-plan.
func LoadPolicy(ctx context.Context, repos *Repositories) (*policy.Snapshot, error) {
	snapshot, err := repos.Policies.LoadSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load business rules: %w", err)
	}

	holidays, err := repos.Policies.ListHolidays(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load holidays: %w", err)
	}

	return snapshot.WithHolidays(holidays), nil
}
