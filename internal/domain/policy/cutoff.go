package policy

import (
	"fmt"
	"time"

	"github.com/kaitori/dispatch-go/internal/domain/shared"
)

// maxBusinessDaySearch bounds the candidate-date walk. Exceeding it means
// the weekend/holiday policy can never resolve and is misconfigured.
const maxBusinessDaySearch = 30

// CutoffScheduler maps an order's arrival timestamp to the target business
// day. Arrival timestamps are UTC; the cutoff comparison happens in JST.
type CutoffScheduler struct {
	snapshot *Snapshot
}

func NewCutoffScheduler(snapshot *Snapshot) *CutoffScheduler {
	return &CutoffScheduler{snapshot: snapshot}
}

// TargetDate resolves the business day an order arriving at the given
// instant should be purchased on. Strictly before the cutoff means same
// day; at or after means next day. Weekends and holidays are then skipped
// per policy.
func (c *CutoffScheduler) TargetDate(arrival time.Time) (time.Time, error) {
	local := arrival.In(shared.JST)
	minuteOfDay := local.Hour()*60 + local.Minute()

	candidate := shared.DateOf(local)
	if minuteOfDay >= c.snapshot.CutoffMinute {
		candidate = candidate.AddDate(0, 0, 1)
	}

	for i := 0; i < maxBusinessDaySearch; i++ {
		if !c.snapshot.WeekendProcessing && shared.IsWeekend(candidate) {
			candidate = candidate.AddDate(0, 0, 1)
			continue
		}
		if holiday, ok := c.snapshot.HolidayOn(candidate); ok {
			if c.snapshot.HolidayOverride || holiday.IsWorking {
				return candidate, nil
			}
			candidate = candidate.AddDate(0, 0, 1)
			continue
		}
		return candidate, nil
	}

	return time.Time{}, shared.NewPolicyError(fmt.Sprintf(
		"no business day found within %d days of %s; check weekend/holiday policy",
		maxBusinessDaySearch, arrival.Format("2006-01-02")))
}
