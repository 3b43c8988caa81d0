package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	appplanning "github.com/kaitori/dispatch-go/internal/application/planning"
)

func parseDateFlag(value string) (time.Time, error) {
	if value == "" {
		return time.Now().UTC(), nil
	}
	date, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", value)
	}
	return date, nil
}

// NewPlanCommand creates the plan command
func NewPlanCommand() *cobra.Command {
	var dateFlag string
	var dispatchFlag bool

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Run the full daily pipeline: assignment, routing and optionally dispatch",
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := parseDateFlag(dateFlag)
			if err != nil {
				return err
			}

			a, err := newApp(configPath)
			if err != nil {
				return err
			}
			defer a.close()

			result, err := a.mediator.Send(context.Background(),
				&appplanning.PlanDayCommand{Date: date, AutoDispatch: dispatchFlag})
			if err != nil {
				return err
			}
			resp := result.(*appplanning.PlanDayResponse)

			fmt.Println(resp.Message)
			for _, buyer := range resp.Buyers {
				fmt.Printf("  %s (staff %d): %d tasks, %d stores\n",
					buyer.Name, buyer.StaffID, buyer.TotalTasks, buyer.TotalStores)
			}
			for _, route := range resp.Routes {
				fmt.Printf("  route %d: %d stops, %.2f km, %d min\n",
					route.RouteID, route.Stops, route.TotalDistanceKm, route.EstimatedTimeMinutes)
			}
			if len(resp.SkippedItems) > 0 {
				fmt.Printf("  skipped items: %v\n", resp.SkippedItems)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dateFlag, "date", "", "Business date YYYY-MM-DD (default: today)")
	cmd.Flags().BoolVar(&dispatchFlag, "dispatch", false, "Dispatch the built routes immediately")
	return cmd
}
