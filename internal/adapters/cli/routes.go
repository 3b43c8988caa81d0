package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	approuting "github.com/kaitori/dispatch-go/internal/application/routing"
)

// NewRoutesCommand creates the routes command
func NewRoutesCommand() *cobra.Command {
	var dateFlag string

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Build or rebuild buyer routes for a date",
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
				&approuting.GenerateRoutesCommand{Date: date})
			if err != nil {
				return err
			}
			resp := result.(*approuting.GenerateRoutesResponse)

			fmt.Println(resp.Message)
			for _, route := range resp.Routes {
				fmt.Printf("  route %d (staff %d): %d stops, %.2f km, %d min\n",
					route.RouteID, route.StaffID, route.Stops,
					route.TotalDistanceKm, route.EstimatedTimeMinutes)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dateFlag, "date", "", "Business date YYYY-MM-DD (default: today)")
	return cmd
}
