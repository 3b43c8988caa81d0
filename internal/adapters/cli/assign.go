package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	appplanning "github.com/kaitori/dispatch-go/internal/application/planning"
)

// NewAssignCommand creates the assign command
func NewAssignCommand() *cobra.Command {
	var dateFlag string
	var staffFlag int

	cmd := &cobra.Command{
		Use:   "assign",
		Short: "Assign the date's pending order items to buyers",
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

			if staffFlag > 0 {
				result, err := a.mediator.Send(context.Background(),
					&appplanning.AssignToStaffCommand{StaffID: staffFlag, Date: date})
				if err != nil {
					return err
				}
				resp := result.(*appplanning.AssignToStaffResponse)
				fmt.Println(resp.Message)
				return nil
			}

			result, err := a.mediator.Send(context.Background(),
				&appplanning.AssignDayCommand{Date: date})
			if err != nil {
				return err
			}
			resp := result.(*appplanning.AssignDayResponse)

			fmt.Println(resp.Message)
			for _, buyer := range resp.Buyers {
				fmt.Printf("  %s (staff %d): +%d tasks, total %d across %d stores\n",
					buyer.Name, buyer.StaffID, buyer.AddedTasks, buyer.TotalTasks, buyer.TotalStores)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dateFlag, "date", "", "Business date YYYY-MM-DD (default: today)")
	cmd.Flags().IntVar(&staffFlag, "staff", 0, "Assign to this buyer only")
	return cmd
}
