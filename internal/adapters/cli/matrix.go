package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	approuting "github.com/kaitori/dispatch-go/internal/application/routing"
)

// NewMatrixCommand creates the matrix command group
func NewMatrixCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "matrix",
		Short: "Store distance matrix operations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "recompute",
		Short: "Recompute all-pairs distances between active stores",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(configPath)
			if err != nil {
				return err
			}
			defer a.close()

			result, err := a.mediator.Send(context.Background(), &approuting.RecomputeMatrixCommand{})
			if err != nil {
				return err
			}
			resp := result.(*approuting.RecomputeMatrixResponse)

			fmt.Printf("Matrix recomputed: %d stores, %d geocoded, %d edges\n",
				resp.Stores, resp.Geocoded, resp.Edges)
			return nil
		},
	})

	return cmd
}
