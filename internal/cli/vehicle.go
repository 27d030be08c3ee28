package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/smart-park/backend/internal/parking"
	"github.com/smart-park/backend/internal/storage/models"
)

// NewVehicleCommand creates the vehicle command group.
func NewVehicleCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vehicle",
		Short: "Manage registered vehicles",
	}

	cmd.AddCommand(newVehicleUpsertCommand(rootOpts))
	cmd.AddCommand(newVehicleDeleteCommand(rootOpts))
	cmd.AddCommand(newVehicleListCommand(rootOpts))

	return cmd
}

func newVehicleUpsertCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		office string
		spots  string
		double bool
	)

	cmd := &cobra.Command{
		Use:   "upsert <plate>",
		Short: "Register or replace a vehicle",
		Long: `Register or replace a vehicle. Spots that do not exist yet are
created free and assigned to the vehicle's office. With --double each
spot stands for a double spot and expands to its two halves.

Example:
  smart-park vehicle upsert ABC123 --office "Oficina 3" --spots A1,B2
  smart-park vehicle upsert XYZ789 --office "Oficina 4" --spots C8 --double`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(a *app) error {
				vehicle, err := a.service.UpsertVehicle(cmd.Context(), parking.VehicleInput{
					Plate:      args[0],
					Office:     office,
					Spots:      parking.ParseSpotList(spots),
					DoubleSpot: double,
				})
				if err != nil {
					return err
				}

				out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
				return out.Print(vehicle, func(w io.Writer) error {
					return writeVehicles(w, []models.Vehicle{*vehicle})
				})
			})
		},
	}

	cmd.Flags().StringVar(&office, "office", "", "office the vehicle belongs to")
	cmd.Flags().StringVar(&spots, "spots", "", "comma separated allowed spot IDs")
	cmd.Flags().BoolVar(&double, "double", false, "treat each spot as a double spot")
	_ = cmd.MarkFlagRequired("office")

	return cmd
}

func newVehicleDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <plate>",
		Short: "Delete a vehicle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(a *app) error {
				plate := models.NormalizePlate(args[0])
				if err := a.service.DeleteVehicle(cmd.Context(), plate); err != nil {
					return err
				}

				out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
				return out.Print(map[string]string{"deleted": plate}, func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "Deleted vehicle %s\n", plate)
					return err
				})
			})
		},
	}
}

func newVehicleListCommand(rootOpts *RootOptions) *cobra.Command {
	var query string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List vehicles sorted by office",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(a *app) error {
				vehicles, err := a.service.ListVehicles(cmd.Context())
				if err != nil {
					return err
				}
				vehicles = parking.FilterVehicles(vehicles, query)

				out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
				return out.Print(vehicles, func(w io.Writer) error { return writeVehicles(w, vehicles) })
			})
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "filter by plate or office")

	return cmd
}
