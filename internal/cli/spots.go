package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/smart-park/backend/internal/parking"
	"github.com/smart-park/backend/internal/storage/models"
)

// NewOccupyCommand creates the occupy command.
func NewOccupyCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		visitor bool
		name    string
	)

	cmd := &cobra.Command{
		Use:   "occupy <spot> <plate>",
		Short: "Assign a spot to a registered vehicle or a visitor",
		Long: `Assign a free spot. Without --visitor the plate must belong to a
registered vehicle. A plate that already holds another spot is moved.

Example:
  smart-park occupy A1 TST-001
  smart-park occupy B4 ABC123 --visitor --name "Ana"`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(a *app) error {
				spotID := models.NormalizeSpotID(args[0])
				if err := a.service.Assign(cmd.Context(), spotID, args[1], visitor, name); err != nil {
					return err
				}
				return printSpot(cmd, rootOpts, a, spotID)
			})
		},
	}

	cmd.Flags().BoolVar(&visitor, "visitor", false, "occupy as a visitor")
	cmd.Flags().StringVar(&name, "name", "", "visitor name")

	return cmd
}

// NewFreeCommand creates the free command.
func NewFreeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "free <spot>",
		Short: "Release a spot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(a *app) error {
				spotID := models.NormalizeSpotID(args[0])
				if err := a.service.FreeSpot(cmd.Context(), spotID); err != nil {
					return err
				}
				return printSpot(cmd, rootOpts, a, spotID)
			})
		},
	}
}

// NewDeleteSpotsCommand creates the delete-spots command.
func NewDeleteSpotsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-spots <spot>[,<spot>...]...",
		Short: "Delete spots and every vehicle authorized for them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := parking.ParseSpotList(strings.Join(args, ","))
			if len(ids) == 0 {
				return fmt.Errorf("no spot IDs given")
			}

			return withApp(cmd, rootOpts, func(a *app) error {
				if err := a.service.DeleteSpots(cmd.Context(), ids); err != nil {
					return err
				}

				out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
				return out.Print(map[string][]string{"deleted": ids}, func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "Deleted spots: %s\n", strings.Join(ids, ", "))
					return err
				})
			})
		},
	}
}

// NewSpotsCommand creates the spots command.
func NewSpotsCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		query   string
		summary bool
	)

	cmd := &cobra.Command{
		Use:   "spots",
		Short: "List spots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(a *app) error {
				out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}

				if summary {
					s, err := a.service.Summary(cmd.Context())
					if err != nil {
						return err
					}
					return out.Print(s, func(w io.Writer) error {
						_, err := fmt.Fprintf(w, "Total: %d  Free: %d  Occupied: %d  Visitor: %d  Vehicles: %d\n",
							s.Total, s.Free, s.Occupied, s.Visitor, s.Vehicles)
						return err
					})
				}

				spots, err := a.service.ListSpots(cmd.Context())
				if err != nil {
					return err
				}
				spots = parking.FilterSpots(spots, query)
				return out.Print(spots, func(w io.Writer) error { return writeSpots(w, spots) })
			})
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "filter by spot ID, plate or office")
	cmd.Flags().BoolVar(&summary, "summary", false, "print occupancy counts instead of the list")

	return cmd
}

// NewLogsCommand creates the logs command.
func NewLogsCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		limit int
		spot  string
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the occupancy audit log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(a *app) error {
				entries, err := a.service.ListLogs(cmd.Context(), models.NormalizeSpotID(spot), limit)
				if err != nil {
					return err
				}
				out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
				return out.Print(entries, func(w io.Writer) error { return writeLogs(w, entries) })
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of recent entries (0 for all)")
	cmd.Flags().StringVar(&spot, "spot", "", "only entries for this spot")

	return cmd
}

// withApp opens the store for the duration of fn.
func withApp(cmd *cobra.Command, rootOpts *RootOptions, fn func(a *app) error) error {
	a, err := openApp(cmd.Context(), rootOpts.Config)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

func printSpot(cmd *cobra.Command, rootOpts *RootOptions, a *app, spotID string) error {
	spot, err := a.service.GetSpot(cmd.Context(), spotID)
	if err != nil {
		return err
	}
	if spot == nil {
		return fmt.Errorf("%w: %s", parking.ErrSpotNotFound, spotID)
	}

	out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
	return out.Print(spot, func(w io.Writer) error {
		return writeSpots(w, []models.Spot{*spot})
	})
}
