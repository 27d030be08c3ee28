package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/smart-park/backend/internal/storage/models"
)

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

// Print writes data as indented JSON, or through text in text mode.
func (f *OutputFormatter) Print(data any, text func(w io.Writer) error) error {
	if f.Format == "json" {
		enc := json.NewEncoder(f.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	}
	return text(f.Writer)
}

func writeSpots(w io.Writer, spots []models.Spot) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tTYPE\tPLATE\tOFFICES")
	for _, s := range spots {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", s.ID, s.Status, s.Type, orDash(s.VehiclePlate), strings.Join(s.AssignedOffices, ", "))
	}
	return tw.Flush()
}

func writeVehicles(w io.Writer, vehicles []models.Vehicle) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PLATE\tOFFICE\tSPOTS")
	for _, v := range vehicles {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", v.Plate, v.Office, strings.Join(v.AllowedSpots, ","))
	}
	return tw.Flush()
}

func writeLogs(w io.Writer, entries []models.TransactionLog) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTIME\tACTION\tSPOT\tPLATE")
	for _, e := range entries {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", e.ID, e.Timestamp.Format("2006-01-02 15:04:05"), e.Action, e.SpotID, orDash(e.Plate))
	}
	return tw.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
