package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/ukydev/autocare/internal/maintenance"
	"github.com/ukydev/autocare/internal/models"
)

const dateLayout = "2006-01-02"

// ScheduleOptions holds flags for the schedule command.
type ScheduleOptions struct {
	*RootOptions
	Mileage  int
	Date     string
	Interval int
	Unit     string
}

type scheduleResult struct {
	Reminder models.Reminder `json:"reminder"`
}

// NewScheduleCommand creates the schedule command.
func NewScheduleCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ScheduleOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Compute the next due point of a service",
		Long: `Compute the next due point of a service performed at --mileage on --date.

Example:
  autocarectl schedule --mileage 50000 --interval 5000 --unit miles
  autocarectl schedule --date 2024-01-31 --interval 1 --unit months`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchedule(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Mileage, "mileage", 0, "odometer at the service")
	cmd.Flags().StringVar(&opts.Date, "date", "", "service date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&opts.Interval, "interval", 0, "interval between services")
	cmd.Flags().StringVar(&opts.Unit, "unit", "", "days|months|years|miles|kilometers")
	_ = cmd.MarkFlagRequired("interval")
	_ = cmd.MarkFlagRequired("unit")

	return cmd
}

func runSchedule(cmd *cobra.Command, opts *ScheduleOptions) error {
	unit := models.FrequencyUnit(opts.Unit)
	rec := &models.MaintenanceRecord{Mileage: opts.Mileage}
	if opts.Date != "" {
		date, err := time.Parse(dateLayout, opts.Date)
		if err != nil {
			return fmt.Errorf("invalid --date: %w", err)
		}
		rec.Date = date
	} else if unit.IsTime() {
		return fmt.Errorf("--date is required for unit %q", unit)
	}

	reminder, err := maintenance.ScheduleNext(rec, opts.Interval, unit)
	if err != nil {
		return err
	}
	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), scheduleResult{Reminder: reminder})
	}

	out := cmd.OutOrStdout()
	if due, ok := reminder.DueMileage(); ok {
		fmt.Fprintf(out, "Next due: odometer %d (every %d %s)\n", due, opts.Interval, unit)
	} else if due, ok := reminder.DueDate(); ok {
		fmt.Fprintf(out, "Next due: %s (every %d %s)\n", due.Format(dateLayout), opts.Interval, unit)
	}
	return nil
}
