package maintenance

import (
	"context"
	"errors"
	"fmt"

	"github.com/looplab/fsm"
	"github.com/ukydev/autocare/internal/models"
)

const (
	EventStart    = "start"
	EventComplete = "complete"
	EventCancel   = "cancel"
)

var ErrInvalidTransition = errors.New("invalid status transition")

var statusEvents = fsm.Events{
	{Name: EventStart, Src: []string{string(models.StatusScheduled)}, Dst: string(models.StatusInProgress)},
	{Name: EventComplete, Src: []string{string(models.StatusScheduled), string(models.StatusInProgress)}, Dst: string(models.StatusCompleted)},
	{Name: EventCancel, Src: []string{string(models.StatusScheduled), string(models.StatusInProgress)}, Dst: string(models.StatusCancelled)},
}

// Transition applies event to rec's status. Completing a record whose reminder
// carries a frequency schedules the next reminder from this service.
func Transition(ctx context.Context, rec *models.MaintenanceRecord, event string) error {
	initial := rec.Status
	if initial == "" {
		initial = models.StatusScheduled
	}

	machine := fsm.NewFSM(string(initial), statusEvents, fsm.Callbacks{})
	if err := machine.Event(ctx, event); err != nil {
		return fmt.Errorf("%w: %s from %s: %v", ErrInvalidTransition, event, initial, err)
	}
	next := models.MaintenanceStatus(machine.Current())

	// rec is left untouched unless the whole transition succeeds.
	if next == models.StatusCompleted && rec.Reminder != nil && rec.Reminder.Frequency != nil {
		freq := rec.Reminder.Frequency
		if _, err := ScheduleNext(rec, freq.Value, freq.Unit); err != nil {
			return err
		}
	}
	rec.Status = next
	return nil
}
