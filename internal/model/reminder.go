package model

import (
	"fmt"
	"strings"
	"time"
)

var ErrInvalidReminderType = fmt.Errorf("%w: invalid reminder type", ErrValidation)

type ReminderType string

const (
	// ReminderTypeSoft fires a lead time ahead of the due time.
	ReminderTypeSoft ReminderType = "Soft"
	// ReminderTypeHard fires at the due time.
	ReminderTypeHard ReminderType = "Hard"
)

func (r ReminderType) IsValid() bool {
	switch r {
	case ReminderTypeHard, ReminderTypeSoft:
		return true
	default:
		return false
	}
}

type Reminder struct {
	ID          string
	TaskID      int64
	TaskName    string
	TriggerTime time.Time
	Type        ReminderType
	Enabled     bool
}

// ReminderID is stable per task, kind and day so reloads replace rather
// than duplicate.
func ReminderID(taskID int64, kind ReminderType, day DayKey) string {
	return fmt.Sprintf("%d-%s-%s", taskID, strings.ToLower(string(kind)), day)
}

func (r Reminder) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("%w: reminder id is required", ErrValidation)
	}
	if r.TaskID <= 0 {
		return fmt.Errorf("%w: reminder task id must be persisted, got %d", ErrValidation, r.TaskID)
	}
	if r.TriggerTime.IsZero() {
		return fmt.Errorf("%w: reminder trigger time is required", ErrValidation)
	}
	if !r.Type.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidReminderType, r.Type)
	}
	return nil
}
