package model

import (
	"errors"
	"testing"
	"time"
)

func TestReminderValidateSuccess(t *testing.T) {
	rem := Reminder{
		ID:          ReminderID(7, ReminderTypeHard, 20260209),
		TaskID:      7,
		TriggerTime: time.Date(2026, 2, 9, 13, 0, 0, 0, time.UTC),
		Type:        ReminderTypeHard,
		Enabled:     true,
	}
	if err := rem.Validate(); err != nil {
		t.Fatalf("expected valid reminder, got error: %v", err)
	}
	if rem.ID != "7-hard-20260209" {
		t.Fatalf("unexpected reminder id: %q", rem.ID)
	}
}

func TestReminderValidateInvalidType(t *testing.T) {
	rem := Reminder{
		ID:          "rem-1",
		TaskID:      1,
		TriggerTime: time.Date(2026, 2, 9, 13, 0, 0, 0, time.UTC),
		Type:        ReminderType("invalid"),
	}
	err := rem.Validate()
	if !errors.Is(err, ErrInvalidReminderType) {
		t.Fatalf("expected ErrInvalidReminderType, got: %v", err)
	}
}

func TestReminderValidateUnsavedTask(t *testing.T) {
	rem := Reminder{
		ID:          "rem-1",
		TaskID:      NewID,
		TriggerTime: time.Date(2026, 2, 9, 13, 0, 0, 0, time.UTC),
		Type:        ReminderTypeSoft,
	}
	if err := rem.Validate(); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
