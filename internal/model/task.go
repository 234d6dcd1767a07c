package model

import (
	"errors"
	"fmt"
	"maps"
	"strings"
	"time"
)

// NewID marks a task or setting that has not been persisted yet.
const NewID int64 = -1

// NoRef is the RefTaskID of a task that is neither an occurrence nor a clone.
const NoRef int64 = -1

const (
	DefaultList       = "Personal"
	DetailDescription = "description"
)

var (
	ErrValidation      = errors.New("model: validation failed")
	ErrInvalidTaskType = fmt.Errorf("%w: invalid task type", ErrValidation)
	ErrDueDateMismatch = fmt.Errorf("%w: due date does not match due time", ErrValidation)
)

type TaskType string

const (
	TaskTypeLive      TaskType = "live"
	TaskTypeChecklist TaskType = "checklist"
)

func (t TaskType) IsValid() bool {
	switch t {
	case TaskTypeLive, TaskTypeChecklist:
		return true
	default:
		return false
	}
}

type Task struct {
	ID        int64
	Name      string
	List      string
	Type      TaskType
	DueAt     time.Time
	DueDate   DayKey
	Done      bool
	Remarks   string
	Repeat    *RecurrenceRule
	RefTaskID int64
	Detail    map[string]string
	CreatedAt time.Time
}

// NewTask returns an unsaved, non-repeating live task due at dueAt.
func NewTask(name string, dueAt time.Time) Task {
	t := Task{
		ID:        NewID,
		Name:      name,
		List:      DefaultList,
		Type:      TaskTypeLive,
		RefTaskID: NoRef,
		Detail:    map[string]string{},
	}
	t.SetDue(dueAt)
	return t
}

// SetDue is the only way DueAt should change: it keeps DueDate in step.
func (t *Task) SetDue(at time.Time) {
	t.DueAt = at
	t.DueDate = DayKeyOf(at)
}

func (t Task) Repeating() bool {
	return t.Repeat != nil
}

func (t Task) RepeatString() string {
	return RepeatString(t.Repeat)
}

func (t Task) Description() string {
	return t.Detail[DetailDescription]
}

func (t Task) Persisted() bool {
	return t.ID != NewID
}

// Clone copies t deeply enough that mutating the copy's detail bag or rule
// never reaches the original.
func (t Task) Clone() Task {
	out := t
	if t.Detail != nil {
		out.Detail = maps.Clone(t.Detail)
	}
	if t.Repeat != nil {
		rule := *t.Repeat
		rule.Weekdays = append([]time.Weekday(nil), t.Repeat.Weekdays...)
		out.Repeat = &rule
	}
	return out
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("%w: task name is required", ErrValidation)
	}
	if !t.Type.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidTaskType, t.Type)
	}
	if t.DueAt.IsZero() {
		return fmt.Errorf("%w: task due time is required", ErrValidation)
	}
	if t.DueDate != DayKeyOf(t.DueAt) {
		return fmt.Errorf("%w: %s vs %s", ErrDueDateMismatch, t.DueDate, DayKeyOf(t.DueAt))
	}
	if t.Repeat != nil {
		if err := t.Repeat.Validate(); err != nil {
			return err
		}
	}
	return nil
}
