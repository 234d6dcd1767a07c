package scheduler

import (
	"errors"
	"testing"
	"time"

	"github.com/sandeepkv93/daybook/internal/model"
)

func reminder(id string, at time.Time) model.Reminder {
	return model.Reminder{ID: id, TaskID: 1, TaskName: id, TriggerTime: at, Type: model.ReminderTypeHard, Enabled: true}
}

func TestEngineEmitsInTriggerOrder(t *testing.T) {
	engine := NewEngine(8)
	engine.Start()
	defer engine.Stop()

	now := time.Now().UTC()
	if err := engine.Schedule(reminder("later", now.Add(80*time.Millisecond))); err != nil {
		t.Fatalf("schedule later: %v", err)
	}
	if err := engine.Schedule(reminder("sooner", now.Add(20*time.Millisecond))); err != nil {
		t.Fatalf("schedule sooner: %v", err)
	}

	first := waitReminder(t, engine.C(), time.Second)
	second := waitReminder(t, engine.C(), time.Second)
	if first.ID != "sooner" || second.ID != "later" {
		t.Fatalf("unexpected order: first=%s second=%s", first.ID, second.ID)
	}
}

func TestEngineNonBlockingDropsWhenConsumerIsSlow(t *testing.T) {
	engine := NewEngine(1)
	engine.Start()
	defer engine.Stop()

	at := time.Now().UTC().Add(20 * time.Millisecond)
	for i := 0; i < 25; i++ {
		if err := engine.Schedule(reminder("evt", at)); err != nil {
			t.Fatalf("schedule reminder: %v", err)
		}
	}

	time.Sleep(120 * time.Millisecond)
	if engine.Dropped() == 0 {
		t.Fatalf("expected dropped reminders > 0, got %d", engine.Dropped())
	}
}

func TestScheduleValidatesReminder(t *testing.T) {
	engine := NewEngine(1)
	if err := engine.Schedule(model.Reminder{ID: "bad"}); err != ErrInvalidTriggerTime {
		t.Fatalf("expected ErrInvalidTriggerTime, got %v", err)
	}
	bad := reminder("bad-type", time.Now())
	bad.Type = "Loud"
	if err := engine.Schedule(bad); !errors.Is(err, model.ErrInvalidReminderType) {
		t.Fatalf("expected ErrInvalidReminderType, got %v", err)
	}
}

func TestReplaceSwapsQueue(t *testing.T) {
	engine := NewEngine(4)
	base := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	if err := engine.Schedule(reminder("stale", base)); err != nil {
		t.Fatalf("schedule: %v", err)
	}

	disabled := reminder("off", base.Add(time.Hour))
	disabled.Enabled = false
	err := engine.Replace([]model.Reminder{
		reminder("b", base.Add(2*time.Hour)),
		reminder("a", base.Add(time.Hour)),
		disabled,
	})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}

	pending := engine.Pending()
	if len(pending) != 2 || pending[0].ID != "a" || pending[1].ID != "b" {
		t.Fatalf("unexpected pending: %#v", pending)
	}

	if err := engine.Replace([]model.Reminder{{ID: "broken"}}); err == nil {
		t.Fatal("expected invalid replace to fail")
	}
	if len(engine.Pending()) != 2 {
		t.Fatal("failed replace must keep the previous queue")
	}
}

func TestStoppedEngineRejectsWork(t *testing.T) {
	engine := NewEngine(1)
	engine.Stop()
	if err := engine.Schedule(reminder("x", time.Now())); !errors.Is(err, ErrStopped) {
		t.Fatalf("expected ErrStopped, got %v", err)
	}
}

func waitReminder(t *testing.T, ch <-chan model.Reminder, timeout time.Duration) model.Reminder {
	t.Helper()
	select {
	case rem := <-ch:
		return rem
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for reminder")
		return model.Reminder{}
	}
}
