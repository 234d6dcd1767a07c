package daily

import (
	"context"
	"errors"
	"testing"

	"github.com/sandeepkv93/daybook/internal/model"
)

func TestRunOnceMarksPerDay(t *testing.T) {
	ctx := context.Background()
	settings := newMemSettings()
	guard := NewRunOnce(settings)
	day := model.DayKey(20240310)

	run, err := guard.ShouldRun(ctx, GuardTaskScheduler, day)
	if err != nil || !run {
		t.Fatalf("fresh guard should run: %v %v", run, err)
	}
	if err := guard.MarkRan(ctx, GuardTaskScheduler, day); err != nil {
		t.Fatalf("mark: %v", err)
	}
	if err := guard.MarkRan(ctx, GuardTaskScheduler, day); err != nil {
		t.Fatalf("second mark: %v", err)
	}
	if run, _ := guard.ShouldRun(ctx, GuardTaskScheduler, day); run {
		t.Fatal("guard should not run twice on the same day")
	}
	if run, _ := guard.ShouldRun(ctx, GuardTaskScheduler, day.AddDays(1)); !run {
		t.Fatal("guard should run again on the next day")
	}
	if settings.value(GuardTaskScheduler) != "20240310" {
		t.Fatalf("unexpected marker: %q", settings.value(GuardTaskScheduler))
	}
}

func TestRunOnceSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	settings := newMemSettings()
	if err := NewRunOnce(settings).MarkRan(ctx, GuardPendingTaskCopy, 20240310); err != nil {
		t.Fatalf("mark: %v", err)
	}
	if run, _ := NewRunOnce(settings).ShouldRun(ctx, GuardPendingTaskCopy, 20240310); run {
		t.Fatal("marker must be durable across guard instances")
	}
}

func TestRunOnceGuardsAreIndependent(t *testing.T) {
	ctx := context.Background()
	guard := NewRunOnce(newMemSettings())
	if err := guard.MarkRan(ctx, GuardTaskScheduler, 20240310); err != nil {
		t.Fatalf("mark: %v", err)
	}
	if run, _ := guard.ShouldRun(ctx, GuardPendingTaskCopy, 20240310); !run {
		t.Fatal("one guard must not block another")
	}
}

func TestRunOnceReadFailure(t *testing.T) {
	settings := newMemSettings()
	settings.failGet = true
	_, err := NewRunOnce(settings).ShouldRun(context.Background(), GuardTaskScheduler, 20240310)
	if !errors.Is(err, errStore) {
		t.Fatalf("expected store error, got %v", err)
	}
}
