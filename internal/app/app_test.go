package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/sandeepkv93/daybook/internal/clock"
	"github.com/sandeepkv93/daybook/internal/config"
	"github.com/sandeepkv93/daybook/internal/daily"
	"github.com/sandeepkv93/daybook/internal/model"
)

func newTestApp(t *testing.T, now time.Time, confirmer daily.Confirmer) *App {
	t.Helper()
	cfg := config.Default()
	cfg.DBPath = filepath.Join(t.TempDir(), "daybook.db")

	a, err := New(cfg, zerolog.Nop(), Options{
		Clock:     clock.NewFixed(now),
		Location:  time.UTC,
		Confirmer: confirmer,
	})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestMaintainGeneratesAndCarriesForward(t *testing.T) {
	now := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	a := newTestApp(t, now, daily.StaticConfirmer{Accept: true})
	ctx := context.Background()

	tpl := model.NewTask("Standup", time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	tpl.Repeat = model.Daily()
	tpl.Done = true
	if _, err := a.Tasks.Create(ctx, tpl); err != nil {
		t.Fatalf("seed template: %v", err)
	}
	if _, err := a.Tasks.Create(ctx, model.NewTask("File report", time.Date(2024, 3, 9, 17, 0, 0, 0, time.UTC))); err != nil {
		t.Fatalf("seed pending: %v", err)
	}

	report := a.Maintain(ctx)
	if report.Err != nil {
		t.Fatalf("maintain: %v", report.Err)
	}
	if !report.Created || len(report.Carried) != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}

	today, err := a.Tasks.GetAllByDate(ctx, 20240310)
	if err != nil {
		t.Fatalf("list today: %v", err)
	}
	if len(today) != 2 {
		t.Fatalf("expected occurrence and clone on today, got %#v", today)
	}
	if snap := a.Agenda.Current(); snap.Day != 20240310 || len(snap.Tasks) != 2 {
		t.Fatalf("agenda not reloaded: %+v", snap)
	}

	guard, ok, err := a.Settings.Get(ctx, daily.GuardTaskScheduler)
	if err != nil || !ok || guard.Value != "20240310" {
		t.Fatalf("scheduler guard not marked: %+v ok=%v err=%v", guard, ok, err)
	}

	again := a.Maintain(ctx)
	if again.Err != nil || again.Created || len(again.Carried) != 0 {
		t.Fatalf("second pass should be a no-op: %+v", again)
	}
}

func TestStartAndClose(t *testing.T) {
	now := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	a := newTestApp(t, now, daily.StaticConfirmer{})

	a.Start(context.Background())
	if snap := a.Agenda.Current(); snap.Day != 20240310 || snap.Title != "Today (Sun Mar 10, 2024)" {
		t.Fatalf("unexpected initial snapshot: %+v", snap)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}
