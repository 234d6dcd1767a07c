package settings

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/sandeepkv93/daybook/internal/model"
	"github.com/sandeepkv93/daybook/internal/storage"
)

func setupService(t *testing.T) *Service {
	t.Helper()
	repo, err := storage.Open(storage.DriverCGO, filepath.Join(t.TempDir(), "settings.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	svc := NewService(repo, zerolog.Nop())
	t.Cleanup(svc.Close)
	return svc
}

func TestInitDefaultsCreatesMissingOnly(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	if _, err := svc.Add(ctx, model.Setting{ID: model.NewID, Name: model.SettingAutoImportPendingTasks, Value: "true"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := svc.InitDefaults(ctx); err != nil {
		t.Fatalf("init defaults: %v", err)
	}
	if err := svc.InitDefaults(ctx); err != nil {
		t.Fatalf("second init defaults: %v", err)
	}

	all, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 settings, got %#v", all)
	}
	auto, err := svc.Bool(ctx, model.SettingAutoImportPendingTasks)
	if err != nil || !auto {
		t.Fatalf("existing value must survive init: %v %v", auto, err)
	}
	dark, err := svc.Bool(ctx, model.SettingEnableDarkMode)
	if err != nil || dark {
		t.Fatalf("dark mode default should be false: %v %v", dark, err)
	}
}

func TestGetMissingIsNotAnError(t *testing.T) {
	svc := setupService(t)
	_, ok, err := svc.Get(context.Background(), "taskSchedulerRunDate")
	if err != nil || ok {
		t.Fatalf("expected ok=false err=nil, got ok=%v err=%v", ok, err)
	}
	if on, err := svc.Bool(context.Background(), "nope"); on || err != nil {
		t.Fatalf("missing flag should read false: %v %v", on, err)
	}
}

func TestSetCreatesThenUpdates(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	if err := svc.Set(ctx, "pendingTaskCopyRunDate", "20240309"); err != nil {
		t.Fatalf("set create: %v", err)
	}
	if err := svc.Set(ctx, "pendingTaskCopyRunDate", "20240310"); err != nil {
		t.Fatalf("set update: %v", err)
	}
	got, ok, err := svc.Get(ctx, "pendingTaskCopyRunDate")
	if err != nil || !ok || got.Value != "20240310" {
		t.Fatalf("unexpected setting: %#v ok=%v err=%v", got, ok, err)
	}
}

func TestAddRejectsBlankName(t *testing.T) {
	svc := setupService(t)
	if _, err := svc.Add(context.Background(), model.Setting{Name: " "}); !errors.Is(err, model.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSubscribeStreamsCollection(t *testing.T) {
	svc := setupService(t)
	sub := svc.Subscribe()
	defer sub.Close()

	if err := svc.InitDefaults(context.Background()); err != nil {
		t.Fatalf("init defaults: %v", err)
	}
	select {
	case items := <-sub.C():
		if len(items) != len(Defaults) {
			t.Fatalf("expected %d settings in stream, got %d", len(Defaults), len(items))
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for settings stream")
	}
}
