package daily

import (
	"context"
	"fmt"

	"github.com/sandeepkv93/daybook/internal/model"
)

// RunOnce records the last day a named operation ran.
type RunOnce struct {
	settings SettingsStore
}

func NewRunOnce(settings SettingsStore) *RunOnce {
	return &RunOnce{settings: settings}
}

// ShouldRun is true when op has no marker or its marker names another day.
func (g *RunOnce) ShouldRun(ctx context.Context, op string, today model.DayKey) (bool, error) {
	item, ok, err := g.settings.Get(ctx, op)
	if err != nil {
		return false, fmt.Errorf("read guard %s: %w", op, err)
	}
	if !ok {
		return true, nil
	}
	return item.Value != today.String(), nil
}

func (g *RunOnce) MarkRan(ctx context.Context, op string, today model.DayKey) error {
	item, ok, err := g.settings.Get(ctx, op)
	if err != nil {
		return fmt.Errorf("read guard %s: %w", op, err)
	}
	if !ok {
		if _, err := g.settings.Add(ctx, model.Setting{ID: model.NewID, Name: op, Value: today.String()}); err != nil {
			return fmt.Errorf("create guard %s: %w", op, err)
		}
		return nil
	}
	item.Value = today.String()
	if err := g.settings.Update(ctx, item); err != nil {
		return fmt.Errorf("update guard %s: %w", op, err)
	}
	return nil
}
