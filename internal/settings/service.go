package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/sandeepkv93/daybook/internal/model"
	"github.com/sandeepkv93/daybook/internal/pubsub"
	"github.com/sandeepkv93/daybook/internal/storage"
)

// Defaults are created by InitDefaults when missing. Run-date guards are not
// listed: an absent guard already means "not run today".
var Defaults = []model.Setting{
	{ID: model.NewID, Name: model.SettingEnableDarkMode, Value: "false"},
	{ID: model.NewID, Name: model.SettingAutoImportPendingTasks, Value: "false"},
}

type Store interface {
	GetSetting(ctx context.Context, name string) (model.Setting, error)
	CreateSetting(ctx context.Context, in model.Setting) (model.Setting, error)
	UpdateSetting(ctx context.Context, in model.Setting) error
	ListSettings(ctx context.Context) ([]model.Setting, error)
}

type Service struct {
	store   Store
	logger  zerolog.Logger
	changes *pubsub.Broker[[]model.Setting]
}

func NewService(store Store, logger zerolog.Logger) *Service {
	return &Service{
		store:   store,
		logger:  logger.With().Str("component", "settings").Logger(),
		changes: pubsub.NewBroker[[]model.Setting](4),
	}
}

// Get returns the named setting. A missing setting is reported with
// ok=false and a nil error.
func (s *Service) Get(ctx context.Context, name string) (model.Setting, bool, error) {
	item, err := s.store.GetSetting(ctx, name)
	if errors.Is(err, storage.ErrNotFound) {
		return model.Setting{}, false, nil
	}
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("setting", name).
			Msg("failed to get setting")
		return model.Setting{}, false, err
	}
	return item, true, nil
}

func (s *Service) Add(ctx context.Context, in model.Setting) (model.Setting, error) {
	if err := in.Validate(); err != nil {
		return model.Setting{}, err
	}
	out, err := s.store.CreateSetting(ctx, in)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("setting", in.Name).
			Msg("failed to add setting")
		return model.Setting{}, err
	}
	s.logger.Debug().
		Int64("setting_id", out.ID).
		Str("setting", out.Name).
		Str("value", out.Value).
		Msg("added setting")
	s.publish(ctx)
	return out, nil
}

func (s *Service) Update(ctx context.Context, in model.Setting) error {
	if err := in.Validate(); err != nil {
		return err
	}
	if err := s.store.UpdateSetting(ctx, in); err != nil {
		s.logger.Error().
			Err(err).
			Str("setting", in.Name).
			Msg("failed to update setting")
		return err
	}
	s.logger.Debug().
		Str("setting", in.Name).
		Str("value", in.Value).
		Msg("updated setting")
	s.publish(ctx)
	return nil
}

// Set writes value under name, creating the setting when it does not exist.
func (s *Service) Set(ctx context.Context, name, value string) error {
	current, ok, err := s.Get(ctx, name)
	if err != nil {
		return err
	}
	if !ok {
		_, err = s.Add(ctx, model.Setting{ID: model.NewID, Name: name, Value: value})
		return err
	}
	current.Value = value
	return s.Update(ctx, current)
}

func (s *Service) List(ctx context.Context) ([]model.Setting, error) {
	items, err := s.store.ListSettings(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to list settings")
		return nil, err
	}
	return items, nil
}

// Bool reads a flag setting. Missing flags are false.
func (s *Service) Bool(ctx context.Context, name string) (bool, error) {
	item, ok, err := s.Get(ctx, name)
	if err != nil || !ok {
		return false, err
	}
	return item.Bool(), nil
}

// InitDefaults creates every default setting that is missing and leaves
// existing values alone.
func (s *Service) InitDefaults(ctx context.Context) error {
	var errs []error
	created := 0
	for _, def := range Defaults {
		_, ok, err := s.Get(ctx, def.Name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if ok {
			continue
		}
		if _, err := s.store.CreateSetting(ctx, def); err != nil {
			errs = append(errs, fmt.Errorf("init %s: %w", def.Name, err))
			continue
		}
		created++
	}
	if created > 0 {
		s.logger.Info().
			Int("created", created).
			Msg("initialized default settings")
	}
	s.publish(ctx)
	return errors.Join(errs...)
}

// Subscribe streams the full settings collection after every change. The
// latest collection is replayed to new subscribers.
func (s *Service) Subscribe() *pubsub.Subscription[[]model.Setting] {
	return s.changes.Subscribe()
}

func (s *Service) Close() {
	s.changes.Close()
}

func (s *Service) publish(ctx context.Context) {
	items, err := s.store.ListSettings(ctx)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Msg("failed to reload settings for subscribers")
		return
	}
	s.changes.Publish(items)
}
