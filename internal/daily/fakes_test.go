package daily

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/sandeepkv93/daybook/internal/model"
)

var errStore = errors.New("store down")

type memTasks struct {
	mu        sync.Mutex
	nextID    int64
	items     map[int64]model.Task
	failNames map[string]bool
	failList  bool
}

func newMemTasks() *memTasks {
	return &memTasks{nextID: 1, items: map[int64]model.Task{}, failNames: map[string]bool{}}
}

func (m *memTasks) seed(t model.Task) model.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.ID = m.nextID
	m.nextID++
	m.items[t.ID] = t.Clone()
	return t
}

func (m *memTasks) sorted(keep func(model.Task) bool) []model.Task {
	out := []model.Task{}
	for _, t := range m.items {
		if keep(t) {
			out = append(out, t.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memTasks) GetAllByDate(_ context.Context, day model.DayKey) ([]model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failList {
		return nil, errStore
	}
	return m.sorted(func(t model.Task) bool { return t.DueDate == day }), nil
}

func (m *memTasks) GetPending(_ context.Context, today model.DayKey) ([]model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failList {
		return nil, errStore
	}
	return m.sorted(func(t model.Task) bool { return !t.Done && t.DueDate < today }), nil
}

func (m *memTasks) GetRepeating(context.Context) ([]model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failList {
		return nil, errStore
	}
	return m.sorted(func(t model.Task) bool { return t.Repeating() }), nil
}

func (m *memTasks) Create(_ context.Context, in model.Task) (model.Task, error) {
	if err := in.Validate(); err != nil {
		return model.Task{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNames[in.Name] {
		return model.Task{}, errStore
	}
	in.ID = m.nextID
	m.nextID++
	m.items[in.ID] = in.Clone()
	return in, nil
}

func (m *memTasks) get(id int64) model.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.items[id].Clone()
}

func (m *memTasks) referencing(id int64, day model.DayKey) []model.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(func(t model.Task) bool { return t.RefTaskID == id && t.DueDate == day })
}

func (m *memTasks) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

type memSettings struct {
	mu      sync.Mutex
	nextID  int64
	items   map[string]model.Setting
	failGet bool
}

func newMemSettings() *memSettings {
	return &memSettings{nextID: 1, items: map[string]model.Setting{}}
}

func (m *memSettings) Get(_ context.Context, name string) (model.Setting, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet {
		return model.Setting{}, false, errStore
	}
	s, ok := m.items[name]
	return s, ok, nil
}

func (m *memSettings) Add(_ context.Context, in model.Setting) (model.Setting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if in.ID != model.NewID {
		return model.Setting{}, errors.New("add expects an unsaved setting")
	}
	in.ID = m.nextID
	m.nextID++
	m.items[in.Name] = in
	return in, nil
}

func (m *memSettings) Update(_ context.Context, in model.Setting) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[in.Name]; !ok {
		return errors.New("missing")
	}
	m.items[in.Name] = in
	return nil
}

func (m *memSettings) InitDefaults(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[model.SettingAutoImportPendingTasks]; !ok {
		m.items[model.SettingAutoImportPendingTasks] = model.Setting{ID: m.nextID, Name: model.SettingAutoImportPendingTasks, Value: "false"}
		m.nextID++
	}
	return nil
}

func (m *memSettings) value(name string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.items[name].Value
}

type recordingReminders struct {
	mu        sync.Mutex
	reloads   int
	summaries int
	failSum   bool
}

func (r *recordingReminders) ReloadReminders(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reloads++
	return nil
}

func (r *recordingReminders) LoadInitialSummary(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failSum {
		return errStore
	}
	r.summaries++
	return nil
}

type recordingView struct {
	mu      sync.Mutex
	reloads int
	resets  []time.Time
	minutes int64
}

func (v *recordingView) Reload(context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.reloads++
	return nil
}

func (v *recordingView) HardReset(_ context.Context, now time.Time) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.resets = append(v.resets, now)
	return nil
}

func (v *recordingView) SetMinutesNow(minutes int64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.minutes = minutes
}

type scriptedConfirmer struct {
	decision Decision
	err      error
	calls    int
	last     ConfirmRequest
}

func (s *scriptedConfirmer) Confirm(_ context.Context, req ConfirmRequest) (Decision, error) {
	s.calls++
	s.last = req
	return s.decision, s.err
}

func at(day model.DayKey, hour, minute int) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, hour, minute, 0, 0, time.UTC)
}
