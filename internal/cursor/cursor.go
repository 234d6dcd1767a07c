package cursor

import (
	"sync"
	"time"

	"github.com/sandeepkv93/daybook/internal/model"
	"github.com/sandeepkv93/daybook/internal/pubsub"
)

// Change is published after every navigation step.
type Change struct {
	Day model.DayKey
	At  time.Time
}

// Cursor is the day currently shown. Day and instant always name the same
// calendar day.
type Cursor struct {
	mu      sync.Mutex
	at      time.Time
	day     model.DayKey
	changes *pubsub.Broker[Change]
}

func New(at time.Time) *Cursor {
	return &Cursor{
		at:      at,
		day:     model.DayKeyOf(at),
		changes: pubsub.NewBroker[Change](8),
	}
}

func (c *Cursor) Loaded() (model.DayKey, time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.day, c.at
}

func (c *Cursor) LoadPreviousDay() Change {
	return c.shift(-1)
}

func (c *Cursor) LoadNextDay() Change {
	return c.shift(1)
}

// Reset re-seeds the cursor without publishing a change; callers reload
// what they need themselves.
func (c *Cursor) Reset(at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.at = at
	c.day = model.DayKeyOf(at)
}

// Subscribe delivers future navigation changes. Nothing is replayed until
// the cursor has moved once.
func (c *Cursor) Subscribe() *pubsub.Subscription[Change] {
	return c.changes.Subscribe()
}

func (c *Cursor) Close() {
	c.changes.Close()
}

func (c *Cursor) shift(days int) Change {
	c.mu.Lock()
	c.at = model.AddDays(c.at, days)
	c.day = model.DayKeyOf(c.at)
	ch := Change{Day: c.day, At: c.at}
	c.mu.Unlock()

	c.changes.Publish(ch)
	return ch
}
