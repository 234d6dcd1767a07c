package scheduler

import (
	"container/heap"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sandeepkv93/daybook/internal/model"
)

var (
	ErrInvalidTriggerTime = errors.New("scheduler: invalid trigger time")
	ErrStopped            = errors.New("scheduler: engine stopped")
)

type queueItem struct {
	rem model.Reminder
	seq uint64
}

type priorityQueue []queueItem

func (pq priorityQueue) Len() int { return len(pq) }

func (pq priorityQueue) Less(i, j int) bool {
	if pq[i].rem.TriggerTime.Equal(pq[j].rem.TriggerTime) {
		return pq[i].seq < pq[j].seq
	}
	return pq[i].rem.TriggerTime.Before(pq[j].rem.TriggerTime)
}

func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
}

func (pq *priorityQueue) Push(x any) {
	*pq = append(*pq, x.(queueItem))
}

func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[0 : n-1]
	return item
}

// Engine holds reminders in trigger order and emits each one on C once its
// trigger time passes. Emission never blocks; a full buffer counts a drop.
type Engine struct {
	mu      sync.Mutex
	queue   priorityQueue
	seq     uint64
	now     func() time.Time
	out     chan model.Reminder
	wakeup  chan struct{}
	stopCh  chan struct{}
	doneCh  chan struct{}
	started bool
	stopped bool
	dropped uint64
}

func NewEngine(bufferSize int) *Engine {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &Engine{
		queue:  make(priorityQueue, 0),
		now:    time.Now,
		out:    make(chan model.Reminder, bufferSize),
		wakeup: make(chan struct{}, 1),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// WithNow swaps the clock used to decide which reminders are due. Timer
// waits still use real durations.
func (e *Engine) WithNow(now func() time.Time) *Engine {
	e.mu.Lock()
	defer e.mu.Unlock()
	if now != nil {
		e.now = now
	}
	return e
}

func (e *Engine) C() <-chan model.Reminder {
	return e.out
}

func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return
	}
	e.started = true
	heap.Init(&e.queue)
	go e.loop()
}

func (e *Engine) Stop() {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return
	}
	e.stopped = true
	close(e.stopCh)
	started := e.started
	e.mu.Unlock()
	if started {
		<-e.doneCh
	}
}

func (e *Engine) Schedule(rem model.Reminder) error {
	if err := validate(rem); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return ErrStopped
	}

	e.push(rem)
	e.signalWakeup()
	return nil
}

// Replace drops every queued reminder and schedules rems instead. Disabled
// reminders are skipped. Nothing is replaced when any reminder is invalid.
func (e *Engine) Replace(rems []model.Reminder) error {
	for _, rem := range rems {
		if err := validate(rem); err != nil {
			return fmt.Errorf("replace %s: %w", rem.ID, err)
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return ErrStopped
	}
	e.queue = e.queue[:0]
	for _, rem := range rems {
		if rem.Enabled {
			e.push(rem)
		}
	}
	heap.Init(&e.queue)
	e.signalWakeup()
	return nil
}

// Pending returns the queued reminders in trigger order.
func (e *Engine) Pending() []model.Reminder {
	e.mu.Lock()
	items := slices.Clone(e.queue)
	e.mu.Unlock()

	slices.SortFunc(items, func(a, b queueItem) int {
		if c := a.rem.TriggerTime.Compare(b.rem.TriggerTime); c != 0 {
			return c
		}
		if a.seq < b.seq {
			return -1
		}
		return 1
	})
	out := make([]model.Reminder, 0, len(items))
	for _, item := range items {
		out = append(out, item.rem)
	}
	return out
}

func (e *Engine) Dropped() uint64 {
	return atomic.LoadUint64(&e.dropped)
}

func validate(rem model.Reminder) error {
	if rem.TriggerTime.IsZero() {
		return ErrInvalidTriggerTime
	}
	return rem.Validate()
}

func (e *Engine) push(rem model.Reminder) {
	e.seq++
	heap.Push(&e.queue, queueItem{rem: rem, seq: e.seq})
}

func (e *Engine) loop() {
	defer close(e.doneCh)
	defer close(e.out)

	var timer *time.Timer
	for {
		next, hasNext := e.peek()
		if !hasNext {
			select {
			case <-e.wakeup:
				continue
			case <-e.stopCh:
				return
			}
		}

		wait := next.TriggerTime.Sub(e.currentTime())
		if wait < 0 {
			wait = 0
		}
		timer = resetTimer(timer, wait)

		select {
		case <-timer.C:
			due := e.popDue(e.currentTime())
			for _, rem := range due {
				select {
				case e.out <- rem:
				default:
					atomic.AddUint64(&e.dropped, 1)
				}
			}
		case <-e.wakeup:
			continue
		case <-e.stopCh:
			if timer != nil {
				stopTimer(timer)
			}
			return
		}
	}
}

func (e *Engine) currentTime() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.now()
}

func (e *Engine) signalWakeup() {
	select {
	case e.wakeup <- struct{}{}:
	default:
	}
}

func (e *Engine) peek() (model.Reminder, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.queue) == 0 {
		return model.Reminder{}, false
	}
	return e.queue[0].rem, true
}

func (e *Engine) popDue(now time.Time) []model.Reminder {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]model.Reminder, 0)
	for len(e.queue) > 0 {
		next := e.queue[0].rem
		if next.TriggerTime.After(now) {
			break
		}
		item := heap.Pop(&e.queue).(queueItem)
		out = append(out, item.rem)
	}
	return out
}

func resetTimer(timer *time.Timer, d time.Duration) *time.Timer {
	if timer == nil {
		return time.NewTimer(d)
	}
	stopTimer(timer)
	timer.Reset(d)
	return timer
}

func stopTimer(timer *time.Timer) {
	if timer == nil {
		return
	}
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
}
