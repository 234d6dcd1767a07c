package scheduler

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sandeepkv93/daybook/internal/model"
)

func dayReminders(prefix string, n int, base time.Time, spread time.Duration) []model.Reminder {
	out := make([]model.Reminder, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, model.Reminder{
			ID:          fmt.Sprintf("%s-%d", prefix, i),
			TaskID:      int64(i + 1),
			TaskName:    fmt.Sprintf("task-%d", i),
			TriggerTime: base.Add(time.Duration(i%10) * spread),
			Type:        model.ReminderTypeHard,
			Enabled:     true,
		})
	}
	return out
}

// Reloads racing each other must leave exactly the last set queued.
func TestEngineStressConcurrentReplace(t *testing.T) {
	engine := NewEngine(1024)
	engine.Start()
	defer engine.Stop()

	const reloaders = 8
	const rounds = 50
	far := time.Now().Add(time.Hour)

	var wg sync.WaitGroup
	wg.Add(reloaders)
	for w := 0; w < reloaders; w++ {
		go func() {
			defer wg.Done()
			for r := 0; r < rounds; r++ {
				if err := engine.Replace(dayReminders(fmt.Sprintf("stale%d", w), 20, far, time.Minute)); err != nil {
					t.Errorf("replace: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	const total = 200
	if err := engine.Replace(dayReminders("final", total, time.Now().Add(10*time.Millisecond), 3*time.Millisecond)); err != nil {
		t.Fatalf("final replace: %v", err)
	}

	deadline := time.After(5 * time.Second)
	received := 0
	for received < total {
		select {
		case <-deadline:
			t.Fatalf("timeout: received=%d total=%d dropped=%d", received, total, engine.Dropped())
		case rem := <-engine.C():
			if !strings.HasPrefix(rem.ID, "final-") {
				t.Fatalf("stale reminder fired: %s", rem.ID)
			}
			received++
		}
	}

	if n := len(engine.Pending()); n != 0 {
		t.Fatalf("expected empty queue, got %d", n)
	}
	if engine.Dropped() != 0 {
		t.Fatalf("expected zero drops with active consumer, got=%d", engine.Dropped())
	}
}
