package reminders

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

// DesktopNotifier shells out to notify-send on Linux and osascript on macOS.
// Other platforms are a no-op.
type DesktopNotifier struct {
	Timeout time.Duration
	// run is swapped in tests.
	run func(ctx context.Context, name string, args ...string) error
}

func (d DesktopNotifier) Notify(n Notification) error {
	name, args := desktopCommand(runtime.GOOS, n)
	if name == "" {
		return nil
	}
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	run := d.run
	if run == nil {
		run = func(ctx context.Context, name string, args ...string) error {
			return exec.CommandContext(ctx, name, args...).Run()
		}
	}
	if err := run(ctx, name, args...); err != nil {
		return fmt.Errorf("desktop notify via %s: %w", name, err)
	}
	return nil
}

func desktopCommand(goos string, n Notification) (string, []string) {
	title := "daybook: " + n.Title
	switch goos {
	case "linux":
		return "notify-send", []string{title, n.Body}
	case "darwin":
		script := fmt.Sprintf(`display notification "%s" with title "%s"`, escapeAppleScript(n.Body), escapeAppleScript(title))
		return "osascript", []string{"-e", script}
	default:
		return "", nil
	}
}

func escapeAppleScript(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}
