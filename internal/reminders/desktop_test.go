package reminders

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"testing"
)

func TestDesktopCommandPerPlatform(t *testing.T) {
	n := Notification{Title: `Pay "rent"`, Body: "due at 18:30"}

	name, args := desktopCommand("linux", n)
	if name != "notify-send" || len(args) != 2 || args[0] != `daybook: Pay "rent"` {
		t.Fatalf("unexpected linux command: %s %v", name, args)
	}

	name, args = desktopCommand("darwin", n)
	if name != "osascript" || len(args) != 2 || !strings.Contains(args[1], `Pay \"rent\"`) {
		t.Fatalf("unexpected darwin command: %s %v", name, args)
	}

	if name, _ := desktopCommand("plan9", n); name != "" {
		t.Fatalf("expected no command on unsupported platform, got %s", name)
	}
}

func TestDesktopNotifierWrapsRunError(t *testing.T) {
	if runtime.GOOS != "linux" && runtime.GOOS != "darwin" {
		t.Skip("no desktop command on this platform")
	}
	boom := errors.New("exit status 1")
	calls := 0
	d := DesktopNotifier{run: func(context.Context, string, ...string) error {
		calls++
		return boom
	}}
	err := d.Notify(Notification{Title: "x", Body: "y"})
	if !errors.Is(err, boom) || calls != 1 {
		t.Fatalf("expected wrapped run error, got %v after %d calls", err, calls)
	}
}
