package views

import (
	"strings"
	"testing"
)

func TestRenderDayPanelMarksSelectionAndUrgency(t *testing.T) {
	out := RenderDayPanel(DayPanelData{
		Title: "Today (Sun Mar 10, 2024)",
		Rows: []TaskRow{
			{Name: "Standup", Due: "09:00", Repeat: "daily", Done: true},
			{Name: "File report", Due: "10:00", Overdue: true},
			{Name: "Lunch", Due: "12:30", DueSoon: true},
		},
		Selected: 1,
	})
	if !strings.Contains(out, "Today (Sun Mar 10, 2024)") {
		t.Fatalf("missing title: %s", out)
	}
	if !strings.Contains(out, "(daily)") || !strings.Contains(out, "[x]") {
		t.Fatalf("missing done/repeat markers: %s", out)
	}
	if !strings.Contains(out, "[LATE]") || !strings.Contains(out, "[SOON]") {
		t.Fatalf("missing urgency badges: %s", out)
	}
	if !strings.Contains(out, ">") {
		t.Fatalf("missing selection cursor: %s", out)
	}
}

func TestRenderDayPanelEmptyAndError(t *testing.T) {
	out := RenderDayPanel(DayPanelData{Title: "Fri Mar 8, 2024", Err: "store down"})
	if !strings.Contains(out, "nothing scheduled") || !strings.Contains(out, "store down") {
		t.Fatalf("unexpected empty panel: %s", out)
	}
}

func TestRenderDetailPanel(t *testing.T) {
	if out := RenderDetailPanel(DetailPanelData{}); !strings.Contains(out, "no selection") {
		t.Fatalf("expected placeholder, got %s", out)
	}
	out := RenderDetailPanel(DetailPanelData{
		Name:     "Standup",
		Due:      "Sun Mar 10 09:00",
		Repeat:   "daily",
		Remarks:  "Marked done",
		Upcoming: []string{"Mon Mar 11 09:00"},
	})
	for _, want := range []string{"name: Standup", "repeat: daily", "remarks: Marked done", "- Mon Mar 11 09:00"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in %s", want, out)
		}
	}
}

func TestRenderNotificationsAndPrompt(t *testing.T) {
	if RenderNotifications(nil) != "" || RenderPrompt(PromptData{}) != "" || RenderCommandPalette(false, "x") != "" {
		t.Fatal("empty inputs should render nothing")
	}
	out := RenderNotifications([]NotificationData{{Kind: "soft", Title: "Lunch", Body: "due at 12:30", At: "12:15"}})
	if !strings.Contains(out, "[SOFT] 12:15 Lunch: due at 12:30") {
		t.Fatalf("unexpected notifications: %s", out)
	}
	prompt := RenderPrompt(PromptData{Question: "Carry 2 pending tasks to today?", Hint: "[y] yes [n] no"})
	if !strings.Contains(prompt, "Carry 2 pending tasks") {
		t.Fatalf("unexpected prompt: %s", prompt)
	}
}

func TestRenderMarkdownFallsBackOnEmpty(t *testing.T) {
	if RenderMarkdown("   ", 40) != "" {
		t.Fatal("blank description should render empty")
	}
	if out := RenderMarkdown("Quarterly report", 40); !strings.Contains(out, "Quarterly") {
		t.Fatalf("unexpected markdown output: %q", out)
	}
}
