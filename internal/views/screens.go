package views

import (
	"fmt"
	"strings"
)

type TaskRow struct {
	Name    string
	Due     string
	Repeat  string
	Done    bool
	Overdue bool
	DueSoon bool
}

type DayPanelData struct {
	Title    string
	Rows     []TaskRow
	Selected int
	Busy     string
	Err      string
}

type DetailPanelData struct {
	Name            string
	Due             string
	Repeat          string
	Remarks         string
	Lineage         string
	Upcoming        []string
	DescriptionView string
}

type NotificationData struct {
	Kind  string
	Title string
	Body  string
	At    string
}

type PromptData struct {
	Question  string
	InputView string
	Hint      string
}

type HelpPanelData struct {
	Bindings []string
	HelpView string
}

func RenderDayPanel(data DayPanelData) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(data.Title))
	if data.Busy != "" {
		b.WriteString(" " + data.Busy)
	}
	b.WriteString("\n")
	if data.Err != "" {
		b.WriteString(errorStyle.Render("load failed: "+data.Err) + "\n")
	}
	if len(data.Rows) == 0 {
		b.WriteString("  (nothing scheduled)")
		return b.String()
	}
	for i, row := range data.Rows {
		b.WriteString(renderRow(i, row, i == data.Selected))
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func renderRow(i int, row TaskRow, selected bool) string {
	cursor := " "
	if selected {
		cursor = ">"
	}
	check := "[ ]"
	if row.Done {
		check = "[x]"
	}
	line := fmt.Sprintf("%2d. %s %s %s", i+1, check, row.Due, row.Name)
	if row.Repeat != "" {
		line += " (" + row.Repeat + ")"
	}
	if badge := urgencyBadge(row); badge != "" {
		line += " " + badge
	}

	switch {
	case row.Done:
		line = doneStyle.Render(line)
	case row.Overdue:
		line = lateStyle.Render(line)
	case row.DueSoon:
		line = soonStyle.Render(line)
	}
	if selected {
		return cursorStyle.Render(cursor) + line
	}
	return cursor + line
}

func urgencyBadge(row TaskRow) string {
	if row.Done {
		return ""
	}
	if row.Overdue {
		return "[LATE]"
	}
	if row.DueSoon {
		return "[SOON]"
	}
	return ""
}

func RenderDetailPanel(data DetailPanelData) string {
	if strings.TrimSpace(data.Name) == "" {
		return "details:\n(no selection)"
	}
	var b strings.Builder
	b.WriteString("details:\n")
	b.WriteString(fmt.Sprintf("name: %s\n", data.Name))
	b.WriteString(fmt.Sprintf("due: %s\n", data.Due))
	b.WriteString(fmt.Sprintf("repeat: %s\n", data.Repeat))
	if data.Lineage != "" {
		b.WriteString(data.Lineage + "\n")
	}
	if data.Remarks != "" {
		b.WriteString(fmt.Sprintf("remarks: %s\n", data.Remarks))
	}
	if len(data.Upcoming) > 0 {
		b.WriteString("next:\n")
		for _, item := range data.Upcoming {
			b.WriteString("- " + item + "\n")
		}
	}
	if data.DescriptionView != "" {
		b.WriteString("\n" + data.DescriptionView)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func RenderNotifications(items []NotificationData) string {
	if len(items) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("notifications (%d, [n] dismiss):\n", len(items)))
	for _, n := range items {
		b.WriteString(fmt.Sprintf("[%s] %s %s: %s\n", strings.ToUpper(n.Kind), n.At, n.Title, n.Body))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func RenderPrompt(data PromptData) string {
	if data.Question == "" {
		return ""
	}
	lines := []string{data.Question}
	if data.InputView != "" {
		lines = append(lines, data.InputView)
	}
	if data.Hint != "" {
		lines = append(lines, footerStyle.Render(data.Hint))
	}
	return strings.Join(lines, "\n")
}

func RenderCommandPalette(active bool, inputView string) string {
	if !active {
		return ""
	}
	return "command:\n" + inputView
}

func RenderHelpPanel(data HelpPanelData) string {
	return fmt.Sprintf("help:\n%s\n%s",
		strings.Join(data.Bindings, "\n"),
		data.HelpView,
	)
}
