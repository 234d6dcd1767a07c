package update

import (
	"fmt"

	"github.com/sandeepkv93/daybook/internal/model"
	"github.com/sandeepkv93/daybook/internal/views"
)

const upcomingCount = 3

// upcoming lists the occurrences a repeating task will generate after its
// own due time.
func upcoming(task model.Task) []string {
	if task.Repeat == nil {
		return nil
	}
	next, err := task.Repeat.Preview(task.DueAt, task.DueAt, upcomingCount)
	if err != nil {
		return []string{"(" + err.Error() + ")"}
	}
	out := make([]string, 0, len(next))
	for _, t := range next {
		out = append(out, t.Format("Mon Jan 2 15:04"))
	}
	return out
}

func lineage(task model.Task) string {
	if task.RefTaskID > 0 {
		return fmt.Sprintf("occurrence of task #%d", task.RefTaskID)
	}
	return ""
}

// syncDetail refreshes the detail viewport for the current selection.
func (m *Model) syncDetail() {
	task, ok := m.SelectedTask()
	if !ok {
		m.detail.SetContent(views.RenderDetailPanel(views.DetailPanelData{}))
		return
	}
	m.detail.SetContent(views.RenderDetailPanel(views.DetailPanelData{
		Name:            task.Name,
		Due:             task.DueAt.Format("Mon Jan 2 15:04"),
		Repeat:          task.RepeatString(),
		Remarks:         task.Remarks,
		Lineage:         lineage(task),
		Upcoming:        upcoming(task),
		DescriptionView: views.RenderMarkdown(task.Description(), m.detail.Width-2),
	}))
	m.detail.GotoTop()
}
