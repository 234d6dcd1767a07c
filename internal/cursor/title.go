package cursor

import (
	"time"

	"github.com/sandeepkv93/daybook/internal/model"
)

const dateLayout = "Mon Jan 2, 2006"

// Title labels the loaded day relative to now's calendar day.
func Title(loadedAt, now time.Time) string {
	loadedAt = loadedAt.In(now.Location())
	day := model.DayKeyOf(loadedAt)
	today := model.DayKeyOf(now)
	switch day {
	case today:
		return "Today (" + now.Format(dateLayout) + ")"
	case today.AddDays(-1):
		return "Yesterday (" + model.AddDays(now, -1).Format(dateLayout) + ")"
	case today.AddDays(1):
		return "Tomorrow (" + model.AddDays(now, 1).Format(dateLayout) + ")"
	default:
		return loadedAt.Format(dateLayout)
	}
}
