package chat

import (
	"time"

	"github.com/mokayaj857/vireya/internal/domain"
)

// UnknownDay keys messages whose timestamp cannot be parsed.
const UnknownDay = "unknown"

// DayGroup holds the messages of one calendar day.
type DayGroup struct {
	Date     string               `json:"date"`  // YYYY-MM-DD in the store's location
	Label    string               `json:"label"` // e.g. "Wed, 01 May 2024"
	Messages []domain.ChatMessage `json:"messages"`
}

// GroupByDay buckets msgs by calendar date in loc. Groups appear in order of
// each day's first message and messages keep their log order.
func GroupByDay(msgs []domain.ChatMessage, loc *time.Location) []DayGroup {
	if loc == nil {
		loc = time.UTC
	}
	var out []DayGroup
	index := map[string]int{}
	for _, m := range msgs {
		key, label := UnknownDay, "Unknown date"
		if t, err := m.Time(); err == nil {
			lt := t.In(loc)
			key = lt.Format("2006-01-02")
			label = lt.Format("Mon, 02 Jan 2006")
		}
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, DayGroup{Date: key, Label: label})
		}
		out[i].Messages = append(out[i].Messages, m)
	}
	return out
}
