// Package history records completed exercises and lists them grouped by day.
package history

import (
	"sort"
	"time"
)

const (
	RouteHistory = "/history"

	dayLayout  = "02.01.2006"
	hourLayout = "15:04"
)

// Record is one completed exercise
type Record struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"-"`
	ExerciseID int64     `json:"exercise_id,omitempty"`
	Name       string    `json:"name"`
	Group      string    `json:"group"`
	Hour       string    `json:"hour"`
	CreatedAt  time.Time `json:"created_at"`
}

// ByDay is a section of the history: the day's title and what was done that day
type ByDay struct {
	Title string   `json:"title"`
	Data  []Record `json:"data"`
}

// RegisterRequest is the body of POST /history
type RegisterRequest struct {
	ExerciseID int64 `json:"exercise_id"`
}

// GroupByDay sorts records newest first and splits them into one section per calendar
// day in loc. Hour is filled from CreatedAt.
func GroupByDay(records []Record, loc *time.Location) []ByDay {
	if loc == nil {
		loc = time.UTC
	}
	sorted := make([]Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	days := make([]ByDay, 0)
	for _, r := range sorted {
		local := r.CreatedAt.In(loc)
		r.Hour = local.Format(hourLayout)
		title := local.Format(dayLayout)
		if n := len(days); n > 0 && days[n-1].Title == title {
			days[n-1].Data = append(days[n-1].Data, r)
			continue
		}
		days = append(days, ByDay{Title: title, Data: []Record{r}})
	}
	return days
}
