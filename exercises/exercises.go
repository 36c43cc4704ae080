// Package exercises is the exercise catalogue: muscle groups, the exercises in each group
// and where their media is served.
package exercises

import (
	"strconv"
	"strings"
	"time"
)

const (
	RouteGroups           = "/groups"
	RouteExercisesByGroup = "/exercises/bygroup/"
	RouteExercises        = "/exercises/"

	RouteThumb = "/exercise/thumb/"
	RouteDemo  = "/exercise/demo/"
)

// Exercise is one entry of the catalogue
type Exercise struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Series      int       `json:"series"`
	Repetitions string    `json:"repetitions"`
	Group       string    `json:"group"`
	Thumb       string    `json:"thumb"`
	Demo        string    `json:"demo"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Catalog is every group with its exercises, in the order the API lists the groups
type Catalog struct {
	Groups    []string
	Exercises map[string][]Exercise
}

// Count returns the number of exercises across all groups
func (c *Catalog) Count() int {
	n := 0
	for _, list := range c.Exercises {
		n += len(list)
	}
	return n
}

// ThumbURL returns where the exercise thumbnail is served
func ThumbURL(baseURL string, e *Exercise) string {
	return mediaURL(baseURL, RouteThumb, e.Thumb)
}

// DemoURL returns where the exercise demonstration animation is served
func DemoURL(baseURL string, e *Exercise) string {
	return mediaURL(baseURL, RouteDemo, e.Demo)
}

func mediaURL(baseURL, route, file string) string {
	if file == "" {
		return ""
	}
	return strings.TrimRight(baseURL, "/") + route + file
}

func byIDPath(id int64) string {
	return RouteExercises + strconv.FormatInt(id, 10)
}
