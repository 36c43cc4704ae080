package fakeexerciserepo

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jrsteele09/go-gym-client/exercises"
	gymerrors "github.com/jrsteele09/go-gym-client/internal/errors"
)

var _ exercises.Repo = (*FakeExerciseRepo)(nil)

type FakeExerciseRepo struct {
	exercises map[int64]*exercises.Exercise
	nextID    int64
	lock      sync.RWMutex
}

func NewFakeExerciseRepo() *FakeExerciseRepo {
	return &FakeExerciseRepo{
		exercises: make(map[int64]*exercises.Exercise),
	}
}

// NewSeededExerciseRepo returns a repo holding a small catalogue across several groups
func NewSeededExerciseRepo() *FakeExerciseRepo {
	r := NewFakeExerciseRepo()
	for _, e := range seed {
		_ = r.Upsert(&e)
	}
	return r
}

var seed = []exercises.Exercise{
	{Name: "Supino inclinado com barra", Series: 4, Repetitions: "12", Group: "peito", Thumb: "supino_inclinado_com_barra.png", Demo: "supino_inclinado_com_barra.gif"},
	{Name: "Crucifixo reto", Series: 3, Repetitions: "12", Group: "peito", Thumb: "crucifixo_reto.png", Demo: "crucifixo_reto.gif"},
	{Name: "Puxada frontal", Series: 3, Repetitions: "12", Group: "costas", Thumb: "puxada_frontal.png", Demo: "puxada_frontal.gif"},
	{Name: "Remada curvada", Series: 3, Repetitions: "12", Group: "costas", Thumb: "remada_curvada.png", Demo: "remada_curvada.gif"},
	{Name: "Elevação lateral", Series: 3, Repetitions: "10", Group: "ombro", Thumb: "elevacao_lateral.png", Demo: "elevacao_lateral.gif"},
	{Name: "Rosca alternada", Series: 3, Repetitions: "12", Group: "bíceps", Thumb: "rosca_alternada.png", Demo: "rosca_alternada.gif"},
	{Name: "Tríceps pulley", Series: 3, Repetitions: "12", Group: "tríceps", Thumb: "triceps_pulley.png", Demo: "triceps_pulley.gif"},
	{Name: "Leg press 45", Series: 4, Repetitions: "10", Group: "pernas", Thumb: "leg_press.png", Demo: "leg_press.gif"},
}

func (r *FakeExerciseRepo) Groups() ([]string, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	seen := make(map[string]bool)
	groups := make([]string, 0)
	for _, e := range r.exercises {
		if !seen[e.Group] {
			seen[e.Group] = true
			groups = append(groups, e.Group)
		}
	}
	sort.Strings(groups)
	return groups, nil
}

// ByGroup matches the group case-insensitively and lists by name
func (r *FakeExerciseRepo) ByGroup(group string) ([]exercises.Exercise, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	list := make([]exercises.Exercise, 0)
	for _, e := range r.exercises {
		if strings.EqualFold(e.Group, group) {
			list = append(list, *e)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Name < list[j].Name
	})
	return list, nil
}

func (r *FakeExerciseRepo) Get(id int64) (*exercises.Exercise, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	e, ok := r.exercises[id]
	if !ok {
		return nil, gymerrors.ErrNotFound
	}
	found := *e
	return &found, nil
}

func (r *FakeExerciseRepo) Upsert(e *exercises.Exercise) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	now := time.Now().UTC()
	if e.ID == 0 {
		r.nextID++
		e.ID = r.nextID
	} else if e.ID > r.nextID {
		r.nextID = e.ID
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = now

	stored := *e
	r.exercises[e.ID] = &stored
	return nil
}
