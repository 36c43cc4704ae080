package exercises

// Repo serves the catalogue for the stub API server
type Repo interface {
	Groups() ([]string, error)
	ByGroup(group string) ([]Exercise, error)
	Get(id int64) (*Exercise, error)
	Upsert(e *Exercise) error
}
