package history

// Repo stores completed exercises for the stub API server
type Repo interface {
	Add(record *Record) error
	ListByUser(userID int64) ([]Record, error)
}
