package fakehistoryrepo

import (
	"sync"
	"time"

	"github.com/jrsteele09/go-gym-client/history"
)

var _ history.Repo = (*FakeHistoryRepo)(nil)

type FakeHistoryRepo struct {
	records []history.Record
	nextID  int64
	lock    sync.RWMutex
}

func NewFakeHistoryRepo() *FakeHistoryRepo {
	return &FakeHistoryRepo{}
}

func (r *FakeHistoryRepo) Add(record *history.Record) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.nextID++
	record.ID = r.nextID
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	r.records = append(r.records, *record)
	return nil
}

func (r *FakeHistoryRepo) ListByUser(userID int64) ([]history.Record, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	list := make([]history.Record, 0)
	for _, rec := range r.records {
		if rec.UserID == userID {
			list = append(list, rec)
		}
	}
	return list, nil
}
