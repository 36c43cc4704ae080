package credentialrepofake

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-gym-client/credentials"
	gymerrors "github.com/jrsteele09/go-gym-client/internal/errors"
)

var _ credentials.Repo = (*FakeCredentialRepo)(nil)

// FakeCredentialRepo is an in-memory Repo. FailOn makes a key's operations fail, which
// lets tests exercise storage errors.
type FakeCredentialRepo struct {
	values map[credentials.Key]string
	failOn map[credentials.Key]error
	lock   sync.RWMutex
}

func NewFakeCredentialRepo() *FakeCredentialRepo {
	return &FakeCredentialRepo{
		values: make(map[credentials.Key]string),
		failOn: make(map[credentials.Key]error),
	}
}

func (r *FakeCredentialRepo) Get(_ context.Context, key credentials.Key) (string, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	if err := r.failOn[key]; err != nil {
		return "", err
	}
	v, ok := r.values[key]
	if !ok {
		return "", gymerrors.ErrCredentialNotFound
	}
	return v, nil
}

func (r *FakeCredentialRepo) Set(_ context.Context, key credentials.Key, value string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if err := r.failOn[key]; err != nil {
		return err
	}
	r.values[key] = value
	return nil
}

func (r *FakeCredentialRepo) Remove(_ context.Context, key credentials.Key) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if err := r.failOn[key]; err != nil {
		return err
	}
	delete(r.values, key)
	return nil
}

func (r *FakeCredentialRepo) FailOn(key credentials.Key, err error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	if err == nil {
		delete(r.failOn, key)
		return
	}
	r.failOn[key] = err
}

// Value returns the raw stored value, for assertions
func (r *FakeCredentialRepo) Value(key credentials.Key) (string, bool) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	v, ok := r.values[key]
	return v, ok
}
