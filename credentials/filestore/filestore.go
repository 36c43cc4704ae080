// Package filestore keeps credentials in a single JSON file, optionally sealed with a
// passphrase (scrypt key derivation + NaCl secretbox).
package filestore

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/jrsteele09/go-gym-client/credentials"
	gymerrors "github.com/jrsteele09/go-gym-client/internal/errors"
	"golang.org/x/crypto/nacl/secretbox"
	"golang.org/x/crypto/scrypt"
)

const (
	envelopeVersion = 1
	saltLength      = 16
	nonceLength     = 24
	keyLength       = 32

	scryptN = 1 << 15
	scryptR = 8
	scryptP = 1
)

var _ credentials.Repo = (*Store)(nil)

type envelope struct {
	Version    int    `json:"version"`
	Salt       []byte `json:"salt"`
	Nonce      []byte `json:"nonce"`
	Ciphertext []byte `json:"ciphertext"`
}

// Store is a credentials.Repo backed by one file. Writes replace the file atomically.
type Store struct {
	path       string
	passphrase []byte

	mu   sync.Mutex
	salt []byte
	key  *[keyLength]byte
}

type Option func(*Store)

// WithPassphrase encrypts the file at rest. An empty passphrase leaves it in plain JSON.
func WithPassphrase(passphrase string) Option {
	return func(s *Store) {
		if passphrase != "" {
			s.passphrase = []byte(passphrase)
		}
	}
}

// New returns a Store writing to path, creating its directory if needed
func New(path string, options ...Option) (*Store, error) {
	if path == "" {
		return nil, errors.New("[filestore.New] path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("[filestore.New] create directory: %w", err)
	}
	s := &Store{path: path}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

func (s *Store) Get(_ context.Context, key credentials.Key) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return "", err
	}
	v, ok := values[string(key)]
	if !ok {
		return "", gymerrors.ErrCredentialNotFound
	}
	return v, nil
}

func (s *Store) Set(_ context.Context, key credentials.Key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return err
	}
	values[string(key)] = value
	return s.save(values)
}

func (s *Store) Remove(_ context.Context, key credentials.Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := values[string(key)]; !ok {
		return nil
	}
	delete(values, string(key))
	return s.save(values)
}

func (s *Store) load() (map[string]string, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}

	if s.passphrase != nil {
		raw, err = s.open(raw)
		if err != nil {
			return nil, err
		}
	}

	values := make(map[string]string)
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", gymerrors.ErrCredentialCorrupt, s.path, err)
	}
	return values, nil
}

func (s *Store) save(values map[string]string) error {
	data, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}
	if s.passphrase != nil {
		if data, err = s.seal(data); err != nil {
			return err
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".credentials-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}

func (s *Store) seal(plaintext []byte) ([]byte, error) {
	if s.key == nil {
		salt := make([]byte, saltLength)
		if _, err := io.ReadFull(rand.Reader, salt); err != nil {
			return nil, fmt.Errorf("generate salt: %w", err)
		}
		if err := s.deriveKey(salt); err != nil {
			return nil, err
		}
	}

	var nonce [nonceLength]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	sealed := secretbox.Seal(nil, plaintext, &nonce, s.key)

	return json.Marshal(envelope{
		Version:    envelopeVersion,
		Salt:       s.salt,
		Nonce:      nonce[:],
		Ciphertext: sealed,
	})
}

func (s *Store) open(raw []byte) ([]byte, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil || env.Version != envelopeVersion || len(env.Nonce) != nonceLength {
		return nil, fmt.Errorf("%w: %s is not an encrypted credential file", gymerrors.ErrCredentialCorrupt, s.path)
	}
	if s.key == nil || string(s.salt) != string(env.Salt) {
		if err := s.deriveKey(env.Salt); err != nil {
			return nil, err
		}
	}

	var nonce [nonceLength]byte
	copy(nonce[:], env.Nonce)
	plaintext, ok := secretbox.Open(nil, env.Ciphertext, &nonce, s.key)
	if !ok {
		return nil, gymerrors.ErrBadPassphrase
	}
	return plaintext, nil
}

func (s *Store) deriveKey(salt []byte) error {
	derived, err := scrypt.Key(s.passphrase, salt, scryptN, scryptR, scryptP, keyLength)
	if err != nil {
		return fmt.Errorf("derive key: %w", err)
	}
	var key [keyLength]byte
	copy(key[:], derived)
	s.key = &key
	s.salt = append([]byte(nil), salt...)
	return nil
}
