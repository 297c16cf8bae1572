package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Store persists attachment payloads outside the database. Save returns the
// locator recorded on the attachment row.
type Store interface {
	Save(key string, src io.Reader) (string, int64, error)
	Open(locator string) (io.ReadCloser, error)
	Remove(locator string) error
}

type localStore struct {
	root string
}

// NewLocalStore keeps payloads on local disk under root.
func NewLocalStore(root string) (Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", root, err)
	}
	return &localStore{root: root}, nil
}

func (s *localStore) Save(key string, src io.Reader) (string, int64, error) {
	path := filepath.Join(s.root, key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", 0, fmt.Errorf("create attachment dir: %w", err)
	}

	dst, err := os.Create(path)
	if err != nil {
		return "", 0, fmt.Errorf("create attachment file: %w", err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, src)
	if err != nil {
		os.Remove(path)
		return "", 0, fmt.Errorf("write attachment payload: %w", err)
	}

	return path, written, nil
}

func (s *localStore) Open(locator string) (io.ReadCloser, error) {
	return os.Open(locator)
}

func (s *localStore) Remove(locator string) error {
	err := os.Remove(locator)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
