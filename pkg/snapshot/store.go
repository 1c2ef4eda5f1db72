package snapshot

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/vango-dev/vtree/internal/errors"
)

// Store persists snapshots by name.
type Store interface {
	Save(ctx context.Context, s *Snapshot) error
	Load(ctx context.Context, name string) (*Snapshot, error)
	// List returns the stored names in sorted order.
	List(ctx context.Context) ([]string, error)
}

// ValidateName rejects names that cannot be used as a file or object key.
func ValidateName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return errors.New(errors.SnapshotStorage).WithDetailf("Invalid snapshot name %q.", name)
	}
	return nil
}

func notFound(name string) error {
	return errors.New(errors.SnapshotNotFound).WithDetailf("No snapshot named %q.", name)
}

// FileStore keeps one file per snapshot in a directory.
type FileStore struct {
	dir    string
	format Format
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a FileStore, ensuring the directory exists.
func NewFileStore(dir string, format Format) (*FileStore, error) {
	if _, err := ParseFormat(string(format)); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.New(errors.SnapshotStorage).Wrap(fmt.Errorf("mkdir %s: %w", dir, err))
	}
	return &FileStore{dir: dir, format: format}, nil
}

// Dir returns the directory snapshots are written to.
func (s *FileStore) Dir() string { return s.dir }

func (s *FileStore) path(name string) string {
	return filepath.Join(s.dir, name+s.format.Ext())
}

// Save writes the snapshot atomically: a temp file renamed into place.
func (s *FileStore) Save(ctx context.Context, snap *Snapshot) error {
	if err := ValidateName(snap.Name); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := snap.Encode(s.format)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, "."+snap.Name+"-*")
	if err != nil {
		return errors.New(errors.SnapshotStorage).Wrap(err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.New(errors.SnapshotStorage).Wrap(err)
	}
	if err := tmp.Close(); err != nil {
		return errors.New(errors.SnapshotStorage).Wrap(err)
	}
	if err := os.Rename(tmp.Name(), s.path(snap.Name)); err != nil {
		return errors.New(errors.SnapshotStorage).Wrap(err)
	}
	return nil
}

// Load reads the named snapshot.
func (s *FileStore) Load(ctx context.Context, name string) (*Snapshot, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := s.path(name)
	data, err := os.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return nil, notFound(name)
		}
		return nil, errors.New(errors.SnapshotStorage).Wrap(err)
	}
	snap, err := Decode(data, s.format)
	if err != nil {
		var e *errors.Error
		if stderrors.As(err, &e) {
			e.WithLocation(path, 0)
		}
		return nil, err
	}
	return snap, nil
}

// List returns the names of snapshots in the store's format.
func (s *FileStore) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errors.New(errors.SnapshotStorage).Wrap(err)
	}
	var names []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		if base, ok := strings.CutSuffix(name, s.format.Ext()); ok {
			names = append(names, base)
		}
	}
	slices.Sort(names)
	return names, nil
}
