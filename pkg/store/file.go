package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lemonberrylabs/unitconv/pkg/parser"
	"github.com/lemonberrylabs/unitconv/pkg/units"
)

// FilePersister keeps the catalog in a YAML or JSON document, chosen by the
// file extension.
type FilePersister struct {
	Path string
}

// NewFilePersister creates a persister for the document at path.
func NewFilePersister(path string) *FilePersister {
	return &FilePersister{Path: path}
}

// Load reads and parses the document.
func (p *FilePersister) Load(ctx context.Context) ([]units.Unit, error) {
	data, err := os.ReadFile(p.Path)
	if err != nil {
		return nil, err
	}
	us, err := parser.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.Path, err)
	}
	return us, nil
}

// Save writes the document atomically by renaming a temporary file over it.
func (p *FilePersister) Save(ctx context.Context, us []units.Unit) error {
	data, err := parser.Marshal(us, parser.FormatForPath(p.Path))
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(p.Path), filepath.Base(p.Path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), p.Path)
}

// PersisterFor picks a persister from the extension of path: .yaml, .yml and
// .json are documents, .db, .sqlite and .sqlite3 are SQLite databases.
func PersisterFor(path string) (Persister, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return NewFilePersister(path), nil
	case ".db", ".sqlite", ".sqlite3":
		p, err := OpenSQLite(path)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unsupported catalog file %q: want .yaml, .yml, .json, .db, .sqlite or .sqlite3", path)
	}
}
