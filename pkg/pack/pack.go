// Package pack loads and saves asset pack directories.
//
// A pack is a directory tree of JSON files. Files carrying a top-level
// discriminant decode into asset trees and are what the transformation
// passes operate on; files without one (generator settings, stats) are
// carried verbatim so a load/save cycle never rewrites them.
//
// All writes go through a temp file and rename, so an interrupted save
// leaves the previous file intact rather than a truncated one.
package pack

import (
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/terraweave/terraweave/pkg/asset"
	"github.com/terraweave/terraweave/pkg/errors"
)

// File is one JSON file in a pack. Exactly one of Asset and Raw is set:
// Asset for discriminated asset trees, Raw for everything else.
type File struct {
	Rel   string          // path relative to the pack root, slash-separated
	Asset *asset.Asset    // decoded tree, nil for untyped files
	Raw   json.RawMessage // original bytes for untyped files
}

// Pack is a loaded asset pack directory.
type Pack struct {
	Dir   string  // absolute pack root
	Files []*File // sorted by Rel
}

// Load opens a pack directory and parses every JSON file under it.
// A file that is not valid JSON fails the whole load; a valid JSON file
// without a discriminant is kept verbatim, not rejected.
func Load(dir string) (*Pack, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeFileNotFound, "not a directory: %s", dir)
		}
		return nil, errors.Wrap(errors.ErrCodeIO, err, "open pack %s", dir)
	}
	if !info.IsDir() {
		return nil, errors.New(errors.ErrCodeInvalidInput, "not a directory: %s", dir)
	}

	p := &Pack{Dir: dir}
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".json") {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		f, err := loadFile(path, filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		p.Files = append(p.Files, f)
		return nil
	})
	if err != nil {
		if _, ok := err.(*errors.Error); ok {
			return nil, err
		}
		return nil, errors.Wrap(errors.ErrCodeIO, err, "load pack %s", dir)
	}

	sort.Slice(p.Files, func(i, j int) bool { return p.Files[i].Rel < p.Files[j].Rel })
	return p, nil
}

func loadFile(path, rel string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "read %s", rel)
	}
	if !json.Valid(data) {
		return nil, errors.New(errors.ErrCodeInvalidAsset, "invalid JSON in %s", rel)
	}

	// Only discriminated objects decode as asset trees.
	var probe map[string]json.RawMessage
	if json.Unmarshal(data, &probe) == nil {
		if _, tagged := probe[asset.TypeKey]; tagged {
			a, err := asset.Decode(data)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidAsset, err, "parse %s", rel)
			}
			return &File{Rel: rel, Asset: a}, nil
		}
	}
	return &File{Rel: rel, Raw: json.RawMessage(data)}, nil
}

// File returns the pack file at the given relative path, or nil.
func (p *Pack) File(rel string) *File {
	rel = filepath.ToSlash(rel)
	for _, f := range p.Files {
		if f.Rel == rel {
			return f
		}
	}
	return nil
}

// Assets returns the discriminated files in Rel order.
func (p *Pack) Assets() []*File {
	var out []*File
	for _, f := range p.Files {
		if f.Asset != nil {
			out = append(out, f)
		}
	}
	return out
}

// Save writes every file back under the pack root atomically.
func (p *Pack) Save() error {
	for _, f := range p.Files {
		data, err := f.encode()
		if err != nil {
			return err
		}
		path := filepath.Join(p.Dir, filepath.FromSlash(f.Rel))
		if err := writeAtomic(path, data); err != nil {
			return errors.Wrap(errors.ErrCodeIO, err, "save %s", f.Rel)
		}
	}
	return nil
}

func (f *File) encode() ([]byte, error) {
	if f.Asset != nil {
		data, err := asset.Encode(f.Asset)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode %s", f.Rel)
		}
		return data, nil
	}
	return f.Raw, nil
}

// writeAtomic writes via a temp file in the target's extension slot and
// renames it into place, creating parent directories as needed.
func writeAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	tmp := strings.TrimSuffix(path, filepath.Ext(path)) + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
