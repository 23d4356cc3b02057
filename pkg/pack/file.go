package pack

import (
	"io"
	"os"
	"path/filepath"

	"github.com/terraweave/terraweave/pkg/asset"
	"github.com/terraweave/terraweave/pkg/errors"
)

// ReadAsset reads and decodes a single asset file.
func ReadAsset(path string) (*asset.Asset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeFileNotFound, "no such file: %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeIO, err, "read %s", path)
	}
	a, err := asset.Decode(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidAsset, err, "parse %s", path)
	}
	return a, nil
}

// WriteAsset writes a single asset file atomically. The parent directory
// must exist; use ExportAsset to create it.
func WriteAsset(path string, a *asset.Asset) error {
	data, err := asset.Encode(a)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode %s", path)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write %s", path)
	}
	if err := os.Rename(tmp, path); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "rename %s", path)
	}
	return nil
}

// ExportAsset writes an asset to an arbitrary path, creating parents.
func ExportAsset(path string, a *asset.Asset) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "create directory for %s", path)
	}
	return WriteAsset(path, a)
}

// CopyFile copies source to destination, creating parent directories.
func CopyFile(source, destination string) error {
	if err := os.MkdirAll(filepath.Dir(destination), 0755); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "create directory for %s", destination)
	}
	in, err := os.Open(source)
	if err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "open %s", source)
	}
	defer in.Close()
	out, err := os.Create(destination)
	if err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "create %s", destination)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return errors.Wrap(errors.ErrCodeIO, err, "copy to %s", destination)
	}
	if err := out.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "close %s", destination)
	}
	return nil
}
