package media

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/brocante/brocante-api/internal/model"
)

var ErrInvalidFolder = errors.New("invalid media folder")

// LocalUploader stores files on the local filesystem under a root directory.
type LocalUploader struct {
	root    string
	baseURL string
}

// NewLocalUploader creates the root directory if needed. baseURL is the URL
// prefix the root directory is served under.
func NewLocalUploader(root, baseURL string) (*LocalUploader, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating media directory: %w", err)
	}
	return &LocalUploader{root: root, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

// Upload writes f under folder with a generated name.
func (u *LocalUploader) Upload(ctx context.Context, f File, folder string) (model.Asset, error) {
	dir, err := u.resolve(folder)
	if err != nil {
		return model.Asset{}, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return model.Asset{}, fmt.Errorf("creating folder %s: %w", folder, err)
	}

	ct := f.contentType()
	ext := f.extension(ct)
	name := uuid.NewString() + ext

	if err := os.WriteFile(filepath.Join(dir, name), f.Data, 0o644); err != nil {
		return model.Asset{}, fmt.Errorf("saving file: %w", err)
	}

	key := path.Join(folder, name)
	slog.Debug("media saved", "path", key, "bytes", len(f.Data))

	return model.Asset{
		PublicID:    key,
		Folder:      folder,
		URL:         u.baseURL + "/" + key,
		Format:      strings.TrimPrefix(ext, "."),
		ContentType: ct,
		Bytes:       int64(len(f.Data)),
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// DeleteByPrefix removes every file under the prefix folder, leaving directories in place.
func (u *LocalUploader) DeleteByPrefix(ctx context.Context, prefix string) error {
	dir, err := u.resolve(prefix)
	if err != nil {
		return err
	}

	err = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		return os.Remove(p)
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// DeleteFolder removes the prefix folder and its now-empty subdirectories.
func (u *LocalUploader) DeleteFolder(ctx context.Context, prefix string) error {
	dir, err := u.resolve(prefix)
	if err != nil {
		return err
	}
	return os.RemoveAll(dir)
}

func (u *LocalUploader) resolve(folder string) (string, error) {
	clean := path.Clean("/" + folder)
	if clean == "/" {
		return "", ErrInvalidFolder
	}
	return filepath.Join(u.root, filepath.FromSlash(clean)), nil
}
