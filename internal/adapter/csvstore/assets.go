package csvstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"paraeval/internal/domain"
)

// AssetStore lists and resolves the image files of each asset category.
type AssetStore struct {
	dirs map[domain.AssetCategory]string
}

var _ domain.AssetRepository = (*AssetStore)(nil)

// NewAssetStore maps each category to its directory.
func NewAssetStore(dirs map[domain.AssetCategory]string) *AssetStore {
	return &AssetStore{dirs: dirs}
}

// ListAssets returns the visible regular files of category, ordered by name.
func (s *AssetStore) ListAssets(ctx context.Context, category domain.AssetCategory) ([]domain.Asset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dir, ok := s.dirs[category]
	if !ok {
		return nil, domain.ErrUnknownCategory
	}
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", dir, domain.ErrAssetDirNotFound)
	}
	if err != nil {
		return nil, err
	}

	out := make([]domain.Asset, 0, len(entries))
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") || !e.Type().IsRegular() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, domain.Asset{Category: category, Name: e.Name(), Size: info.Size()})
	}
	return out, nil
}

// AssetPath resolves a single file name inside category's directory.
func (s *AssetStore) AssetPath(ctx context.Context, category domain.AssetCategory, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	dir, ok := s.dirs[category]
	if !ok {
		return "", domain.ErrUnknownCategory
	}
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", domain.ErrAssetNotFound
	}
	path := filepath.Join(dir, name)
	fi, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && !fi.Mode().IsRegular()) {
		return "", domain.ErrAssetNotFound
	}
	if err != nil {
		return "", err
	}
	return path, nil
}
