package app

import (
	"context"
	"errors"
	"fmt"

	"paraeval/internal/domain"
)

// Page is a rendered menu page. Error carries an inline message when the
// page's asset folder is missing; the rest of the page still renders.
type Page struct {
	domain.MenuItem
	Assets []domain.Asset `json:"assets,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// AssetService resolves menu pages and their static images.
type AssetService struct {
	assets domain.AssetRepository
}

// NewAssetService creates an AssetService.
func NewAssetService(assets domain.AssetRepository) *AssetService {
	return &AssetService{assets: assets}
}

// Menu returns the sidebar items in display order.
func (s *AssetService) Menu() []domain.MenuItem {
	return domain.Menu
}

// Page returns the page for slug with its asset listing, if any.
func (s *AssetService) Page(ctx context.Context, slug string) (*Page, error) {
	item, ok := domain.LookupPage(slug)
	if !ok {
		return nil, fmt.Errorf("%q: %w", slug, domain.ErrUnknownPage)
	}
	p := &Page{MenuItem: item}
	if item.Kind != domain.PageGallery {
		return p, nil
	}
	assets, err := s.assets.ListAssets(ctx, item.Category)
	switch {
	case errors.Is(err, domain.ErrAssetDirNotFound):
		p.Error = "Images folder not found"
	case err != nil:
		return nil, err
	default:
		p.Assets = assets
	}
	return p, nil
}

// List returns the assets of one category.
func (s *AssetService) List(ctx context.Context, category domain.AssetCategory) ([]domain.Asset, error) {
	return s.assets.ListAssets(ctx, category)
}

// Path returns the file path of one asset.
func (s *AssetService) Path(ctx context.Context, category domain.AssetCategory, name string) (string, error) {
	return s.assets.AssetPath(ctx, category, name)
}
