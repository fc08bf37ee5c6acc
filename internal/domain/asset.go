package domain

import "context"

// AssetCategory groups the static images shown on informational pages.
type AssetCategory string

const (
	AssetMetrics AssetCategory = "metrics"
	AssetModels  AssetCategory = "models"
	AssetResults AssetCategory = "results"
	AssetAbout   AssetCategory = "about"
)

// AssetCategories lists every category in menu order.
var AssetCategories = []AssetCategory{AssetMetrics, AssetModels, AssetResults, AssetAbout}

// Asset is a single displayable file.
type Asset struct {
	Category AssetCategory `json:"category"`
	Name     string        `json:"name"`
	Size     int64         `json:"size"`
}

// AssetRepository is the port for static asset directories.
type AssetRepository interface {
	ListAssets(ctx context.Context, category AssetCategory) ([]Asset, error)
	AssetPath(ctx context.Context, category AssetCategory, name string) (string, error)
}
