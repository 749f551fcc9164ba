package store

import (
	"context"
	"errors"
	"strings"

	"github.com/agrichain/pricecast/pricemodel"
)

// ErrNotFound is returned by Load when no model exists for the crop.
var ErrNotFound = errors.New("model not found")

// Store saves and loads trained models by crop name. Saving a crop that
// already has a model replaces it.
type Store interface {
	Save(ctx context.Context, m *pricemodel.TrainedModel) error
	Load(ctx context.Context, crop string) (*pricemodel.TrainedModel, error)
}

// Key derives the storage key of a crop: lower case with spaces replaced by
// underscores, so "Sweet Corn" becomes "sweet_corn".
func Key(crop string) string {
	return strings.ReplaceAll(strings.ToLower(crop), " ", "_")
}

// ArtifactKey is the artifact name of a crop, for example "sarima_sweet_corn_model".
func ArtifactKey(crop string) string {
	return "sarima_" + Key(crop) + "_model"
}
