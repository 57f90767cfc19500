package catalog

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-featuregate/gate"
	"github.com/goliatone/go-featuregate/gate/guard"
)

const (
	// FeatureCatalogPromoteFeatured gates flipping the featured flag.
	FeatureCatalogPromoteFeatured = "catalog.promote.featured"
	// FeatureCatalogPromoteEditorsPick gates flipping the editor's pick flag.
	FeatureCatalogPromoteEditorsPick = "catalog.promote.editors_pick"
)

func normalizePromotionGateError(err error) error {
	if err == nil {
		return nil
	}

	var richErr *errors.Error
	if errors.As(err, &richErr) {
		return err
	}

	return errors.Wrap(err, errors.CategoryAuthz, "Promotion gate check failed").
		WithCode(errors.CodeForbidden)
}

// requirePromotionGate refuses the operation when the feature is disabled. A
// nil gate means promotion is ungated.
func requirePromotionGate(ctx context.Context, featureGate gate.FeatureGate, key string) error {
	if featureGate == nil {
		return nil
	}
	return guard.Require(ctx, featureGate, key,
		guard.WithDisabledError(ErrPromotionDisabled),
		guard.WithErrorMapper(normalizePromotionGateError),
	)
}
