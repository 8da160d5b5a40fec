package tessera

import (
	"context"

	"github.com/tessera-canvas/tessera/internal/models"
	"github.com/tessera-canvas/tessera/pkg/apperrors"
	"github.com/tessera-canvas/tessera/pkg/validation"
)

// findRegion resolves a region by ID or by coordinates. When addressed by
// area, the stored rectangle must match exactly; updating a differently
// shaped block through its corner would be ambiguous.
func (t *Tessera) findRegion(ctx context.Context, regionID string, area *validation.Rect) (*models.Region, error) {
	switch {
	case regionID != "":
		region, err := t.repo.GetRegion(ctx, regionID)
		if err != nil {
			return nil, err
		}
		if region == nil {
			return nil, apperrors.Newf(apperrors.CodeNotFound, "region %s not found", regionID)
		}
		return region, nil

	case area != nil:
		region, err := t.repo.GetRegionAt(ctx, area.X, area.Y)
		if err != nil {
			return nil, err
		}
		if region == nil || region.Width != area.Width || region.Height != area.Height {
			return nil, apperrors.Newf(apperrors.CodeNotFound,
				"no region %dx%d at (%d, %d)", area.Width, area.Height, area.X, area.Y)
		}
		return region, nil

	default:
		return nil, apperrors.Newf(apperrors.CodeInvalidInput, "either region_id or region coordinates are required")
	}
}
