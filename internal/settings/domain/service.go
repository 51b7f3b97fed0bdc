package domain

import (
	"context"
	"errors"
)

type UpdateSettingsRequest struct {
	TaxRate       *float64
	PointsPerUnit *int64
}

type Service interface {
	// Get returns the branch settings, falling back to the configured
	// defaults when no row exists yet. The fallback is explicit and
	// logged; it is never a silent zero.
	Get(ctx context.Context) (RegisterSettings, error)
	Update(ctx context.Context, req UpdateSettingsRequest) (RegisterSettings, error)
}

var (
	ErrInvalidTaxRate     = errors.New("invalid_tax_rate")
	ErrInvalidPointsRatio = errors.New("invalid_points_ratio")
)
