package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/kasira/internal/config"
	"github.com/smallbiznis/kasira/internal/settings/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Cfg   config.Config
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	cfg   config.Config
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("settings.service"),
		genID: p.GenID,
		cfg:   p.Cfg,
	}
}

func (s *Service) Get(ctx context.Context) (domain.RegisterSettings, error) {
	var settings domain.RegisterSettings
	err := s.db.WithContext(ctx).
		Where("branch_id = ?", s.cfg.BranchID).
		First(&settings).Error
	if err == nil {
		return settings, nil
	}
	if err != gorm.ErrRecordNotFound {
		return domain.RegisterSettings{}, err
	}

	// No settings row yet: serve the configured defaults, loudly.
	s.log.Warn("no register settings for branch, using configured defaults",
		zap.Int64("branch_id", s.cfg.BranchID),
		zap.Float64("tax_rate", s.cfg.DefaultTaxRate),
		zap.Int64("points_per_unit", s.cfg.DefaultPointsPerUnit),
	)
	return domain.RegisterSettings{
		BranchID:      snowflake.ID(s.cfg.BranchID),
		TaxRate:       s.cfg.DefaultTaxRate,
		PointsPerUnit: s.cfg.DefaultPointsPerUnit,
	}, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateSettingsRequest) (domain.RegisterSettings, error) {
	current, err := s.Get(ctx)
	if err != nil {
		return domain.RegisterSettings{}, err
	}

	if req.TaxRate != nil {
		current.TaxRate = *req.TaxRate
	}
	if req.PointsPerUnit != nil {
		current.PointsPerUnit = *req.PointsPerUnit
	}
	if err := current.Validate(); err != nil {
		return domain.RegisterSettings{}, err
	}

	now := time.Now().UTC()
	current.UpdatedAt = now
	if current.ID == 0 {
		current.ID = s.genID.Generate()
		current.CreatedAt = now
		if err := s.db.WithContext(ctx).Create(&current).Error; err != nil {
			return domain.RegisterSettings{}, err
		}
		return current, nil
	}

	err = s.db.WithContext(ctx).
		Model(&domain.RegisterSettings{}).
		Where("id = ?", current.ID).
		Updates(map[string]any{
			"tax_rate":        current.TaxRate,
			"points_per_unit": current.PointsPerUnit,
			"updated_at":      current.UpdatedAt,
		}).Error
	if err != nil {
		return domain.RegisterSettings{}, err
	}
	return current, nil
}
