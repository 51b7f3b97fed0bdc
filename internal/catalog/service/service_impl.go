package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/kasira/internal/catalog/domain"
	"github.com/smallbiznis/kasira/pkg/db/pagination"
	"github.com/smallbiznis/kasira/pkg/money"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
	Redis *redis.Client `optional:"true"`
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
	cache *productCache
}

func New(p Params) domain.Service {
	s := &Service{
		db:    p.DB,
		log:   p.Log.Named("catalog.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
	if p.Redis != nil {
		s.cache = newProductCache(p.Redis)
	}
	return s
}

func (s *Service) Create(ctx context.Context, req domain.CreateProductRequest) (domain.Product, error) {
	sku := strings.TrimSpace(req.SKU)
	if sku == "" {
		return domain.Product{}, domain.ErrInvalidSKU
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Product{}, domain.ErrInvalidName
	}

	price, err := money.ParseNonNegative(req.Price)
	if err != nil {
		return domain.Product{}, domain.ErrInvalidPrice
	}

	existing, err := s.repo.FindBySKU(ctx, s.db, sku)
	if err != nil {
		return domain.Product{}, err
	}
	if existing != nil {
		return domain.Product{}, domain.ErrInvalidSKU
	}

	now := time.Now().UTC()
	product := domain.Product{
		ID:         s.genID.Generate(),
		SKU:        sku,
		Name:       name,
		PriceCents: price.Cents(),
		Active:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Insert(ctx, s.db, &product); err != nil {
		return domain.Product{}, err
	}
	return product, nil
}

// GetByID serves the price-snapshot lookup used when a line is added to
// a cart. Cache failures fall back to the database; a stale or down
// redis never blocks a sale.
func (s *Service) GetByID(ctx context.Context, req domain.GetProductRequest) (domain.Product, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Product{}, err
	}

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, id)
		if err == nil {
			return *cached, nil
		}
		if !errors.Is(err, errCacheMiss) {
			s.log.Warn("product cache read failed", zap.Error(err))
		}
	}

	product, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Product{}, err
	}
	if product == nil {
		return domain.Product{}, domain.ErrNotFound
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, product); err != nil {
			s.log.Warn("product cache write failed", zap.Error(err))
		}
	}
	return *product, nil
}

func (s *Service) List(ctx context.Context, req domain.ListProductRequest) (domain.ListProductResponse, error) {
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 25
	}

	items, err := s.repo.List(ctx, s.db, domain.ListProductFilter{
		Name:       strings.TrimSpace(req.Name),
		ActiveOnly: req.ActiveOnly,
	}, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListProductResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(product *domain.Product) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        product.ID.String(),
			CreatedAt: product.CreatedAt.Format(time.RFC3339Nano),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	products := make([]domain.Product, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		products = append(products, *item)
	}

	resp := domain.ListProductResponse{Products: products}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
