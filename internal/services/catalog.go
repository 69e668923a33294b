package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"affilink/internal/models"
	"affilink/internal/repository"

	"github.com/redis/go-redis/v9"
)

const productsCacheKey = "products:all"

var ErrInvalidProduct = errors.New("invalid product")

type CreateProductDTO struct {
	Name         string
	Category     string
	Description  string
	ImageURL     string
	AffiliateURL string
	ActorEmail   string // For Audit Log
	IPAddress    string // For Audit Log
}

// CatalogService serves the public product listing. The listing is cached in
// redis when a client is configured.
type CatalogService struct {
	repo               *repository.CatalogRepository
	rdb                *redis.Client
	auditService       *AuditService
	logger             *slog.Logger
	defaultDescription string
	cacheTTL           time.Duration
}

func NewCatalogService(
	repo *repository.CatalogRepository,
	rdb *redis.Client,
	auditService *AuditService,
	logger *slog.Logger,
	defaultDescription string,
	cacheTTL time.Duration,
) *CatalogService {
	return &CatalogService{
		repo:               repo,
		rdb:                rdb,
		auditService:       auditService,
		logger:             logger,
		defaultDescription: defaultDescription,
		cacheTTL:           cacheTTL,
	}
}

// ListProducts returns every product, newest first, with empty descriptions
// replaced by the default one.
func (s *CatalogService) ListProducts(ctx context.Context) ([]models.Product, error) {
	if products, ok := s.cachedProducts(ctx); ok {
		return products, nil
	}

	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	for i := range products {
		s.applyDefaultDescription(&products[i])
	}

	s.cacheProducts(ctx, products)
	return products, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	product, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	s.applyDefaultDescription(product)
	return product, nil
}

func (s *CatalogService) applyDefaultDescription(p *models.Product) {
	if strings.TrimSpace(p.Description) == "" {
		p.Description = s.defaultDescription
	}
}

func (s *CatalogService) CreateProduct(ctx context.Context, dto CreateProductDTO) (*models.Product, error) {
	if strings.TrimSpace(dto.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidProduct)
	}
	if !isHTTPURL(dto.AffiliateURL) {
		return nil, fmt.Errorf("%w: affiliate_url must be an http(s) URL", ErrInvalidProduct)
	}
	if dto.ImageURL != "" && !isHTTPURL(dto.ImageURL) {
		return nil, fmt.Errorf("%w: image_url must be an http(s) URL", ErrInvalidProduct)
	}

	product := models.Product{
		Name:         strings.TrimSpace(dto.Name),
		Category:     strings.TrimSpace(dto.Category),
		Description:  strings.TrimSpace(dto.Description),
		ImageURL:     dto.ImageURL,
		AffiliateURL: dto.AffiliateURL,
		CreatedAt:    time.Now(),
	}
	if err := s.repo.CreateProduct(ctx, &product); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	s.auditService.LogAction(dto.ActorEmail, ActionCreateProduct, strconv.FormatUint(uint64(product.ID), 10), map[string]string{
		"name":          product.Name,
		"affiliate_url": product.AffiliateURL,
	}, dto.IPAddress)

	return &product, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uint, actorEmail, ip string) error {
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	s.auditService.LogAction(actorEmail, ActionDeleteProduct, strconv.FormatUint(uint64(id), 10), nil, ip)
	return nil
}

func (s *CatalogService) cachedProducts(ctx context.Context) ([]models.Product, bool) {
	if s.rdb == nil {
		return nil, false
	}
	val, err := s.rdb.Get(ctx, productsCacheKey).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Debug("Product cache read failed", "error", err)
		}
		return nil, false
	}
	var products []models.Product
	if err := json.Unmarshal([]byte(val), &products); err != nil {
		s.logger.Warn("Product cache entry corrupt", "error", err)
		return nil, false
	}
	return products, true
}

func (s *CatalogService) cacheProducts(ctx context.Context, products []models.Product) {
	if s.rdb == nil || s.cacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(products)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, productsCacheKey, data, s.cacheTTL).Err(); err != nil {
		s.logger.Debug("Product cache write failed", "error", err)
	}
}

func (s *CatalogService) invalidate(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, productsCacheKey).Err(); err != nil {
		s.logger.Warn("Product cache invalidation failed", "error", err)
	}
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
