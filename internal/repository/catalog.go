package repository

import (
	"context"
	"errors"
	"fmt"

	"affilink/internal/models"

	"gorm.io/gorm"
)

var ErrProductNotFound = errors.New("product not found")

// CatalogRepository is the storage side of the storefront: the products and
// clicks tables.
type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// ListProducts returns the full public listing, newest first.
func (r *CatalogRepository) ListProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.WithContext(ctx).Order("created_at desc").Order("id desc").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// ListProductNames loads only what the dashboard needs, in id order.
func (r *CatalogRepository) ListProductNames(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.WithContext(ctx).Select("id", "name").Order("id asc").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("list product names: %w", err)
	}
	return products, nil
}

func (r *CatalogRepository) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).First(&product, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}
	return &product, nil
}

func (r *CatalogRepository) CreateProduct(ctx context.Context, product *models.Product) error {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

// DeleteProduct removes the product row. Its clicks are kept.
func (r *CatalogRepository) DeleteProduct(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete product %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

// ListClicks returns every click, most recent first.
func (r *CatalogRepository) ListClicks(ctx context.Context) ([]models.Click, error) {
	var clicks []models.Click
	if err := r.db.WithContext(ctx).Select("id", "product_id", "created_at").Order("created_at desc").Find(&clicks).Error; err != nil {
		return nil, fmt.Errorf("list clicks: %w", err)
	}
	return clicks, nil
}

func (r *CatalogRepository) CreateClick(ctx context.Context, click *models.Click) error {
	if err := r.db.WithContext(ctx).Create(click).Error; err != nil {
		return fmt.Errorf("create click: %w", err)
	}
	return nil
}
