package store

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/openmall/openmall/internal/domain"
)

// CatalogStore handles product and category persistence.
type CatalogStore struct {
	db    *gorm.DB
	cache *ProductCache
}

func NewCatalogStore(db *gorm.DB, cache *ProductCache) *CatalogStore {
	return &CatalogStore{db: db, cache: cache}
}

// ProductFilter narrows and paginates product listings.
type ProductFilter struct {
	CategoryID *int64
	Query      string
	Sort       string
	Order      string
	Page       int
	PageSize   int
}

// productSortColumns whitelists sortable columns to avoid SQL injection
var productSortColumns = map[string]string{
	"id":         "id",
	"name":       "name",
	"price":      "price",
	"stock":      "stock",
	"created_at": "created_at",
}

func (f *ProductFilter) normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 || f.PageSize > 500 {
		f.PageSize = 20
	}
	if col, ok := productSortColumns[f.Sort]; ok {
		f.Sort = col
	} else {
		f.Sort = "id"
	}
	f.Order = strings.ToUpper(f.Order)
	if f.Order != "ASC" && f.Order != "DESC" {
		f.Order = "DESC"
	}
}

// ListProducts returns a page of products with their category preloaded.
func (s *CatalogStore) ListProducts(ctx context.Context, filter ProductFilter) ([]domain.Product, int64, error) {
	filter.normalize()

	db := s.db.WithContext(ctx).Model(&domain.Product{})
	if filter.CategoryID != nil {
		db = db.Where("category_id = ?", *filter.CategoryID)
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		if strings.EqualFold(db.Name(), "postgres") {
			db = db.Where("name ILIKE ?", "%"+q+"%")
		} else {
			db = db.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(q)+"%")
		}
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count products")
	}

	var rows []domain.Product
	err := db.Preload("Category").
		Order(filter.Sort + " " + filter.Order).
		Offset((filter.Page - 1) * filter.PageSize).
		Limit(filter.PageSize).
		Find(&rows).Error
	if err != nil {
		return nil, 0, errors.Wrap(err, "query products")
	}
	return rows, total, nil
}

// GetProduct returns one product with its category, consulting the
// redis cache first when available.
func (s *CatalogStore) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	if s.cache != nil {
		if p, ok := s.cache.Get(ctx, id); ok {
			return p, nil
		}
	}

	var p domain.Product
	err := s.db.WithContext(ctx).Preload("Category").First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "query product")
	}

	if s.cache != nil {
		s.cache.Put(ctx, &p)
	}
	return &p, nil
}

func (s *CatalogStore) CreateProduct(ctx context.Context, p *domain.Product) error {
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return errors.Wrap(err, "create product")
	}
	return nil
}

func (s *CatalogStore) UpdateProduct(ctx context.Context, p *domain.Product) error {
	p.UpdatedAt = time.Now()
	if err := s.db.WithContext(ctx).Save(p).Error; err != nil {
		return errors.Wrap(err, "update product")
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, p.ID)
	}
	return nil
}

func (s *CatalogStore) DeleteProduct(ctx context.Context, id int64) error {
	res := s.db.WithContext(ctx).Delete(&domain.Product{}, id)
	if res.Error != nil {
		return errors.Wrap(res.Error, "delete product")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, id)
	}
	return nil
}

func (s *CatalogStore) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var rows []domain.Category
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "query categories")
	}
	return rows, nil
}

func (s *CatalogStore) GetCategory(ctx context.Context, id int64) (*domain.Category, error) {
	var cat domain.Category
	err := s.db.WithContext(ctx).First(&cat, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "query category")
	}
	return &cat, nil
}

func (s *CatalogStore) CreateCategory(ctx context.Context, cat *domain.Category) error {
	var exists int64
	s.db.WithContext(ctx).Model(&domain.Category{}).Where("slug = ?", cat.Slug).Count(&exists)
	if exists > 0 {
		return ErrSlugExists
	}
	now := time.Now()
	cat.CreatedAt = now
	cat.UpdatedAt = now
	if err := s.db.WithContext(ctx).Create(cat).Error; err != nil {
		return errors.Wrap(err, "create category")
	}
	return nil
}

func (s *CatalogStore) UpdateCategory(ctx context.Context, cat *domain.Category) error {
	var exists int64
	s.db.WithContext(ctx).Model(&domain.Category{}).
		Where("slug = ? AND id != ?", cat.Slug, cat.ID).Count(&exists)
	if exists > 0 {
		return ErrSlugExists
	}
	cat.UpdatedAt = time.Now()
	if err := s.db.WithContext(ctx).Save(cat).Error; err != nil {
		return errors.Wrap(err, "update category")
	}
	return nil
}

// DeleteCategory removes the category and detaches referencing products
// so the catalog never holds a dangling category reference.
func (s *CatalogStore) DeleteCategory(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&domain.Category{}, id)
		if res.Error != nil {
			return errors.Wrap(res.Error, "delete category")
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		if err := tx.Model(&domain.Product{}).
			Where("category_id = ?", id).
			Update("category_id", nil).Error; err != nil {
			return errors.Wrap(err, "detach products")
		}
		return nil
	})
}
