package catalog

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/mrdaaxel/tienda-api/internal/apperrors"
	"github.com/mrdaaxel/tienda-api/internal/storage"
)

// stockSeeder creates the stock row for a newly created product inside the
// same transaction.
type stockSeeder interface {
	InitForProduct(ctx context.Context, q storage.Querier, productID int64, qty int) error
}

// CreateProductRequest carries product fields plus the initial stock level.
type CreateProductRequest struct {
	Barcode      *string         `json:"codigoBarra"`
	Name         string          `json:"nombre" binding:"required"`
	Description  string          `json:"descripcion" binding:"required"`
	Brand        *string         `json:"marca"`
	CategoryID   *int64          `json:"idCategoria"`
	Price        decimal.Decimal `json:"precio" binding:"required"`
	InitialStock int             `json:"stock"`
}

// UpdateProductRequest updates only the fields present.
type UpdateProductRequest struct {
	Barcode     *string          `json:"codigoBarra"`
	Name        *string          `json:"nombre"`
	Description *string          `json:"descripcion"`
	Brand       *string          `json:"marca"`
	CategoryID  *int64           `json:"idCategoria"`
	Price       *decimal.Decimal `json:"precio"`
}

type Service struct {
	db    storage.DB
	repo  Repository
	cache *ProductCache
	stock stockSeeder
}

func NewService(db storage.DB, repo Repository, cache *ProductCache, stock stockSeeder) *Service {
	return &Service{db: db, repo: repo, cache: cache, stock: stock}
}

// GetProduct serves product detail through the read-through cache. A broken
// cache degrades to plain database reads.
func (s *Service) GetProduct(ctx context.Context, id int64) (*ProductDetail, error) {
	if s.cache != nil {
		detail, err := s.cache.Get(ctx, id)
		if err != nil {
			log.Printf("⚠️ product cache read failed (id=%d): %v", id, err)
		} else if detail != nil {
			return detail, nil
		}
	}

	detail, err := s.repo.GetProductDetail(ctx, s.db, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, detail); err != nil {
			log.Printf("⚠️ product cache write failed (id=%d): %v", id, err)
		}
	}
	return detail, nil
}

// Search paginates the catalog with optional text and category filters.
func (s *Service) Search(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = 12
	}
	if req.PageSize > 100 {
		return nil, apperrors.Invalidf("itemsPorPagina no puede superar 100")
	}
	return s.repo.SearchProducts(ctx, s.db, req)
}

// CreateProduct inserts the product and seeds its stock row atomically.
func (s *Service) CreateProduct(ctx context.Context, req CreateProductRequest) (*Product, error) {
	if req.Price.IsNegative() {
		return nil, apperrors.Invalidf("el precio no puede ser negativo")
	}

	product := &Product{
		Barcode:     req.Barcode,
		Name:        req.Name,
		Description: req.Description,
		Brand:       req.Brand,
		CategoryID:  req.CategoryID,
		Price:       req.Price.Round(2),
	}
	err := storage.InTx(ctx, s.db, func(tx pgx.Tx) error {
		if err := s.repo.CreateProduct(ctx, tx, product); err != nil {
			return err
		}
		return s.stock.InitForProduct(ctx, tx, product.ID, req.InitialStock)
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateProduct applies the provided fields and evicts the cached detail.
func (s *Service) UpdateProduct(ctx context.Context, id int64, req UpdateProductRequest) (*Product, error) {
	product, err := s.repo.GetProduct(ctx, s.db, id)
	if err != nil {
		return nil, err
	}

	if req.Barcode != nil {
		product.Barcode = req.Barcode
	}
	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Brand != nil {
		product.Brand = req.Brand
	}
	if req.CategoryID != nil {
		product.CategoryID = req.CategoryID
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, apperrors.Invalidf("el precio no puede ser negativo")
		}
		product.Price = req.Price.Round(2)
	}

	if err := s.repo.UpdateProduct(ctx, s.db, product); err != nil {
		return nil, err
	}
	s.evict(ctx, id)
	return product, nil
}

// DeleteProduct removes the product; its stock row and images cascade.
func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.repo.DeleteProduct(ctx, s.db, id); err != nil {
		return err
	}
	s.evict(ctx, id)
	return nil
}

func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	return s.repo.ListCategories(ctx, s.db)
}

func (s *Service) CreateCategory(ctx context.Context, description string) (*Category, error) {
	return s.repo.CreateCategory(ctx, s.db, description)
}

func (s *Service) UpdateCategory(ctx context.Context, id int64, description string) error {
	return s.repo.UpdateCategory(ctx, s.db, id, description)
}

func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	return s.repo.DeleteCategory(ctx, s.db, id)
}

func (s *Service) ListImages(ctx context.Context, productID int64) ([]ProductImage, error) {
	return s.repo.ListImages(ctx, s.db, productID)
}

// AddImages appends gallery images; existence of the product is checked
// first so a bad id surfaces as 404, not an FK violation.
func (s *Service) AddImages(ctx context.Context, productID int64, images []ProductImage) error {
	if _, err := s.repo.GetProduct(ctx, s.db, productID); err != nil {
		return err
	}
	if err := s.repo.AddImages(ctx, s.db, productID, images); err != nil {
		return err
	}
	s.evict(ctx, productID)
	return nil
}

func (s *Service) SetPrimaryImage(ctx context.Context, productID, imageID int64) error {
	if err := s.repo.SetPrimaryImage(ctx, s.db, productID, imageID); err != nil {
		return err
	}
	s.evict(ctx, productID)
	return nil
}

func (s *Service) DeleteImage(ctx context.Context, productID, imageID int64) error {
	if err := s.repo.DeleteImage(ctx, s.db, productID, imageID); err != nil {
		return err
	}
	s.evict(ctx, productID)
	return nil
}

func (s *Service) evict(ctx context.Context, productID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, productID); err != nil {
		log.Printf("⚠️ product cache invalidation failed (id=%d): %v", productID, err)
	}
}
