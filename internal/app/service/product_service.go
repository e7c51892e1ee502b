package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/ikkim/maison-backend/internal/app/model"
	"github.com/ikkim/maison-backend/internal/app/repository"
	"github.com/ikkim/maison-backend/pkg/logger"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrProductIDTaken   = errors.New("product id already exists")
	ErrProductIDChanged = errors.New("product id cannot be changed")
)

type ProductListOptions struct {
	Category *model.ProductCategory
	Tag      string
	Search   string
	InStock  bool
	Sort     repository.ProductSort
	Limit    int
	Offset   int
}

type ProductService interface {
	ListProducts(opts ProductListOptions) []model.Product
	GetProductByID(id string) (*model.Product, error)
	// SectionProducts returns the products shown in a home page section.
	SectionProducts(section model.LayoutSection) []model.Product
	CreateProduct(ctx context.Context, product model.Product) (*model.Product, error)
	UpdateProduct(ctx context.Context, id string, product model.Product) (*model.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

type productService struct {
	productRepo repository.ProductRepository
}

func NewProductService(productRepo repository.ProductRepository) ProductService {
	return &productService{productRepo: productRepo}
}

func (s *productService) ListProducts(opts ProductListOptions) []model.Product {
	products := s.productRepo.FindWithFilter(repository.ProductFilter{
		Category: opts.Category,
		Tag:      opts.Tag,
		Search:   opts.Search,
		InStock:  opts.InStock,
		SortBy:   opts.Sort,
		Limit:    opts.Limit,
		Offset:   opts.Offset,
	})

	logger.Debug("Products listed", map[string]interface{}{
		"tag":    opts.Tag,
		"search": opts.Search,
		"count":  len(products),
	})
	return products
}

func (s *productService) GetProductByID(id string) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logger.Warn("Product not found", map[string]interface{}{
				"product_id": id,
			})
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

func (s *productService) SectionProducts(section model.LayoutSection) []model.Product {
	return s.productRepo.FindWithFilter(repository.ProductFilter{
		Tag:   section.Tag,
		Limit: section.Limit,
	})
}

func (s *productService) CreateProduct(ctx context.Context, product model.Product) (*model.Product, error) {
	product.ID = strings.TrimSpace(product.ID)
	if product.ID == "" {
		product.ID = uuid.NewString()
	}

	logger.Info("Creating product", map[string]interface{}{
		"product_id": product.ID,
		"name":       product.Name,
		"category":   product.Category,
	})

	if err := product.Validate(); err != nil {
		logger.Warn("Product validation failed", map[string]interface{}{
			"product_id": product.ID,
			"error":      err.Error(),
		})
		return nil, err
	}
	if _, err := s.productRepo.FindByID(product.ID); err == nil {
		return nil, ErrProductIDTaken
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		if errors.Is(err, repository.ErrPersistFailed) {
			return &product, err
		}
		logger.Error("Failed to create product", err, map[string]interface{}{
			"product_id": product.ID,
		})
		return nil, err
	}

	logger.Info("Product created successfully", map[string]interface{}{
		"product_id": product.ID,
	})
	return &product, nil
}

func (s *productService) UpdateProduct(ctx context.Context, id string, product model.Product) (*model.Product, error) {
	logger.Info("Updating product", map[string]interface{}{
		"product_id": id,
	})

	if product.ID == "" {
		product.ID = id
	}
	if product.ID != id {
		return nil, ErrProductIDChanged
	}
	if err := product.Validate(); err != nil {
		logger.Warn("Product validation failed", map[string]interface{}{
			"product_id": id,
			"error":      err.Error(),
		})
		return nil, err
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		if errors.Is(err, repository.ErrPersistFailed) {
			return &product, err
		}
		logger.Error("Failed to update product", err, map[string]interface{}{
			"product_id": id,
		})
		return nil, err
	}

	logger.Info("Product updated successfully", map[string]interface{}{
		"product_id": id,
		"stock":      product.Stock,
	})
	return &product, nil
}

func (s *productService) DeleteProduct(ctx context.Context, id string) error {
	logger.Info("Deleting product", map[string]interface{}{
		"product_id": id,
	})

	if err := s.productRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	return nil
}
