package repository

import (
	"context"
	"errors"
	"slices"
	"sort"
	"strings"

	"github.com/ikkim/maison-backend/internal/app/model"
	"github.com/ikkim/maison-backend/pkg/logger"
)

var ErrNotFound = errors.New("record not found")

type ProductSort string

const (
	ProductSortDefault   ProductSort = ""
	ProductSortPrice     ProductSort = "price"
	ProductSortName      ProductSort = "name"
	ProductSortStock     ProductSort = "stock"
	ProductSortPriceDesc ProductSort = "-price"
)

type ProductFilter struct {
	Category *model.ProductCategory
	Tag      string
	Search   string
	InStock  bool
	SortBy   ProductSort
	Limit    int
	Offset   int
}

type ProductRepository interface {
	FindAll() []model.Product
	FindWithFilter(filter ProductFilter) []model.Product
	FindByID(id string) (*model.Product, error)
	Create(ctx context.Context, product model.Product) error
	Update(ctx context.Context, product model.Product) error
	Delete(ctx context.Context, id string) error
	// DecrementStock lowers each product's stock by the given quantity,
	// flooring at zero. Unknown IDs are ignored.
	DecrementStock(ctx context.Context, quantities map[string]int) error
	// BulkUpsert replaces products with a matching ID and appends the rest in
	// one write.
	BulkUpsert(ctx context.Context, products []model.Product) (created, updated int, err error)
}

type productRepository struct {
	products *Collection[model.Product]
}

func NewProductRepository(state *State) ProductRepository {
	return &productRepository{products: state.Products}
}

func (r *productRepository) FindAll() []model.Product {
	return r.products.All()
}

func (r *productRepository) FindWithFilter(filter ProductFilter) []model.Product {
	logger.Debug("Filtering products", map[string]interface{}{
		"tag":      filter.Tag,
		"search":   filter.Search,
		"in_stock": filter.InStock,
		"sort_by":  filter.SortBy,
	})

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	var out []model.Product
	for _, p := range r.products.All() {
		if filter.Category != nil && p.Category != *filter.Category {
			continue
		}
		if filter.Tag != "" && !p.HasTag(filter.Tag) {
			continue
		}
		if filter.InStock && !p.InStock() {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Brand), search) &&
			!strings.Contains(strings.ToLower(p.Description), search) {
			continue
		}
		out = append(out, p)
	}

	switch filter.SortBy {
	case ProductSortPrice:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	case ProductSortPriceDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price > out[j].Price })
	case ProductSortName:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	case ProductSortStock:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Stock < out[j].Stock })
	}

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return []model.Product{}
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	if out == nil {
		out = []model.Product{}
	}
	return out
}

func (r *productRepository) FindByID(id string) (*model.Product, error) {
	p, ok := r.products.Find(func(p model.Product) bool { return p.ID == id })
	if !ok {
		logger.Debug("Product not found", map[string]interface{}{
			"product_id": id,
		})
		return nil, ErrNotFound
	}
	p = p.Clone()
	return &p, nil
}

func (r *productRepository) Create(ctx context.Context, product model.Product) error {
	logger.Debug("Creating product", map[string]interface{}{
		"product_id": product.ID,
		"name":       product.Name,
		"category":   product.Category,
	})

	return r.products.Mutate(ctx, func(items []model.Product) ([]model.Product, error) {
		return append(items, product.Clone()), nil
	})
}

func (r *productRepository) Update(ctx context.Context, product model.Product) error {
	logger.Debug("Updating product", map[string]interface{}{
		"product_id": product.ID,
	})

	return r.products.Mutate(ctx, func(items []model.Product) ([]model.Product, error) {
		i := slices.IndexFunc(items, func(p model.Product) bool { return p.ID == product.ID })
		if i < 0 {
			return nil, ErrNotFound
		}
		items[i] = product.Clone()
		return items, nil
	})
}

func (r *productRepository) Delete(ctx context.Context, id string) error {
	logger.Debug("Deleting product", map[string]interface{}{
		"product_id": id,
	})

	return r.products.Mutate(ctx, func(items []model.Product) ([]model.Product, error) {
		i := slices.IndexFunc(items, func(p model.Product) bool { return p.ID == id })
		if i < 0 {
			return nil, ErrNotFound
		}
		return slices.Delete(items, i, i+1), nil
	})
}

func (r *productRepository) DecrementStock(ctx context.Context, quantities map[string]int) error {
	return r.products.Mutate(ctx, func(items []model.Product) ([]model.Product, error) {
		for i := range items {
			q, ok := quantities[items[i].ID]
			if !ok {
				continue
			}
			before := items[i].Stock
			items[i].Stock = max(0, before-q)
			logger.Debug("Stock decremented", map[string]interface{}{
				"product_id": items[i].ID,
				"before":     before,
				"after":      items[i].Stock,
			})
		}
		return items, nil
	})
}

func (r *productRepository) BulkUpsert(ctx context.Context, products []model.Product) (created, updated int, err error) {
	err = r.products.Mutate(ctx, func(items []model.Product) ([]model.Product, error) {
		created, updated = 0, 0
		for _, product := range products {
			i := slices.IndexFunc(items, func(p model.Product) bool { return p.ID == product.ID })
			if i >= 0 {
				items[i] = product.Clone()
				updated++
				continue
			}
			items = append(items, product.Clone())
			created++
		}
		return items, nil
	})
	return created, updated, err
}
