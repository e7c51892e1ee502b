package model

import (
	"errors"
	"slices"
	"strings"
)

type ProductCategory string

const (
	CategoryClothing    ProductCategory = "clothing"
	CategoryBags        ProductCategory = "bags"
	CategoryShoes       ProductCategory = "shoes"
	CategoryAccessories ProductCategory = "accessories"
	CategoryJewelry     ProductCategory = "jewelry"
)

// Well-known section tags used by the storefront layout.
const (
	TagNew        = "new"
	TagBundle     = "bundle"
	TagBestseller = "bestseller"
)

var (
	ErrProductNameRequired  = errors.New("product name is required")
	ErrProductImageRequired = errors.New("product needs at least one image")
	ErrProductInvalidPrice  = errors.New("product price must not be negative")
	ErrProductInvalidStock  = errors.New("product stock must not be negative")
	ErrProductInvalidType   = errors.New("unknown product category")
)

type Color struct {
	Name string `json:"name"`
	Hex  string `json:"hex"`
}

type Product struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Brand          string          `json:"brand"`
	Price          int64           `json:"price"`  // integer currency units
	Images         []string        `json:"images"` // index 0 is the primary image
	Description    string          `json:"description"`
	Category       ProductCategory `json:"category"`
	Stock          int             `json:"stock"`
	Tags           []string        `json:"tags"` // section membership: "new", "bundle", ...
	Colors         []Color         `json:"colors,omitempty"`
	Sizes          []string        `json:"sizes,omitempty"`
	Features       []string        `json:"features,omitempty"`
	Composition    []string        `json:"composition,omitempty"`
	Specifications []string        `json:"specifications,omitempty"`
}

func ValidCategory(c ProductCategory) bool {
	switch c {
	case CategoryClothing, CategoryBags, CategoryShoes, CategoryAccessories, CategoryJewelry:
		return true
	}
	return false
}

// PrimaryImage returns the canonical image of the product.
func (p Product) PrimaryImage() (string, bool) {
	if len(p.Images) == 0 {
		return "", false
	}
	return p.Images[0], true
}

// HasTag reports whether the product belongs to the section tagged tag.
func (p Product) HasTag(tag string) bool {
	return slices.ContainsFunc(p.Tags, func(t string) bool {
		return strings.EqualFold(t, tag)
	})
}

func (p Product) InStock() bool {
	return p.Stock > 0
}

func (p Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrProductNameRequired
	}
	if len(p.Images) == 0 || strings.TrimSpace(p.Images[0]) == "" {
		return ErrProductImageRequired
	}
	if p.Price < 0 {
		return ErrProductInvalidPrice
	}
	if p.Stock < 0 {
		return ErrProductInvalidStock
	}
	if !ValidCategory(p.Category) {
		return ErrProductInvalidType
	}
	return nil
}

// Clone returns a copy that shares no slices with p.
func (p Product) Clone() Product {
	p.Images = slices.Clone(p.Images)
	p.Tags = slices.Clone(p.Tags)
	p.Colors = slices.Clone(p.Colors)
	p.Sizes = slices.Clone(p.Sizes)
	p.Features = slices.Clone(p.Features)
	p.Composition = slices.Clone(p.Composition)
	p.Specifications = slices.Clone(p.Specifications)
	return p
}
