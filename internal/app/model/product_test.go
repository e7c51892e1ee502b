package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validProduct() Product {
	return Product{
		ID:       "p1",
		Name:     "Silk Slip Dress",
		Brand:    "Maison",
		Price:    1000,
		Images:   []string{"https://cdn.example/p1-front.jpg", "https://cdn.example/p1-back.jpg"},
		Category: CategoryClothing,
		Stock:    4,
		Tags:     []string{"new", "Bundle"},
	}
}

func TestProduct_PrimaryImage(t *testing.T) {
	p := validProduct()
	img, ok := p.PrimaryImage()
	assert.True(t, ok)
	assert.Equal(t, "https://cdn.example/p1-front.jpg", img)

	p.Images = nil
	_, ok = p.PrimaryImage()
	assert.False(t, ok)
}

func TestProduct_HasTag(t *testing.T) {
	p := validProduct()
	assert.True(t, p.HasTag(TagNew))
	assert.True(t, p.HasTag(TagBundle))
	assert.False(t, p.HasTag(TagBestseller))
}

func TestProduct_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *Product)
		wantErr error
	}{
		{name: "valid", mutate: func(p *Product) {}},
		{name: "missing name", mutate: func(p *Product) { p.Name = " " }, wantErr: ErrProductNameRequired},
		{name: "no images", mutate: func(p *Product) { p.Images = nil }, wantErr: ErrProductImageRequired},
		{name: "empty primary image", mutate: func(p *Product) { p.Images = []string{""} }, wantErr: ErrProductImageRequired},
		{name: "negative price", mutate: func(p *Product) { p.Price = -1 }, wantErr: ErrProductInvalidPrice},
		{name: "negative stock", mutate: func(p *Product) { p.Stock = -1 }, wantErr: ErrProductInvalidStock},
		{name: "bad category", mutate: func(p *Product) { p.Category = "furniture" }, wantErr: ErrProductInvalidType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validProduct()
			tt.mutate(&p)
			err := p.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestProduct_CloneIsIndependent(t *testing.T) {
	p := validProduct()
	c := p.Clone()
	c.Images[0] = "changed"
	c.Tags[0] = "changed"

	assert.Equal(t, "https://cdn.example/p1-front.jpg", p.Images[0])
	assert.Equal(t, "new", p.Tags[0])
}

func TestCartItem_KeyAndTotals(t *testing.T) {
	items := []CartItem{
		{Product: validProduct(), Quantity: 2, SelectedColor: "Black", SelectedSize: "M"},
		{Product: Product{ID: "p2", Price: 250}, Quantity: 3},
	}

	assert.Equal(t, LineKey{ProductID: "p1", Color: "Black", Size: "M"}, items[0].Key())
	assert.Equal(t, int64(2000), items[0].Subtotal())
	assert.Equal(t, int64(2750), CartTotal(items))
	assert.Equal(t, 5, CartQuantity(items))
}
