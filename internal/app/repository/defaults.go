package repository

import (
	"time"

	"github.com/ikkim/maison-backend/internal/app/model"
)

// StorefrontDefaults is what a fresh store starts with. The catalog starts
// empty and is imported with cmd/seed.
func StorefrontDefaults() Defaults {
	now := time.Now().UTC()
	return Defaults{
		Pages: []model.FooterPage{
			{Slug: "shipping", Title: "Shipping", Content: "Orders ship within two business days.", UpdatedAt: now},
			{Slug: "returns", Title: "Returns", Content: "Unworn items can be returned within 30 days.", UpdatedAt: now},
			{Slug: "contact", Title: "Contact", Content: "Write to us at care@maison.example.", UpdatedAt: now},
		},
		Layout: model.LayoutConfig{
			AnnouncementBar: "Free shipping on orders over 500",
			HeroTitle:       "Maison",
			HeroSubtitle:    "Considered pieces for every day",
			Sections: []model.LayoutSection{
				{Title: "New In", Tag: model.TagNew, Limit: 8},
				{Title: "Bestsellers", Tag: model.TagBestseller, Limit: 8},
				{Title: "Bundles", Tag: model.TagBundle, Limit: 4},
			},
		},
	}
}
