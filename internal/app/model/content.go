package model

import "time"

// FooterPage is an editable static page linked from the storefront footer.
type FooterPage struct {
	Slug      string    `json:"slug"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	UpdatedAt time.Time `json:"updated_at"`
}

type LayoutSection struct {
	Title string `json:"title"`
	Tag   string `json:"tag"`   // products carrying this tag appear in the section
	Limit int    `json:"limit"` // 0 shows every match
}

// LayoutConfig drives the storefront home page.
type LayoutConfig struct {
	AnnouncementBar string          `json:"announcement_bar"`
	HeroTitle       string          `json:"hero_title"`
	HeroSubtitle    string          `json:"hero_subtitle"`
	HeroImage       string          `json:"hero_image"`
	Sections        []LayoutSection `json:"sections"`
}
