package service

import (
	"context"
	"errors"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/ikkim/maison-backend/internal/app/model"
	"github.com/ikkim/maison-backend/internal/app/repository"
	"github.com/ikkim/maison-backend/pkg/logger"
)

var (
	ErrPageNotFound   = errors.New("page not found")
	ErrInvalidSlug    = errors.New("slug may only contain lowercase letters, digits and dashes")
	ErrPageTitleEmpty = errors.New("page title is required")
	ErrInvalidLayout  = errors.New("layout sections need a title and a tag")
)

var slugPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

type ContentService interface {
	ListPages(ctx context.Context) []model.FooterPage
	GetPage(ctx context.Context, slug string) (*model.FooterPage, error)
	// UpsertPage creates the page or replaces the one with the same slug.
	UpsertPage(ctx context.Context, page model.FooterPage) (*model.FooterPage, error)
	DeletePage(ctx context.Context, slug string) error
	GetLayout(ctx context.Context) model.LayoutConfig
	UpdateLayout(ctx context.Context, layout model.LayoutConfig) (*model.LayoutConfig, error)
}

type contentService struct {
	pages  *repository.Collection[model.FooterPage]
	layout *repository.Document[model.LayoutConfig]
}

func NewContentService(pages *repository.Collection[model.FooterPage], layout *repository.Document[model.LayoutConfig]) ContentService {
	return &contentService{
		pages:  pages,
		layout: layout,
	}
}

func (s *contentService) ListPages(ctx context.Context) []model.FooterPage {
	return s.pages.All()
}

func (s *contentService) GetPage(ctx context.Context, slug string) (*model.FooterPage, error) {
	page, ok := s.pages.Find(func(p model.FooterPage) bool { return p.Slug == slug })
	if !ok {
		return nil, ErrPageNotFound
	}
	return &page, nil
}

func (s *contentService) UpsertPage(ctx context.Context, page model.FooterPage) (*model.FooterPage, error) {
	page.Slug = strings.TrimSpace(page.Slug)
	if !slugPattern.MatchString(page.Slug) {
		return nil, ErrInvalidSlug
	}
	if strings.TrimSpace(page.Title) == "" {
		return nil, ErrPageTitleEmpty
	}
	page.UpdatedAt = time.Now().UTC()

	logger.Info("Saving footer page", map[string]interface{}{
		"slug": page.Slug,
	})

	err := s.pages.Mutate(ctx, func(items []model.FooterPage) ([]model.FooterPage, error) {
		i := slices.IndexFunc(items, func(p model.FooterPage) bool { return p.Slug == page.Slug })
		if i >= 0 {
			items[i] = page
			return items, nil
		}
		return append(items, page), nil
	})
	if err != nil && !errors.Is(err, repository.ErrPersistFailed) {
		return nil, err
	}
	return &page, err
}

func (s *contentService) DeletePage(ctx context.Context, slug string) error {
	logger.Info("Deleting footer page", map[string]interface{}{
		"slug": slug,
	})

	return s.pages.Mutate(ctx, func(items []model.FooterPage) ([]model.FooterPage, error) {
		i := slices.IndexFunc(items, func(p model.FooterPage) bool { return p.Slug == slug })
		if i < 0 {
			return nil, ErrPageNotFound
		}
		return slices.Delete(items, i, i+1), nil
	})
}

func (s *contentService) GetLayout(ctx context.Context) model.LayoutConfig {
	return s.layout.Get()
}

func (s *contentService) UpdateLayout(ctx context.Context, layout model.LayoutConfig) (*model.LayoutConfig, error) {
	for _, section := range layout.Sections {
		if strings.TrimSpace(section.Title) == "" || strings.TrimSpace(section.Tag) == "" || section.Limit < 0 {
			return nil, ErrInvalidLayout
		}
	}

	logger.Info("Updating storefront layout", map[string]interface{}{
		"sections": len(layout.Sections),
	})

	err := s.layout.Update(ctx, func(model.LayoutConfig) (model.LayoutConfig, error) {
		return layout, nil
	})
	if err != nil && !errors.Is(err, repository.ErrPersistFailed) {
		return nil, err
	}
	return &layout, err
}
