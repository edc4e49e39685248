// Package catalog manages the menu of products customers can order.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/andreasstove999/ecommerce-system/foodify-service-go/internal/storage"
	"github.com/andreasstove999/ecommerce-system/foodify-service-go/internal/validation"
)

const imagePrefix = "products"

type Service struct {
	repo   Repository
	blobs  storage.BlobStore
	logger *log.Logger
	now    func() time.Time
}

func NewService(repo Repository, blobs storage.BlobStore, logger *log.Logger) *Service {
	return &Service{repo: repo, blobs: blobs, logger: logger, now: time.Now}
}

func (s *Service) List(ctx context.Context) ([]Product, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, name string) (Product, error) {
	return s.repo.Get(ctx, name)
}

// Create adds a product. An image is required for new products.
func (s *Service) Create(ctx context.Context, in Input, img *storage.Upload) (Product, error) {
	if err := in.Validate(); err != nil {
		return Product{}, err
	}
	if img == nil {
		return Product{}, validation.Errorf("product image is required")
	}

	ref, err := s.storeImage(ctx, img)
	if err != nil {
		return Product{}, err
	}

	p := Product{Name: in.Name, Price: in.Price, Stock: in.Stock, ImageRef: ref}
	if err := s.repo.Create(ctx, p); err != nil {
		s.dropImage(ctx, ref)
		return Product{}, err
	}
	return s.repo.Get(ctx, p.Name)
}

// Update edits a product. When img is nil the current image is kept.
func (s *Service) Update(ctx context.Context, name string, in Input, img *storage.Upload) (Product, error) {
	if err := in.Validate(); err != nil {
		return Product{}, err
	}

	current, err := s.repo.Get(ctx, name)
	if err != nil {
		return Product{}, err
	}

	next := Product{Name: in.Name, Price: in.Price, Stock: in.Stock, ImageRef: current.ImageRef}
	if img != nil {
		ref, err := s.storeImage(ctx, img)
		if err != nil {
			return Product{}, err
		}
		next.ImageRef = ref
	}

	if err := s.repo.Update(ctx, name, next); err != nil {
		if next.ImageRef != current.ImageRef {
			s.dropImage(ctx, next.ImageRef)
		}
		return Product{}, err
	}
	if next.ImageRef != current.ImageRef {
		s.dropImage(ctx, current.ImageRef)
	}
	return s.repo.Get(ctx, next.Name)
}

// Delete removes the product and, best effort, its image. Orders keep their own snapshot.
func (s *Service) Delete(ctx context.Context, name string) error {
	current, err := s.repo.Get(ctx, name)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, name); err != nil {
		return err
	}
	s.dropImage(ctx, current.ImageRef)
	return nil
}

// Seed inserts products when the catalog is empty. It returns how many were added.
func (s *Service) Seed(ctx context.Context, products []Product) (int, error) {
	existing, err := s.repo.List(ctx)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}

	added := 0
	for _, p := range products {
		if err := (Input{Name: p.Name, Price: p.Price, Stock: p.Stock}).Validate(); err != nil {
			return added, fmt.Errorf("seed %q: %w", p.Name, err)
		}
		if err := s.repo.Create(ctx, p); err != nil {
			if errors.Is(err, ErrDuplicate) {
				continue
			}
			return added, fmt.Errorf("seed %q: %w", p.Name, err)
		}
		added++
	}
	return added, nil
}

func (s *Service) storeImage(ctx context.Context, img *storage.Upload) (string, error) {
	key := storage.ObjectKey(imagePrefix, img.Filename, s.now())
	ref, err := s.blobs.Put(ctx, key, img.ContentType, img.Body)
	if err != nil {
		return "", fmt.Errorf("store image: %w", err)
	}
	return ref, nil
}

func (s *Service) dropImage(ctx context.Context, ref string) {
	if ref == "" {
		return
	}
	if err := s.blobs.Delete(ctx, ref); err != nil {
		s.logger.Printf("catalog: remove image %s: %v", ref, err)
	}
}
