// Package settings stores site wide configuration such as the logo.
package settings

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/andreasstove999/ecommerce-system/foodify-service-go/internal/storage"
	"github.com/andreasstove999/ecommerce-system/foodify-service-go/internal/validation"
)

const (
	KeyLogoURL           = "logo_url"
	KeyNotificationSound = "notification_sound"
	KeyShopName          = "shop_name"
)

// Editable lists the keys admins may read and write directly.
var Editable = map[string]bool{
	KeyLogoURL:           true,
	KeyNotificationSound: true,
	KeyShopName:          true,
}

const DefaultLogoURL = "/static/logo.png"

type Service struct {
	repo   Repository
	blobs  storage.BlobStore
	logger *log.Logger
	now    func() time.Time
}

func NewService(repo Repository, blobs storage.BlobStore, logger *log.Logger) *Service {
	return &Service{repo: repo, blobs: blobs, logger: logger, now: time.Now}
}

// Get returns the value for key, or fallback when it was never set.
func (s *Service) Get(ctx context.Context, key, fallback string) (string, error) {
	v, err := s.repo.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return fallback, nil
	}
	if err != nil {
		return "", err
	}
	return v, nil
}

func (s *Service) Set(ctx context.Context, key, value string) error {
	if !Editable[key] {
		return validation.Errorf("unknown setting %q", key)
	}
	return s.repo.Set(ctx, key, value)
}

func (s *Service) Logo(ctx context.Context) (string, error) {
	return s.Get(ctx, KeyLogoURL, DefaultLogoURL)
}

// ShopName returns the admin chosen shop name, or fallback when none was set.
func (s *Service) ShopName(ctx context.Context, fallback string) (string, error) {
	return s.Get(ctx, KeyShopName, fallback)
}

// SetLogo stores a new logo image and points logo_url at it.
func (s *Service) SetLogo(ctx context.Context, img *storage.Upload) (string, error) {
	if img == nil {
		return "", validation.Errorf("logo file is required")
	}

	previous, err := s.repo.Get(ctx, KeyLogoURL)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return "", err
	}

	ref, err := s.blobs.Put(ctx, storage.ObjectKey("logos", img.Filename, s.now()), img.ContentType, img.Body)
	if err != nil {
		return "", fmt.Errorf("store logo: %w", err)
	}
	if err := s.repo.Set(ctx, KeyLogoURL, ref); err != nil {
		return "", err
	}

	if previous != "" && previous != ref {
		if err := s.blobs.Delete(ctx, previous); err != nil {
			s.logger.Printf("settings: remove old logo %s: %v", previous, err)
		}
	}
	return ref, nil
}
