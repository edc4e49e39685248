package filestore

import (
	"context"

	"github.com/andreasstove999/ecommerce-system/foodify-service-go/internal/settings"
)

// Settings implements settings.Repository on settings.json.
type Settings struct {
	s *Store
}

var _ settings.Repository = (*Settings)(nil)

func (r *Settings) Get(_ context.Context, key string) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	v, ok := r.s.settings[key]
	if !ok {
		return "", settings.ErrNotFound
	}
	return v, nil
}

func (r *Settings) Set(_ context.Context, key, value string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	next := make(map[string]string, len(r.s.settings)+1)
	for k, v := range r.s.settings {
		next[k] = v
	}
	next[key] = value

	if err := r.s.write(settingsFile, next); err != nil {
		return err
	}
	r.s.settings = next
	return nil
}
