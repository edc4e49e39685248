package filestore

import (
	"context"
	"sort"

	"github.com/andreasstove999/ecommerce-system/foodify-service-go/internal/catalog"
)

// Catalog implements catalog.Repository.
type Catalog struct {
	s *Store
}

var _ catalog.Repository = (*Catalog)(nil)

func (c *Catalog) List(_ context.Context) ([]catalog.Product, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	out := cloneProducts(c.s.products)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (c *Catalog) Get(_ context.Context, name string) (catalog.Product, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	i := c.s.indexOf(name)
	if i < 0 {
		return catalog.Product{}, catalog.ErrNotFound
	}
	return cloneProduct(c.s.products[i]), nil
}

func (c *Catalog) Create(_ context.Context, p catalog.Product) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	if c.s.indexOf(p.Name) >= 0 {
		return catalog.ErrDuplicate
	}
	now := c.s.now().UTC()
	p = cloneProduct(p)
	p.CreatedAt, p.UpdatedAt = now, now

	next := append(cloneProducts(c.s.products), p)
	if err := c.s.write(productsFile, next); err != nil {
		return err
	}
	c.s.products = next
	return nil
}

func (c *Catalog) Update(_ context.Context, name string, p catalog.Product) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	i := c.s.indexOf(name)
	if i < 0 {
		return catalog.ErrNotFound
	}
	if p.Name != name && c.s.indexOf(p.Name) >= 0 {
		return catalog.ErrDuplicate
	}

	next := cloneProducts(c.s.products)
	p = cloneProduct(p)
	p.CreatedAt = next[i].CreatedAt
	p.UpdatedAt = c.s.now().UTC()
	next[i] = p

	if err := c.s.write(productsFile, next); err != nil {
		return err
	}
	c.s.products = next
	return nil
}

func (c *Catalog) Delete(_ context.Context, name string) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	i := c.s.indexOf(name)
	if i < 0 {
		return catalog.ErrNotFound
	}
	next := cloneProducts(c.s.products)
	next = append(next[:i], next[i+1:]...)

	if err := c.s.write(productsFile, next); err != nil {
		return err
	}
	c.s.products = next
	return nil
}

// indexOf must be called with mu held.
func (s *Store) indexOf(name string) int {
	for i, p := range s.products {
		if p.Name == name {
			return i
		}
	}
	return -1
}
