package catalog

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type seedFile struct {
	Products []seedProduct `yaml:"products"`
}

type seedProduct struct {
	Name  string `yaml:"name"`
	Price string `yaml:"price"`
	Stock *int   `yaml:"stock"`
	Image string `yaml:"image"`
}

// DefaultSeed is the starter menu used when no seed file is configured.
func DefaultSeed() []Product {
	return []Product{
		{Name: "Classic Burger", Price: decimal.RequireFromString("8.99"), ImageRef: "https://images.unsplash.com/photo-1568901346375-23c9450c58cd"},
		{Name: "Margherita Pizza", Price: decimal.RequireFromString("12.50"), ImageRef: "https://images.unsplash.com/photo-1594007654729-407eedc4be65"},
		{Name: "Crispy Fries", Price: decimal.RequireFromString("4.00"), ImageRef: "https://images.unsplash.com/photo-1573080496219-bb080dd4f877"},
		{Name: "Caesar Salad", Price: decimal.RequireFromString("9.25"), ImageRef: "https://images.unsplash.com/photo-1550304943-4f24f54ddde9"},
	}
}

// ParseSeed decodes a YAML seed document.
func ParseSeed(data []byte) ([]Product, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}

	out := make([]Product, 0, len(f.Products))
	for i, sp := range f.Products {
		price, err := decimal.NewFromString(sp.Price)
		if err != nil {
			return nil, fmt.Errorf("seed product %d (%s): price: %w", i, sp.Name, err)
		}
		out = append(out, Product{Name: sp.Name, Price: price, Stock: sp.Stock, ImageRef: sp.Image})
	}
	return out, nil
}

// LoadSeed reads a seed file, falling back to DefaultSeed when path is empty.
func LoadSeed(path string) ([]Product, error) {
	if path == "" {
		return DefaultSeed(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return ParseSeed(data)
}
