// Package filestore keeps the catalog, the order ledger and settings in JSON files
// under one data directory. A single mutex serializes every read and write, so
// placing or cancelling an order and the stock change it causes happen together.
package filestore

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/andreasstove999/ecommerce-system/foodify-service-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/foodify-service-go/internal/order"
)

const (
	productsFile = "products.json"
	ordersFile   = "orders.json"
	settingsFile = "settings.json"
)

type Store struct {
	mu     sync.Mutex
	dir    string
	logger *log.Logger
	now    func() time.Time

	products []catalog.Product
	orders   []order.Order
	settings map[string]string
	seq      int64
}

// Open loads the collections found in dir. Missing files start empty. A file that
// cannot be decoded is logged and also starts empty; it is overwritten on the next write.
func Open(dir string, logger *log.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	if logger == nil {
		logger = log.New(os.Stderr, "", log.LstdFlags)
	}
	s := &Store{
		dir:      dir,
		logger:   logger,
		now:      time.Now,
		settings: map[string]string{},
	}

	load(s, productsFile, &s.products)
	load(s, ordersFile, &s.orders)
	load(s, settingsFile, &s.settings)
	if s.settings == nil {
		s.settings = map[string]string{}
	}

	for _, o := range s.orders {
		if o.Sequence > s.seq {
			s.seq = o.Sequence
		}
	}
	// Ledger order is the placement order regardless of how the file was written.
	sort.SliceStable(s.orders, func(i, j int) bool { return s.orders[i].Sequence < s.orders[j].Sequence })

	return s, nil
}

func (s *Store) Catalog() *Catalog   { return &Catalog{s: s} }
func (s *Store) Ledger() *Ledger     { return &Ledger{s: s} }
func (s *Store) Settings() *Settings { return &Settings{s: s} }

// load decodes name into dst. dst is left untouched unless the whole file decodes.
func load[T any](s *Store, name string, dst *T) {
	path := filepath.Join(s.dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Printf("filestore: read %s: %v; starting empty", name, err)
		}
		return
	}
	if len(data) == 0 {
		return
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		s.logger.Printf("filestore: %s is corrupt: %v; starting empty", name, err)
		return
	}
	*dst = v
}

// write replaces name atomically via a temp file and rename.
func (s *Store) write(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	path := filepath.Join(s.dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}

func cloneProducts(src []catalog.Product) []catalog.Product {
	out := make([]catalog.Product, len(src))
	for i, p := range src {
		out[i] = cloneProduct(p)
	}
	return out
}

func cloneProduct(p catalog.Product) catalog.Product {
	if p.Stock != nil {
		v := *p.Stock
		p.Stock = &v
	}
	return p
}

func cloneOrder(o order.Order) order.Order {
	o.Items = append([]order.Item(nil), o.Items...)
	if o.ConfirmedAt != nil {
		t := *o.ConfirmedAt
		o.ConfirmedAt = &t
	}
	if o.CancelledAt != nil {
		t := *o.CancelledAt
		o.CancelledAt = &t
	}
	return o
}

// stockTable indexes the stock pointers of products by name.
func stockTable(products []catalog.Product) map[string]*int {
	table := make(map[string]*int, len(products))
	for i := range products {
		table[products[i].Name] = products[i].Stock
	}
	return table
}
