package catalog

import (
	"context"
	"errors"
	"io"
	"log"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andreasstove999/ecommerce-system/foodify-service-go/internal/storage"
	"github.com/andreasstove999/ecommerce-system/foodify-service-go/internal/validation"
)

type memRepo struct {
	items map[string]Product
}

func newMemRepo(ps ...Product) *memRepo {
	r := &memRepo{items: map[string]Product{}}
	for _, p := range ps {
		r.items[p.Name] = p
	}
	return r
}

func (r *memRepo) List(context.Context) ([]Product, error) {
	out := make([]Product, 0, len(r.items))
	for _, p := range r.items {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memRepo) Get(_ context.Context, name string) (Product, error) {
	p, ok := r.items[name]
	if !ok {
		return Product{}, ErrNotFound
	}
	return p, nil
}

func (r *memRepo) Create(_ context.Context, p Product) error {
	if _, ok := r.items[p.Name]; ok {
		return ErrDuplicate
	}
	r.items[p.Name] = p
	return nil
}

func (r *memRepo) Update(_ context.Context, name string, p Product) error {
	if _, ok := r.items[name]; !ok {
		return ErrNotFound
	}
	if _, clash := r.items[p.Name]; clash && p.Name != name {
		return ErrDuplicate
	}
	delete(r.items, name)
	r.items[p.Name] = p
	return nil
}

func (r *memRepo) Delete(_ context.Context, name string) error {
	if _, ok := r.items[name]; !ok {
		return ErrNotFound
	}
	delete(r.items, name)
	return nil
}

type fakeBlobs struct {
	puts    []string
	deleted []string
	putErr  error
}

func (f *fakeBlobs) Put(_ context.Context, key, _ string, body io.Reader) (string, error) {
	if f.putErr != nil {
		return "", f.putErr
	}
	_, _ = io.ReadAll(body)
	f.puts = append(f.puts, key)
	return "/uploads/" + key, nil
}

func (f *fakeBlobs) Delete(_ context.Context, ref string) error {
	f.deleted = append(f.deleted, ref)
	return nil
}

func newTestService(repo Repository, blobs storage.BlobStore) *Service {
	s := NewService(repo, blobs, log.New(io.Discard, "", 0))
	s.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return s
}

func upload(name string) *storage.Upload {
	return &storage.Upload{Filename: name, ContentType: "image/png", Body: strings.NewReader("img")}
}

func stock(v int) *int { return &v }

func TestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("stores image and product", func(t *testing.T) {
		repo, blobs := newMemRepo(), &fakeBlobs{}
		svc := newTestService(repo, blobs)

		p, err := svc.Create(ctx, Input{Name: "Burger", Price: decimal.NewFromInt(250), Stock: stock(10)}, upload("Burger.png"))
		require.NoError(t, err)
		assert.Equal(t, "/uploads/products/20260301120000_burger.png", p.ImageRef)
		assert.Equal(t, 10, p.Available())
	})

	t.Run("requires image", func(t *testing.T) {
		svc := newTestService(newMemRepo(), &fakeBlobs{})
		_, err := svc.Create(ctx, Input{Name: "Burger", Price: decimal.NewFromInt(1)}, nil)
		assert.True(t, validation.IsValidation(err))
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		svc := newTestService(newMemRepo(), &fakeBlobs{})
		for _, in := range []Input{
			{Name: " ", Price: decimal.NewFromInt(1)},
			{Name: "X", Price: decimal.NewFromInt(-1)},
			{Name: "X", Price: decimal.NewFromInt(1), Stock: stock(-1)},
		} {
			_, err := svc.Create(ctx, in, upload("a.png"))
			assert.True(t, validation.IsValidation(err), "%+v", in)
		}
	})

	t.Run("duplicate removes uploaded image", func(t *testing.T) {
		repo, blobs := newMemRepo(Product{Name: "Burger"}), &fakeBlobs{}
		svc := newTestService(repo, blobs)

		_, err := svc.Create(ctx, Input{Name: "Burger", Price: decimal.NewFromInt(1)}, upload("b.png"))
		require.ErrorIs(t, err, ErrDuplicate)
		assert.Equal(t, []string{"/uploads/products/20260301120000_b.png"}, blobs.deleted)
	})

	t.Run("blob failure", func(t *testing.T) {
		svc := newTestService(newMemRepo(), &fakeBlobs{putErr: errors.New("disk full")})
		_, err := svc.Create(ctx, Input{Name: "Burger", Price: decimal.NewFromInt(1)}, upload("b.png"))
		require.ErrorContains(t, err, "disk full")
	})
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("keeps image when none uploaded and renames", func(t *testing.T) {
		repo := newMemRepo(Product{Name: "Burger", Price: decimal.NewFromInt(5), ImageRef: "/uploads/old.png"})
		blobs := &fakeBlobs{}
		svc := newTestService(repo, blobs)

		p, err := svc.Update(ctx, "Burger", Input{Name: "Cheese Burger", Price: decimal.NewFromInt(6)}, nil)
		require.NoError(t, err)
		assert.Equal(t, "Cheese Burger", p.Name)
		assert.Equal(t, "/uploads/old.png", p.ImageRef)
		assert.Empty(t, blobs.deleted)

		_, err = repo.Get(ctx, "Burger")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("replaces image and drops the old one", func(t *testing.T) {
		repo := newMemRepo(Product{Name: "Burger", ImageRef: "/uploads/old.png"})
		blobs := &fakeBlobs{}
		svc := newTestService(repo, blobs)

		p, err := svc.Update(ctx, "Burger", Input{Name: "Burger", Price: decimal.NewFromInt(6)}, upload("new.png"))
		require.NoError(t, err)
		assert.Equal(t, "/uploads/products/20260301120000_new.png", p.ImageRef)
		assert.Equal(t, []string{"/uploads/old.png"}, blobs.deleted)
	})

	t.Run("unknown product", func(t *testing.T) {
		svc := newTestService(newMemRepo(), &fakeBlobs{})
		_, err := svc.Update(ctx, "Nope", Input{Name: "Nope"}, nil)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo(Product{Name: "Fries", ImageRef: "/uploads/fries.png"})
	blobs := &fakeBlobs{}
	svc := newTestService(repo, blobs)

	require.NoError(t, svc.Delete(ctx, "Fries"))
	assert.Equal(t, []string{"/uploads/fries.png"}, blobs.deleted)
	assert.ErrorIs(t, svc.Delete(ctx, "Fries"), ErrNotFound)
}

func TestService_Seed(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	svc := newTestService(repo, &fakeBlobs{})

	n, err := svc.Seed(ctx, DefaultSeed())
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	n, err = svc.Seed(ctx, DefaultSeed())
	require.NoError(t, err)
	assert.Zero(t, n, "non-empty catalog is left alone")
}

func TestParseSeed(t *testing.T) {
	products, err := ParseSeed([]byte(`
products:
  - name: Classic Burger
    price: "250"
    stock: 10
    image: /uploads/burger.png
  - name: Crispy Fries
    price: "4.00"
`))
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Classic Burger", products[0].Name)
	assert.True(t, products[0].Price.Equal(decimal.NewFromInt(250)))
	assert.Equal(t, 10, products[0].Available())
	assert.False(t, products[1].Tracked())

	_, err = ParseSeed([]byte("products:\n  - name: Bad\n    price: abc\n"))
	require.Error(t, err)
}
