package services

import (
	"context"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"ecofinds/internal/catalogapi"
	"ecofinds/internal/domain"
	applog "ecofinds/internal/log"
	"ecofinds/internal/repos"
)

const pageSize = 20

// CatalogService merges the remotely-fetched catalog with locally-authored
// listings. Remote products are ephemeral; local products write through to
// the kv store on every mutation.
type CatalogService struct {
	Client *catalogapi.Client
	KV     *repos.KV

	mu         sync.Mutex
	remote     []domain.Product
	local      []domain.Product
	categories []domain.Category
	cursor     domain.Cursor
	query      string
	category   string
	loading    bool
	errMsg     string
	// gen invalidates in-flight loads: a response whose generation is no
	// longer current must not overwrite newer state.
	gen uint64
}

func NewCatalogService(client *catalogapi.Client, kv *repos.KV) *CatalogService {
	return &CatalogService{Client: client, KV: kv, category: "all", cursor: domain.Cursor{Limit: pageSize}}
}

// Init loads categories and local products once.
func (s *CatalogService) Init(ctx context.Context) {
	cats := s.Client.FetchCategories(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories = cats
	var local []domain.Product
	if s.KV.Load(repos.KeyLocalProducts, &local) {
		s.local = local
	}
}

// LoadProducts fetches one remote page. append=true concatenates onto the
// current remote list ("load more"); otherwise the list is replaced. The
// returned error is also retained as the store's user-visible error string.
func (s *CatalogService) LoadProducts(ctx context.Context, query, category string, skip int, appendPage bool) error {
	s.mu.Lock()
	s.loading = true
	s.errMsg = ""
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	page, err := s.Client.FetchProducts(ctx, pageSize, skip, query, category)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		// A newer load finished (or started) after this one; drop it.
		applog.Info(nil, "catalog.load.stale", map[string]any{"skip": skip})
		return nil
	}
	s.loading = false
	if err != nil {
		s.errMsg = err.Error()
		return err
	}
	if appendPage {
		s.remote = append(s.remote, page.Products...)
	} else {
		s.remote = page.Products
	}
	s.cursor = domain.Cursor{Skip: page.Skip, Limit: page.Limit, Total: page.Total}
	return nil
}

// SearchProducts sets the search filter and reloads from the start, keeping
// the current category filter; the two filters compose.
func (s *CatalogService) SearchProducts(ctx context.Context, query string) error {
	s.mu.Lock()
	s.query = query
	category := s.category
	s.mu.Unlock()
	return s.LoadProducts(ctx, query, category, 0, false)
}

// FilterByCategory sets the category filter and reloads from the start,
// keeping the current search query.
func (s *CatalogService) FilterByCategory(ctx context.Context, category string) error {
	s.mu.Lock()
	s.category = category
	query := s.query
	s.mu.Unlock()
	return s.LoadProducts(ctx, query, category, 0, false)
}

// LoadMore advances the cursor by one page; no-op once the window covers the
// remote total.
func (s *CatalogService) LoadMore(ctx context.Context) error {
	s.mu.Lock()
	nextSkip := s.cursor.Skip + s.cursor.Limit
	if nextSkip >= s.cursor.Total {
		s.mu.Unlock()
		return nil
	}
	query, category := s.query, s.category
	s.mu.Unlock()
	return s.LoadProducts(ctx, query, category, nextSkip, true)
}

// GetProductByID checks local products first, then falls back to the remote
// client. Returns nil when neither yields a result; remote failures are
// swallowed here.
func (s *CatalogService) GetProductByID(ctx context.Context, id string) *domain.Product {
	s.mu.Lock()
	for _, p := range s.local {
		if p.ID == id {
			cp := p
			s.mu.Unlock()
			return &cp
		}
	}
	s.mu.Unlock()
	return s.Client.FetchProductByID(ctx, id)
}

type ProductData struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Category    string   `json:"category"`
	Brand       string   `json:"brand"`
	Condition   string   `json:"condition"`
	Stock       int      `json:"stock"`
	Images      []string `json:"images"`
	Thumbnail   string   `json:"thumbnail"`
}

// AddProduct creates a local listing with a timestamp-derived id, prepends
// it, and persists the whole local list.
func (s *CatalogService) AddProduct(data ProductData, userID string) domain.Product {
	now := time.Now().UTC().Format(time.RFC3339)
	p := domain.Product{
		ID:          ulid.Make().String(),
		Provenance:  domain.ProvenanceLocal,
		Title:       data.Title,
		Description: data.Description,
		Price:       data.Price,
		Category:    data.Category,
		Brand:       data.Brand,
		Condition:   data.Condition,
		Stock:       data.Stock,
		Active:      true,
		Images:      data.Images,
		Thumbnail:   data.Thumbnail,
		UserID:      userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.local = append([]domain.Product{p}, s.local...)
	s.KV.Save(repos.KeyLocalProducts, s.local)
	return p
}

// ProductPatch covers the mutable listing fields. Stock is a count; Active
// is the listings UI's visibility toggle. They are deliberately separate.
type ProductPatch struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Price       *float64  `json:"price,omitempty"`
	Category    *string   `json:"category,omitempty"`
	Brand       *string   `json:"brand,omitempty"`
	Condition   *string   `json:"condition,omitempty"`
	Stock       *int      `json:"stock,omitempty"`
	Active      *bool     `json:"active,omitempty"`
	Images      *[]string `json:"images,omitempty"`
	Thumbnail   *string   `json:"thumbnail,omitempty"`
}

// UpdateProduct merges the patch into a local product, bumps UpdatedAt, and
// persists. Returns nil if no local product has that id (remote products
// are read-only).
func (s *CatalogService) UpdateProduct(id string, patch ProductPatch) *domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.local {
		if s.local[i].ID != id {
			continue
		}
		p := &s.local[i]
		if patch.Title != nil {
			p.Title = *patch.Title
		}
		if patch.Description != nil {
			p.Description = *patch.Description
		}
		if patch.Price != nil {
			p.Price = *patch.Price
		}
		if patch.Category != nil {
			p.Category = *patch.Category
		}
		if patch.Brand != nil {
			p.Brand = *patch.Brand
		}
		if patch.Condition != nil {
			p.Condition = *patch.Condition
		}
		if patch.Stock != nil {
			p.Stock = *patch.Stock
		}
		if patch.Active != nil {
			p.Active = *patch.Active
		}
		if patch.Images != nil {
			p.Images = *patch.Images
		}
		if patch.Thumbnail != nil {
			p.Thumbnail = *patch.Thumbnail
		}
		p.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
		s.KV.Save(repos.KeyLocalProducts, s.local)
		cp := *p
		return &cp
	}
	return nil
}

// DeleteProduct removes a local listing and persists.
func (s *CatalogService) DeleteProduct(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.local[:0]
	for _, p := range s.local {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	s.local = kept
	s.KV.Save(repos.KeyLocalProducts, s.local)
}

// UserProducts filters local listings by owner.
func (s *CatalogService) UserProducts(userID string) []domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Product
	for _, p := range s.local {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out
}

// AllProducts is the merged view: local products (most recent first)
// concatenated before remote products in API order.
func (s *CatalogService) AllProducts() []domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Product, 0, len(s.local)+len(s.remote))
	out = append(out, s.local...)
	out = append(out, s.remote...)
	return out
}

func (s *CatalogService) Categories() []domain.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Category(nil), s.categories...)
}

func (s *CatalogService) Cursor() domain.Cursor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

func (s *CatalogService) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

func (s *CatalogService) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}
