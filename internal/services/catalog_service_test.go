package services_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"

	"ecofinds/internal/catalogapi"
	"ecofinds/internal/repos"
	"ecofinds/internal/services"
)

// fakeCatalog serves a 35-product remote catalog with working pagination and
// counts hits on the listing endpoints.
func fakeCatalog(t *testing.T) (*httptest.Server, *int) {
	t.Helper()
	hits := 0
	const total = 35

	writePage := func(w http.ResponseWriter, limit, skip int) {
		type item struct {
			ID       int     `json:"id"`
			Title    string  `json:"title"`
			Price    float64 `json:"price"`
			Category string  `json:"category"`
			Stock    int     `json:"stock"`
		}
		var items []item
		for i := skip + 1; i <= total && i <= skip+limit; i++ {
			cat := "smartphones"
			if i%2 == 0 {
				cat = "laptops"
			}
			items = append(items, item{ID: i, Title: fmt.Sprintf("Item %d", i), Price: float64(i), Category: cat, Stock: i})
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"products": items, "total": total, "skip": skip, "limit": limit,
		})
	}
	parse := func(r *http.Request, key string, def int) int {
		if n, err := strconv.Atoi(r.URL.Query().Get(key)); err == nil {
			return n
		}
		return def
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/products", func(w http.ResponseWriter, r *http.Request) {
		hits++
		writePage(w, parse(r, "limit", 20), parse(r, "skip", 0))
	})
	mux.HandleFunc("/products/search", func(w http.ResponseWriter, r *http.Request) {
		hits++
		writePage(w, parse(r, "limit", 20), parse(r, "skip", 0))
	})
	mux.HandleFunc("/products/categories", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`["smartphones","laptops"]`))
	})
	return httptest.NewServer(mux), &hits
}

func newCatalog(t *testing.T, baseURL string, kv *repos.KV) *services.CatalogService {
	t.Helper()
	if kv == nil {
		kv = memkv(t)
	}
	svc := services.NewCatalogService(catalogapi.New(baseURL), kv)
	svc.Init(context.Background())
	return svc
}

func TestInitLoadsCategories(t *testing.T) {
	srv, _ := fakeCatalog(t)
	defer srv.Close()
	svc := newCatalog(t, srv.URL, nil)

	cats := svc.Categories()
	if len(cats) != 2 || cats[0].Slug != "smartphones" {
		t.Fatalf("bad categories: %+v", cats)
	}
}

func TestLoadProductsSetsRemoteAndCursor(t *testing.T) {
	srv, _ := fakeCatalog(t)
	defer srv.Close()
	svc := newCatalog(t, srv.URL, nil)

	if err := svc.LoadProducts(context.Background(), "", "all", 0, false); err != nil {
		t.Fatal(err)
	}
	if got := len(svc.AllProducts()); got != 20 {
		t.Fatalf("want 20 products, got %d", got)
	}
	cur := svc.Cursor()
	if cur.Skip != 0 || cur.Limit != 20 || cur.Total != 35 {
		t.Fatalf("bad cursor: %+v", cur)
	}
	if svc.Loading() || svc.Err() != "" {
		t.Fatalf("loading=%v err=%q after success", svc.Loading(), svc.Err())
	}
}

func TestLoadMoreAppendsThenStops(t *testing.T) {
	srv, hits := fakeCatalog(t)
	defer srv.Close()
	svc := newCatalog(t, srv.URL, nil)

	if err := svc.LoadProducts(context.Background(), "", "all", 0, false); err != nil {
		t.Fatal(err)
	}
	if err := svc.LoadMore(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := len(svc.AllProducts()); got != 35 {
		t.Fatalf("want 35 after load more, got %d", got)
	}
	cur := svc.Cursor()
	if cur.Skip != 20 || cur.Total != 35 {
		t.Fatalf("bad cursor after load more: %+v", cur)
	}

	// skip+limit >= total: no further fetch may happen
	before := *hits
	if err := svc.LoadMore(context.Background()); err != nil {
		t.Fatal(err)
	}
	if *hits != before {
		t.Fatalf("load more past the end still fetched (%d -> %d)", before, *hits)
	}
	if got := len(svc.AllProducts()); got != 35 {
		t.Fatalf("product list changed on no-op load more: %d", got)
	}
}

func TestSearchAndCategoryFiltersCompose(t *testing.T) {
	srv, _ := fakeCatalog(t)
	defer srv.Close()
	svc := newCatalog(t, srv.URL, nil)

	if err := svc.FilterByCategory(context.Background(), "laptops"); err != nil {
		t.Fatal(err)
	}
	if err := svc.SearchProducts(context.Background(), "item"); err != nil {
		t.Fatal(err)
	}

	// search kept the category filter: only even-id (laptops) items remain
	for _, p := range svc.AllProducts() {
		if p.Category != "laptops" {
			t.Fatalf("category filter lost on search: %+v", p)
		}
	}
}

func TestLocalLookupSurvivesRemoteOutage(t *testing.T) {
	srv, _ := fakeCatalog(t)
	kv := memkv(t)
	svc := newCatalog(t, srv.URL, kv)

	added := svc.AddProduct(services.ProductData{
		Title: "Old Bike", Price: 80, Category: "sports", Condition: "SECOND_HAND", Stock: 1,
	}, "u-1")

	srv.Close() // remote now unreachable

	got := svc.GetProductByID(context.Background(), added.ID)
	if got == nil || got.Title != "Old Bike" {
		t.Fatalf("local product must resolve without the remote: %+v", got)
	}
	if got.Provenance != "local" || got.CreatedAt == "" || got.UpdatedAt == "" {
		t.Fatalf("missing synthesized fields: %+v", got)
	}

	// unknown id falls through to the dead remote and yields nil, not an error
	if p := svc.GetProductByID(context.Background(), "999"); p != nil {
		t.Fatalf("want nil for unknown id during outage, got %+v", p)
	}
}

func TestLocalCRUDWritesThrough(t *testing.T) {
	srv, _ := fakeCatalog(t)
	defer srv.Close()
	kv := memkv(t)
	svc := newCatalog(t, srv.URL, kv)

	a := svc.AddProduct(services.ProductData{Title: "Lamp", Price: 10, Category: "lighting"}, "u-1")
	b := svc.AddProduct(services.ProductData{Title: "Chair", Price: 25, Category: "furniture"}, "u-2")

	// newest first in the merged view
	all := svc.AllProducts()
	if all[0].ID != b.ID || all[1].ID != a.ID {
		t.Fatalf("local products not most-recent-first: %v, %v", all[0].Title, all[1].Title)
	}

	// update merges, bumps UpdatedAt, persists
	price := 12.5
	active := false
	upd := svc.UpdateProduct(a.ID, services.ProductPatch{Price: &price, Active: &active})
	if upd == nil || upd.Price != 12.5 || upd.Active {
		t.Fatalf("bad update: %+v", upd)
	}
	if upd.UpdatedAt < upd.CreatedAt {
		t.Fatalf("UpdatedAt not bumped: %+v", upd)
	}

	// unknown id is a no-op returning nil
	if svc.UpdateProduct("missing", services.ProductPatch{Price: &price}) != nil {
		t.Fatal("update of unknown id should return nil")
	}

	svc.DeleteProduct(b.ID)

	// restart-equivalent reload sees the delete and the update
	fresh := newCatalog(t, srv.URL, kv)
	if fresh.GetProductByID(context.Background(), b.ID) != nil {
		t.Fatal("deleted product still resolvable after reload")
	}
	got := fresh.GetProductByID(context.Background(), a.ID)
	if got == nil || got.Price != 12.5 {
		t.Fatalf("update not persisted: %+v", got)
	}

	if prods := fresh.UserProducts("u-2"); len(prods) != 0 {
		t.Fatalf("owner filter broken: %+v", prods)
	}
	if prods := fresh.UserProducts("u-1"); len(prods) != 1 {
		t.Fatalf("owner filter broken: %+v", prods)
	}
}

func TestStaleResponseIsDropped(t *testing.T) {
	// The first listing response is held open until a second load has
	// fully completed; the late response must not overwrite newer state.
	firstArrived := make(chan struct{})
	release := make(chan struct{})
	var calls int32

	mux := http.NewServeMux()
	mux.HandleFunc("/products", func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			close(firstArrived)
			<-release
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"products":[{"id":1,"title":"Stale","price":1,"category":"laptops","stock":1}],"total":111,"skip":0,"limit":20}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"products":[{"id":2,"title":"Fresh","price":2,"category":"laptops","stock":2}],"total":35,"skip":0,"limit":20}`))
	})
	mux.HandleFunc("/products/categories", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`["laptops"]`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	defer close(release)

	svc := newCatalog(t, srv.URL, nil)

	done := make(chan error, 1)
	go func() {
		done <- svc.LoadProducts(context.Background(), "", "all", 0, false)
	}()
	<-firstArrived

	// second load wins while the first is still in flight
	if err := svc.LoadProducts(context.Background(), "", "all", 0, false); err != nil {
		t.Fatal(err)
	}
	release <- struct{}{}
	if err := <-done; err != nil {
		t.Fatalf("dropped stale load should not report an error: %v", err)
	}

	all := svc.AllProducts()
	if len(all) != 1 || all[0].Title != "Fresh" {
		t.Fatalf("stale response overwrote newer state: %+v", all)
	}
	if cur := svc.Cursor(); cur.Total != 35 {
		t.Fatalf("stale response overwrote cursor: %+v", cur)
	}
	if svc.Loading() {
		t.Fatal("loading must stay clear after the stale response lands")
	}
}

func TestLoadFailureSetsErrorAndClearsLoading(t *testing.T) {
	srv, _ := fakeCatalog(t)
	svc := newCatalog(t, srv.URL, nil)
	srv.Close()

	err := svc.LoadProducts(context.Background(), "", "all", 0, false)
	if err == nil {
		t.Fatal("expected load error")
	}
	if svc.Err() == "" {
		t.Fatal("error string should be retained for the UI")
	}
	if svc.Loading() {
		t.Fatal("loading must clear on failure")
	}
	if got := len(svc.AllProducts()); got != 0 {
		t.Fatalf("failed load should leave an empty remote list, got %d", got)
	}
}
