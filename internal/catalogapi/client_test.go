package catalogapi_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"ecofinds/internal/catalogapi"
	"ecofinds/internal/domain"
)

func fakeAPI(t *testing.T) (*httptest.Server, *[]string) {
	t.Helper()
	var paths []string
	mux := http.NewServeMux()
	mux.HandleFunc("/products/search", func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"products":[
			{"id":1,"title":"iPhone 9","price":549,"category":"smartphones","stock":94,"reviews":[{"rating":5},{"rating":4}]},
			{"id":2,"title":"Laptop Pro","price":1749,"category":"laptops","stock":2,"reviews":3}
		],"total":2,"skip":0,"limit":20}`))
	})
	mux.HandleFunc("/products/categories", func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"slug":"smartphones","name":"Smartphones"},"laptops"]`))
	})
	mux.HandleFunc("/products/7", func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":7,"title":"Perfume Oil","price":13,"category":"fragrances","stock":65}`))
	})
	mux.HandleFunc("/products", func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path+"?"+r.URL.RawQuery)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"products":[
			{"id":1,"title":"iPhone 9","price":549,"category":"smartphones","stock":94},
			{"id":3,"title":"Classic Sofa","price":899,"category":"furniture","stock":4}
		],"total":100,"skip":0,"limit":20}`))
	})
	return httptest.NewServer(mux), &paths
}

func TestFetchProductsUsesSearchEndpoint(t *testing.T) {
	srv, paths := fakeAPI(t)
	defer srv.Close()
	c := catalogapi.New(srv.URL)

	page, err := c.FetchProducts(context.Background(), 20, 0, "phone", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(*paths) != 1 || (*paths)[0] != "/products/search" {
		t.Fatalf("expected search endpoint, got %v", *paths)
	}
	if len(page.Products) != 2 || page.Total != 2 {
		t.Fatalf("bad page: %+v", page)
	}
	p := page.Products[0]
	if p.ID != "1" || p.Provenance != domain.ProvenanceRemote {
		t.Fatalf("bad remote product identity: %+v", p)
	}
	// reviews as array -> count; reviews as number -> number
	if p.Reviews != 2 || page.Products[1].Reviews != 3 {
		t.Fatalf("bad review counts: %d, %d", p.Reviews, page.Products[1].Reviews)
	}
}

func TestFetchProductsCategoryFilterIsClientSide(t *testing.T) {
	srv, _ := fakeAPI(t)
	defer srv.Close()
	c := catalogapi.New(srv.URL)

	page, err := c.FetchProducts(context.Background(), 20, 0, "", "SMART")
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Products) != 1 || page.Products[0].Category != "smartphones" {
		t.Fatalf("case-insensitive substring filter failed: %+v", page.Products)
	}
	// total reflects the server window, not the filtered slice
	if page.Total != 100 {
		t.Fatalf("want total=100, got %d", page.Total)
	}
}

func TestFetchProductsSentinelAllSkipsFilter(t *testing.T) {
	srv, _ := fakeAPI(t)
	defer srv.Close()
	c := catalogapi.New(srv.URL)

	page, err := c.FetchProducts(context.Background(), 20, 0, "", "all")
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Products) != 2 {
		t.Fatalf("'all' should not filter, got %+v", page.Products)
	}
}

func TestFetchProductsFailureYieldsEmptyPage(t *testing.T) {
	srv, _ := fakeAPI(t)
	srv.Close() // unreachable
	c := catalogapi.New(srv.URL)

	page, err := c.FetchProducts(context.Background(), 20, 0, "", "")
	if err == nil {
		t.Fatal("expected error from unreachable server")
	}
	if len(page.Products) != 0 || page.Total != 0 || page.Skip != 0 || page.Limit != 0 {
		t.Fatalf("want empty page on failure, got %+v", page)
	}
}

func TestFetchProductByID(t *testing.T) {
	srv, _ := fakeAPI(t)
	defer srv.Close()
	c := catalogapi.New(srv.URL)

	p := c.FetchProductByID(context.Background(), "7")
	if p == nil || p.Title != "Perfume Oil" || p.ID != "7" {
		t.Fatalf("bad product: %+v", p)
	}

	srv.Close()
	if p := c.FetchProductByID(context.Background(), "7"); p != nil {
		t.Fatalf("want nil on failure, got %+v", p)
	}
}

func TestFetchCategoriesMixedShapes(t *testing.T) {
	srv, _ := fakeAPI(t)
	defer srv.Close()
	c := catalogapi.New(srv.URL)

	cats := c.FetchCategories(context.Background())
	if len(cats) != 2 {
		t.Fatalf("want 2 categories, got %+v", cats)
	}
	if cats[0].Slug != "smartphones" || cats[0].Name != "Smartphones" {
		t.Fatalf("object form mis-decoded: %+v", cats[0])
	}
	if cats[1].Slug != "laptops" || cats[1].Name != "laptops" {
		t.Fatalf("string form mis-decoded: %+v", cats[1])
	}
}

func TestFetchCategoriesFallbackOnFailure(t *testing.T) {
	srv, _ := fakeAPI(t)
	srv.Close()
	c := catalogapi.New(srv.URL)

	cats := c.FetchCategories(context.Background())
	if len(cats) != 20 {
		t.Fatalf("want the 20-slug fallback, got %d", len(cats))
	}
	if cats[0].Slug != "smartphones" {
		t.Fatalf("unexpected fallback head: %+v", cats[0])
	}
}
