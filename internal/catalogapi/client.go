package catalogapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"ecofinds/internal/domain"
	applog "ecofinds/internal/log"
)

// Client talks to the remote product API. Transport and HTTP failures are
// absorbed: list calls come back as an empty page plus the error for the
// store's error banner, and never as a panic or a partial decode.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 15 * time.Second},
	}
}

type Page struct {
	Products []domain.Product `json:"products"`
	Total    int              `json:"total"`
	Skip     int              `json:"skip"`
	Limit    int              `json:"limit"`
}

// apiProduct is the wire shape; ids are numeric and reviews may be a count
// or an array.
type apiProduct struct {
	ID                 int             `json:"id"`
	Title              string          `json:"title"`
	Description        string          `json:"description"`
	Price              float64         `json:"price"`
	Category           string          `json:"category"`
	Brand              string          `json:"brand"`
	DiscountPercentage float64         `json:"discountPercentage"`
	Stock              int             `json:"stock"`
	Images             []string        `json:"images"`
	Thumbnail          string          `json:"thumbnail"`
	Rating             float64         `json:"rating"`
	Reviews            json.RawMessage `json:"reviews"`
}

type apiPage struct {
	Products []apiProduct `json:"products"`
	Total    int          `json:"total"`
	Skip     int          `json:"skip"`
	Limit    int          `json:"limit"`
}

func (p apiProduct) toDomain() domain.Product {
	return domain.Product{
		ID:                 strconv.Itoa(p.ID),
		Provenance:         domain.ProvenanceRemote,
		Title:              p.Title,
		Description:        p.Description,
		Price:              p.Price,
		Category:           p.Category,
		Brand:              p.Brand,
		DiscountPercentage: p.DiscountPercentage,
		Stock:              p.Stock,
		Active:             true,
		Images:             p.Images,
		Thumbnail:          p.Thumbnail,
		Rating:             p.Rating,
		Reviews:            reviewCount(p.Reviews),
	}
}

// reviewCount accepts either a bare count or an array of review objects.
func reviewCount(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}
	var arr []json.RawMessage
	if err := json.Unmarshal(raw, &arr); err == nil {
		return len(arr)
	}
	return 0
}

func (c *Client) getJSON(ctx context.Context, u string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("catalog api: unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}

// FetchProducts returns one page of the remote catalog. A non-empty search
// routes to the search endpoint; a category other than "all" is filtered
// client-side by case-insensitive substring match, since the search endpoint
// cannot combine both.
func (c *Client) FetchProducts(ctx context.Context, limit, skip int, search, category string) (Page, error) {
	u := fmt.Sprintf("%s/products?limit=%d&skip=%d", c.BaseURL, limit, skip)
	if search != "" {
		u = fmt.Sprintf("%s/products/search?q=%s&limit=%d&skip=%d",
			c.BaseURL, url.QueryEscape(search), limit, skip)
	}

	var page apiPage
	if err := c.getJSON(ctx, u, &page); err != nil {
		applog.Error(nil, "catalogapi.products", err, map[string]any{"search": search, "skip": skip})
		return Page{Products: []domain.Product{}}, err
	}

	out := Page{Total: page.Total, Skip: page.Skip, Limit: page.Limit}
	for _, p := range page.Products {
		if category != "" && category != "all" &&
			!strings.Contains(strings.ToLower(p.Category), strings.ToLower(category)) {
			continue
		}
		out.Products = append(out.Products, p.toDomain())
	}
	if out.Products == nil {
		out.Products = []domain.Product{}
	}
	return out, nil
}

// FetchProductByID returns nil on any failure.
func (c *Client) FetchProductByID(ctx context.Context, id string) *domain.Product {
	var p apiProduct
	if err := c.getJSON(ctx, c.BaseURL+"/products/"+url.PathEscape(id), &p); err != nil {
		applog.Error(nil, "catalogapi.product", err, map[string]any{"id": id})
		return nil
	}
	d := p.toDomain()
	return &d
}

// FetchCategories returns the remote category list, or the fixed fallback
// set on failure so the category filter is never empty.
func (c *Client) FetchCategories(ctx context.Context) []domain.Category {
	var raw []json.RawMessage
	if err := c.getJSON(ctx, c.BaseURL+"/products/categories", &raw); err != nil {
		applog.Error(nil, "catalogapi.categories", err, nil)
		return fallbackCategories()
	}

	out := make([]domain.Category, 0, len(raw))
	for _, r := range raw {
		// The endpoint has shipped both plain strings and {slug,name} objects.
		var s string
		if err := json.Unmarshal(r, &s); err == nil {
			out = append(out, domain.Category{Slug: s, Name: s})
			continue
		}
		var cat domain.Category
		if err := json.Unmarshal(r, &cat); err == nil && cat.Slug != "" {
			if cat.Name == "" {
				cat.Name = cat.Slug
			}
			out = append(out, cat)
		}
	}
	if len(out) == 0 {
		return fallbackCategories()
	}
	return out
}

var fallbackSlugs = []string{
	"smartphones", "laptops", "fragrances", "skincare", "groceries",
	"home-decoration", "furniture", "tops", "womens-dresses", "womens-shoes",
	"mens-shirts", "mens-shoes", "mens-watches", "womens-watches",
	"womens-bags", "womens-jewellery", "sunglasses", "automotive",
	"motorcycle", "lighting",
}

func fallbackCategories() []domain.Category {
	out := make([]domain.Category, len(fallbackSlugs))
	for i, s := range fallbackSlugs {
		out[i] = domain.Category{Slug: s, Name: s}
	}
	return out
}
