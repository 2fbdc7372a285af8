package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/alper4283/intern-project-product-review/pkg/apierrors"
	"github.com/alper4283/intern-project-product-review/pkg/httpclient"
	"github.com/alper4283/intern-project-product-review/pkg/pagination"
	"github.com/alper4283/intern-project-product-review/pkg/validator"
)

// Client is the typed API client for the product-review backend.
type Client struct {
	http   *httpclient.Client
	tokens httpclient.TokenStore
	log    *slog.Logger
}

// New creates a catalog client. The token store receives the bearer token on
// successful login/register, and the transport reads it back on every call.
func New(http *httpclient.Client, tokens httpclient.TokenStore, log *slog.Logger) *Client {
	return &Client{
		http:   http,
		tokens: tokens,
		log:    log,
	}
}

// Register creates a new account and stores the returned bearer token.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	if err := validator.Validate(req); err != nil {
		return nil, err
	}

	var resp AuthResponse
	if err := httpclient.PostJSON(ctx, c.http, "/api/auth/register", req, &resp); err != nil {
		return nil, err
	}
	if err := c.tokens.Set(resp.Token); err != nil {
		return nil, fmt.Errorf("store token: %w", err)
	}

	c.log.InfoContext(ctx, "registered",
		slog.String("username", resp.Username),
		slog.String("role", resp.Role),
	)
	return &resp, nil
}

// Login authenticates and stores the returned bearer token.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if err := validator.Validate(req); err != nil {
		return nil, err
	}

	var resp AuthResponse
	if err := httpclient.PostJSON(ctx, c.http, "/api/auth/login", req, &resp); err != nil {
		return nil, err
	}
	if err := c.tokens.Set(resp.Token); err != nil {
		return nil, fmt.Errorf("store token: %w", err)
	}

	c.log.InfoContext(ctx, "logged in", slog.String("username", resp.Username))
	return &resp, nil
}

// Logout clears the stored token. Local only; the backend keeps no session.
func (c *Client) Logout() error {
	return c.tokens.Clear()
}

// ListProducts fetches one page of the product catalog. sort is a
// "<field>,<asc|desc>" directive; empty means the server default order.
func (c *Client) ListProducts(ctx context.Context, page, size int, sort string) (*pagination.Page[Product], error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))
	if sort != "" {
		q.Set("sort", sort)
	}

	var result pagination.Page[Product]
	if err := httpclient.GetJSON(ctx, c.http, "/api/products?"+q.Encode(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetProduct fetches the detail projection of a single product.
func (c *Client) GetProduct(ctx context.Context, id int64) (*Product, error) {
	var product Product
	if err := httpclient.GetJSON(ctx, c.http, fmt.Sprintf("/api/products/%d", id), &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// ListReviews fetches one page of a product's reviews, newest first. The
// endpoint returns either a page envelope or a bare array depending on the
// backend version; a bare array is normalized into a one-page window.
func (c *Client) ListReviews(ctx context.Context, productID int64, page, size int) (*pagination.Page[Review], error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))
	q.Set("sort", SortKey(FieldCreatedAt, Desc))

	path := fmt.Sprintf("/api/products/%d/reviews?%s", productID, q.Encode())

	var raw json.RawMessage
	if err := httpclient.GetJSON(ctx, c.http, path, &raw); err != nil {
		return nil, err
	}
	return decodeReviewPage(c.http.BaseURL()+path, raw)
}

// AddReview submits a new review. The rating is validated locally; an
// out-of-range rating fails fast without issuing a request. A blank comment
// is omitted from the request body.
func (c *Client) AddReview(ctx context.Context, productID int64, rating int, comment string) (*Review, error) {
	req := AddReviewRequest{Rating: rating}
	if trimmed := strings.TrimSpace(comment); trimmed != "" {
		req.Comment = &trimmed
	}
	if err := validator.Validate(req); err != nil {
		return nil, err
	}

	var created Review
	path := fmt.Sprintf("/api/products/%d/reviews", productID)
	if err := httpclient.PostJSON(ctx, c.http, path, req, &created); err != nil {
		return nil, err
	}

	c.log.InfoContext(ctx, "review submitted",
		slog.Int64("product_id", productID),
		slog.Int64("review_id", created.ID),
		slog.Int("rating", created.Rating),
	)
	return &created, nil
}

// decodeReviewPage accepts either a page envelope or a bare review array.
func decodeReviewPage(url string, raw json.RawMessage) (*pagination.Page[Review], error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		page := pagination.FromSlice[Review](nil)
		return &page, nil
	}

	if trimmed[0] == '[' {
		var reviews []Review
		if err := json.Unmarshal(trimmed, &reviews); err != nil {
			return nil, &apierrors.ParseError{URL: url, Err: err}
		}
		page := pagination.FromSlice(reviews)
		return &page, nil
	}

	var page pagination.Page[Review]
	if err := json.Unmarshal(trimmed, &page); err != nil {
		return nil, &apierrors.ParseError{URL: url, Err: err}
	}
	return &page, nil
}
