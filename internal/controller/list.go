// Package controller implements the per-screen state containers that drive
// the catalog API: a paginated product list and a product detail view with
// review submission. Controllers accumulate pages, deduplicate by identity,
// and guard against stale responses after a reset or navigation.
package controller

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/alper4283/intern-project-product-review/internal/catalog"
	"github.com/alper4283/intern-project-product-review/pkg/pagination"
)

// ProductSource fetches pages of the product catalog.
type ProductSource interface {
	ListProducts(ctx context.Context, page, size int, sort string) (*pagination.Page[catalog.Product], error)
}

// ListState is a point-in-time snapshot of the list controller.
type ListState struct {
	Items    []catalog.Product
	Page     int
	IsLast   bool
	InFlight bool
	Err      string
	Sort     string
	Search   string
	Category string
}

// ListController owns the accumulated product list for one screen. It
// enforces at most one outstanding page fetch, merges incoming pages with
// identity deduplication, and only advances the page cursor when a fetch
// added at least one new item.
type ListController struct {
	src      ProductSource
	log      *slog.Logger
	pageSize int

	mu         sync.Mutex
	generation uint64
	items      []catalog.Product
	page       int
	isLast     bool
	inFlight   bool
	errMsg     string
	sort       string
	search     string
	category   string
}

// NewListController creates a list controller with empty state. Pass an
// empty sort to use the server's default ordering.
func NewListController(src ProductSource, log *slog.Logger, pageSize int, sort string) *ListController {
	return &ListController{
		src:      src,
		log:      log,
		pageSize: pageSize,
		sort:     sort,
	}
}

// LoadFirstPage clears the accumulated list and fetches page zero for the
// active sort. It supersedes any fetch still outstanding: the stale result
// is discarded on arrival via the generation check.
func (c *ListController) LoadFirstPage(ctx context.Context) error {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.items = nil
	c.page = 0
	c.isLast = false
	c.errMsg = ""
	c.inFlight = true
	sort := c.sort
	c.mu.Unlock()

	return c.fetch(ctx, gen, 0, sort)
}

// LoadNextPage fetches the page at the current cursor. It is a no-op,
// returning false, when a fetch is already outstanding or the list is
// exhausted for the current sort. The dropped trigger is not queued.
func (c *ListController) LoadNextPage(ctx context.Context) (bool, error) {
	c.mu.Lock()
	if c.inFlight || c.isLast {
		c.mu.Unlock()
		return false, nil
	}
	c.generation++
	gen := c.generation
	c.inFlight = true
	c.errMsg = ""
	page := c.page
	sort := c.sort
	c.mu.Unlock()

	return true, c.fetch(ctx, gen, page, sort)
}

func (c *ListController) fetch(ctx context.Context, gen uint64, page int, sort string) error {
	resp, err := c.src.ListProducts(ctx, page, c.pageSize, sort)

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		// A reset superseded this fetch while it was outstanding.
		c.log.DebugContext(ctx, "discarding stale page fetch", slog.Int("page", page))
		return nil
	}

	c.inFlight = false

	if err != nil {
		c.errMsg = err.Error()
		c.log.WarnContext(ctx, "product page fetch failed",
			slog.Int("page", page),
			slog.String("error", err.Error()),
		)
		return err
	}

	merged, added := pagination.MergeByKey(c.items, resp.Content, productKey)
	c.items = merged

	// Advance only on progress; a page of already-seen identities would
	// otherwise be requested forever under an unstable server sort.
	if added > 0 {
		c.page = page + 1
	}
	c.isLast = resp.Last || added == 0

	c.log.DebugContext(ctx, "product page merged",
		slog.Int("page", page),
		slog.Int("added", added),
		slog.Int("total", len(merged)),
		slog.Bool("last", c.isLast),
	)
	return nil
}

// SetSort replaces the active sort key and reloads from the first page. The
// server is the ordering authority; sort changes are never applied locally.
func (c *ListController) SetSort(ctx context.Context, sort string) error {
	c.mu.Lock()
	c.sort = sort
	c.mu.Unlock()

	return c.LoadFirstPage(ctx)
}

// SetSearch sets the local name filter. No network call: the filter applies
// to the already-accumulated items at read time.
func (c *ListController) SetSearch(q string) {
	c.mu.Lock()
	c.search = q
	c.mu.Unlock()
}

// SetCategory sets the local category filter. Like SetSearch this is purely
// client-side; pagination continues against the unfiltered collection.
func (c *ListController) SetCategory(category string) {
	c.mu.Lock()
	c.category = category
	c.mu.Unlock()
}

// Snapshot returns a copy of the current state.
func (c *ListController) Snapshot() ListState {
	c.mu.Lock()
	defer c.mu.Unlock()

	items := make([]catalog.Product, len(c.items))
	copy(items, c.items)

	return ListState{
		Items:    items,
		Page:     c.page,
		IsLast:   c.isLast,
		InFlight: c.inFlight,
		Err:      c.errMsg,
		Sort:     c.sort,
		Search:   c.search,
		Category: c.category,
	}
}

// VisibleItems applies the local search and category filters to the
// accumulated list: case-insensitive substring match on the name, exact
// match on the category.
func (c *ListController) VisibleItems() []catalog.Product {
	c.mu.Lock()
	defer c.mu.Unlock()

	search := strings.ToLower(strings.TrimSpace(c.search))

	visible := make([]catalog.Product, 0, len(c.items))
	for _, p := range c.items {
		if c.category != "" && p.Category != c.category {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		visible = append(visible, p)
	}
	return visible
}

func productKey(p catalog.Product) int64 {
	return p.ID
}
