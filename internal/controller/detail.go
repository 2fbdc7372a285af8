package controller

import (
	"context"
	"log/slog"
	"sync"

	"github.com/alper4283/intern-project-product-review/internal/catalog"
	"github.com/alper4283/intern-project-product-review/pkg/apierrors"
	"github.com/alper4283/intern-project-product-review/pkg/pagination"
)

// DetailSource fetches a single product, its reviews, and submits new ones.
type DetailSource interface {
	GetProduct(ctx context.Context, id int64) (*catalog.Product, error)
	ListReviews(ctx context.Context, productID int64, page, size int) (*pagination.Page[catalog.Review], error)
	AddReview(ctx context.Context, productID int64, rating int, comment string) (*catalog.Review, error)
}

// DetailState is a point-in-time snapshot of the detail controller.
type DetailState struct {
	ProductID   int64
	Loading     bool
	Err         string
	Product     *catalog.Product
	Reviews     []catalog.Review
	ReviewPage  int
	ReviewsLast bool
	Submitting  bool
	SubmitErr   string
}

// DetailController owns the state of one product detail screen: the detail
// projection, the accumulated review pages, and the optimistic aggregate
// applied when a review is submitted.
type DetailController struct {
	src      DetailSource
	log      *slog.Logger
	pageSize int

	mu              sync.Mutex
	generation      uint64
	productID       int64
	loading         bool
	errMsg          string
	product         *catalog.Product
	reviews         []catalog.Review
	reviewPage      int
	reviewsLast     bool
	reviewsInFlight bool
	submitting      bool
	submitErr       string
}

// NewDetailController creates a detail controller with empty state.
func NewDetailController(src DetailSource, log *slog.Logger, pageSize int) *DetailController {
	return &DetailController{
		src:      src,
		log:      log,
		pageSize: pageSize,
	}
}

// Load fetches the detail projection and the first review page concurrently.
// Both must succeed; a failure on either leg discards any previous product
// and leaves the controller in the error state. A load that resolves after
// the focus moved to another product is discarded.
func (c *DetailController) Load(ctx context.Context, id int64) error {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.productID = id
	c.loading = true
	c.errMsg = ""
	c.product = nil
	c.reviews = nil
	c.reviewPage = 0
	c.reviewsLast = false
	c.reviewsInFlight = false
	c.submitting = false
	c.submitErr = ""
	c.mu.Unlock()

	var (
		wg         sync.WaitGroup
		product    *catalog.Product
		productErr error
		reviews    *pagination.Page[catalog.Review]
		reviewsErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		product, productErr = c.src.GetProduct(ctx, id)
	}()
	go func() {
		defer wg.Done()
		reviews, reviewsErr = c.src.ListReviews(ctx, id, 0, c.pageSize)
	}()
	wg.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		c.log.DebugContext(ctx, "discarding stale detail load", slog.Int64("product_id", id))
		return nil
	}

	c.loading = false

	err := productErr
	if err == nil {
		err = reviewsErr
	}
	if err != nil {
		c.errMsg = err.Error()
		c.log.WarnContext(ctx, "detail load failed",
			slog.Int64("product_id", id),
			slog.String("error", err.Error()),
		)
		return err
	}

	merged, added := pagination.MergeByKey(nil, reviews.Content, reviewKey)

	c.product = product
	c.reviews = merged
	if added > 0 {
		c.reviewPage = 1
	}
	c.reviewsLast = reviews.Last || added == 0
	return nil
}

// LoadMoreReviews fetches the next review page for the focused product. It
// is a no-op, returning false, while a review fetch is outstanding or after
// the last page. A failed fetch is logged and leaves the displayed reviews
// untouched; the list simply stops growing.
func (c *DetailController) LoadMoreReviews(ctx context.Context) (bool, error) {
	c.mu.Lock()
	if c.product == nil || c.loading || c.reviewsInFlight || c.reviewsLast {
		c.mu.Unlock()
		return false, nil
	}
	gen := c.generation
	id := c.productID
	page := c.reviewPage
	c.reviewsInFlight = true
	c.mu.Unlock()

	resp, err := c.src.ListReviews(ctx, id, page, c.pageSize)

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		c.log.DebugContext(ctx, "discarding stale review fetch", slog.Int64("product_id", id))
		return true, nil
	}

	c.reviewsInFlight = false

	if err != nil {
		c.log.WarnContext(ctx, "review page fetch failed",
			slog.Int64("product_id", id),
			slog.Int("page", page),
			slog.String("error", err.Error()),
		)
		return true, err
	}

	merged, added := pagination.MergeByKey(c.reviews, resp.Content, reviewKey)
	c.reviews = merged
	if added > 0 {
		c.reviewPage = page + 1
	}
	c.reviewsLast = resp.Last || added == 0
	return true, nil
}

// AddReview submits a review for the focused product. It fails fast when no
// product is loaded, and the rating is validated before any request is issued. On success the created review is
// prepended and the displayed aggregate recomputed as a running weighted
// mean. The recomputed aggregate is display-only: it is never written back
// and the next Load overwrites it with the server's authoritative value.
func (c *DetailController) AddReview(ctx context.Context, rating int, comment string) error {
	c.mu.Lock()
	if c.product == nil {
		c.mu.Unlock()
		return apierrors.Invalid("no product is loaded")
	}
	if c.submitting {
		c.mu.Unlock()
		return nil
	}
	gen := c.generation
	id := c.productID
	c.submitting = true
	c.submitErr = ""
	c.mu.Unlock()

	created, err := c.src.AddReview(ctx, id, rating, comment)

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		c.log.DebugContext(ctx, "discarding stale review submission", slog.Int64("product_id", id))
		return nil
	}

	c.submitting = false

	if err != nil {
		// Submission errors never blank out already-loaded content.
		c.submitErr = err.Error()
		return err
	}

	c.reviews = append([]catalog.Review{*created}, c.reviews...)

	if c.product != nil {
		count := c.product.ReviewCount
		c.product.AverageRating = (c.product.AverageRating*float64(count) + float64(created.Rating)) / float64(count+1)
		c.product.ReviewCount = count + 1
	}
	return nil
}

// Snapshot returns a copy of the current state.
func (c *DetailController) Snapshot() DetailState {
	c.mu.Lock()
	defer c.mu.Unlock()

	reviews := make([]catalog.Review, len(c.reviews))
	copy(reviews, c.reviews)

	var product *catalog.Product
	if c.product != nil {
		cpy := *c.product
		product = &cpy
	}

	return DetailState{
		ProductID:   c.productID,
		Loading:     c.loading,
		Err:         c.errMsg,
		Product:     product,
		Reviews:     reviews,
		ReviewPage:  c.reviewPage,
		ReviewsLast: c.reviewsLast,
		Submitting:  c.submitting,
		SubmitErr:   c.submitErr,
	}
}

func reviewKey(r catalog.Review) int64 {
	return r.ID
}
