package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alper4283/intern-project-product-review/internal/catalog"
	"github.com/alper4283/intern-project-product-review/pkg/apierrors"
	"github.com/alper4283/intern-project-product-review/pkg/pagination"
)

// fakeDetailSource delegates to per-test fns and records review-page calls.
type fakeDetailSource struct {
	mu          sync.Mutex
	reviewCalls []int

	getProduct  func(id int64) (*catalog.Product, error)
	listReviews func(id int64, page int) (*pagination.Page[catalog.Review], error)
	addReview   func(id int64, rating int, comment string) (*catalog.Review, error)
}

func (f *fakeDetailSource) GetProduct(ctx context.Context, id int64) (*catalog.Product, error) {
	return f.getProduct(id)
}

func (f *fakeDetailSource) ListReviews(ctx context.Context, productID int64, page, size int) (*pagination.Page[catalog.Review], error) {
	f.mu.Lock()
	f.reviewCalls = append(f.reviewCalls, page)
	f.mu.Unlock()
	return f.listReviews(productID, page)
}

func (f *fakeDetailSource) AddReview(ctx context.Context, productID int64, rating int, comment string) (*catalog.Review, error) {
	return f.addReview(productID, rating, comment)
}

func laptop() *catalog.Product {
	return &catalog.Product{
		ID:            42,
		Name:          "Laptop",
		Category:      "Laptops",
		Price:         1299,
		AverageRating: 4.0,
		ReviewCount:   4,
	}
}

func reviews(ids ...int64) []catalog.Review {
	out := make([]catalog.Review, 0, len(ids))
	for _, id := range ids {
		out = append(out, catalog.Review{ID: id, Rating: 4, CreatedAt: "2026-08-01T10:00:00Z"})
	}
	return out
}

func reviewPageOf(items []catalog.Review, last bool) *pagination.Page[catalog.Review] {
	return &pagination.Page[catalog.Review]{Content: items, Last: last}
}

func TestDetailController_LoadFetchesProductAndReviews(t *testing.T) {
	src := &fakeDetailSource{
		getProduct: func(id int64) (*catalog.Product, error) {
			assert.Equal(t, int64(42), id)
			return laptop(), nil
		},
		listReviews: func(id int64, page int) (*pagination.Page[catalog.Review], error) {
			assert.Equal(t, 0, page)
			return reviewPageOf(reviews(1, 2), false), nil
		},
	}
	c := NewDetailController(src, testLogger(), 10)

	require.NoError(t, c.Load(context.Background(), 42))

	state := c.Snapshot()
	require.NotNil(t, state.Product)
	assert.Equal(t, "Laptop", state.Product.Name)
	assert.Len(t, state.Reviews, 2)
	assert.Equal(t, 1, state.ReviewPage)
	assert.False(t, state.ReviewsLast)
	assert.False(t, state.Loading)
	assert.Equal(t, "", state.Err)
}

func TestDetailController_ProductFailureLeavesNoPartialState(t *testing.T) {
	src := &fakeDetailSource{
		getProduct: func(id int64) (*catalog.Product, error) {
			return nil, fmt.Errorf("product not found")
		},
		listReviews: func(id int64, page int) (*pagination.Page[catalog.Review], error) {
			return reviewPageOf(reviews(1), true), nil
		},
	}
	c := NewDetailController(src, testLogger(), 10)

	err := c.Load(context.Background(), 42)
	require.Error(t, err)

	state := c.Snapshot()
	assert.Nil(t, state.Product)
	assert.Empty(t, state.Reviews)
	assert.Equal(t, "product not found", state.Err)
	assert.False(t, state.Loading)
}

func TestDetailController_ReviewFailureLeavesNoPartialState(t *testing.T) {
	src := &fakeDetailSource{
		getProduct: func(id int64) (*catalog.Product, error) {
			return laptop(), nil
		},
		listReviews: func(id int64, page int) (*pagination.Page[catalog.Review], error) {
			return nil, fmt.Errorf("reviews unavailable")
		},
	}
	c := NewDetailController(src, testLogger(), 10)

	err := c.Load(context.Background(), 42)
	require.Error(t, err)

	state := c.Snapshot()
	assert.Nil(t, state.Product, "either leg failing must discard the product")
	assert.Equal(t, "reviews unavailable", state.Err)
}

func TestDetailController_BothLegsFailPreferProductError(t *testing.T) {
	src := &fakeDetailSource{
		getProduct: func(id int64) (*catalog.Product, error) {
			return nil, fmt.Errorf("product not found")
		},
		listReviews: func(id int64, page int) (*pagination.Page[catalog.Review], error) {
			return nil, fmt.Errorf("reviews unavailable")
		},
	}
	c := NewDetailController(src, testLogger(), 10)

	_ = c.Load(context.Background(), 42)

	assert.Equal(t, "product not found", c.Snapshot().Err)
}

func TestDetailController_LoadMoreReviewsAccumulates(t *testing.T) {
	src := &fakeDetailSource{
		getProduct: func(id int64) (*catalog.Product, error) { return laptop(), nil },
		listReviews: func(id int64, page int) (*pagination.Page[catalog.Review], error) {
			switch page {
			case 0:
				return reviewPageOf(reviews(1, 2), false), nil
			default:
				return reviewPageOf(reviews(2, 3), true), nil
			}
		},
	}
	c := NewDetailController(src, testLogger(), 2)
	ctx := context.Background()

	require.NoError(t, c.Load(ctx, 42))

	started, err := c.LoadMoreReviews(ctx)
	require.NoError(t, err)
	assert.True(t, started)

	state := c.Snapshot()
	require.Len(t, state.Reviews, 3, "overlapping identity is kept once")
	assert.Equal(t, []int64{1, 2, 3}, []int64{state.Reviews[0].ID, state.Reviews[1].ID, state.Reviews[2].ID})
	assert.Equal(t, 2, state.ReviewPage)
	assert.True(t, state.ReviewsLast)

	started, err = c.LoadMoreReviews(ctx)
	require.NoError(t, err)
	assert.False(t, started, "exhausted list drops further triggers")
	assert.Equal(t, []int{0, 1}, src.reviewCalls)
}

func TestDetailController_LoadMoreReviewsNoOpBeforeLoad(t *testing.T) {
	src := &fakeDetailSource{}
	c := NewDetailController(src, testLogger(), 10)

	started, err := c.LoadMoreReviews(context.Background())

	require.NoError(t, err)
	assert.False(t, started)
}

func TestDetailController_LoadMoreReviewsFailureKeepsContent(t *testing.T) {
	fail := false
	src := &fakeDetailSource{
		getProduct: func(id int64) (*catalog.Product, error) { return laptop(), nil },
		listReviews: func(id int64, page int) (*pagination.Page[catalog.Review], error) {
			if fail {
				return nil, fmt.Errorf("backend unavailable")
			}
			return reviewPageOf(reviews(1, 2), false), nil
		},
	}
	c := NewDetailController(src, testLogger(), 2)
	ctx := context.Background()

	require.NoError(t, c.Load(ctx, 42))

	fail = true
	started, err := c.LoadMoreReviews(ctx)
	assert.True(t, started)
	require.Error(t, err)

	state := c.Snapshot()
	assert.Len(t, state.Reviews, 2, "failed page fetch must not touch displayed reviews")
	assert.NotNil(t, state.Product)
	assert.Equal(t, "", state.Err, "a load-more failure is not a screen-level error")
	assert.Equal(t, 1, state.ReviewPage)
	assert.False(t, state.ReviewsLast)

	// Retry succeeds after the transient failure.
	fail = false
	started, err = c.LoadMoreReviews(ctx)
	require.NoError(t, err)
	assert.True(t, started)
}

func TestDetailController_AddReviewOptimisticAggregate(t *testing.T) {
	src := &fakeDetailSource{
		getProduct: func(id int64) (*catalog.Product, error) { return laptop(), nil },
		listReviews: func(id int64, page int) (*pagination.Page[catalog.Review], error) {
			return reviewPageOf(reviews(1, 2), true), nil
		},
		addReview: func(id int64, rating int, comment string) (*catalog.Review, error) {
			assert.Equal(t, int64(42), id)
			return &catalog.Review{ID: 9, Rating: rating, Comment: comment, CreatedAt: "2026-08-03T10:00:00Z"}, nil
		},
	}
	c := NewDetailController(src, testLogger(), 10)
	ctx := context.Background()

	require.NoError(t, c.Load(ctx, 42))
	require.NoError(t, c.AddReview(ctx, 5, "great"))

	state := c.Snapshot()
	require.NotNil(t, state.Product)

	// 4.0 across 4 reviews plus a 5 is exactly 4.2.
	assert.Equal(t, 4.2, state.Product.AverageRating)
	assert.Equal(t, int64(5), state.Product.ReviewCount)

	require.Len(t, state.Reviews, 3)
	assert.Equal(t, int64(9), state.Reviews[0].ID, "created review is prepended")
	assert.Equal(t, "great", state.Reviews[0].Comment)
}

func TestDetailController_AddReviewFailureKeepsContent(t *testing.T) {
	src := &fakeDetailSource{
		getProduct: func(id int64) (*catalog.Product, error) { return laptop(), nil },
		listReviews: func(id int64, page int) (*pagination.Page[catalog.Review], error) {
			return reviewPageOf(reviews(1, 2), true), nil
		},
		addReview: func(id int64, rating int, comment string) (*catalog.Review, error) {
			return nil, fmt.Errorf("login required")
		},
	}
	c := NewDetailController(src, testLogger(), 10)
	ctx := context.Background()

	require.NoError(t, c.Load(ctx, 42))

	err := c.AddReview(ctx, 5, "great")
	require.Error(t, err)

	state := c.Snapshot()
	assert.Equal(t, "login required", state.SubmitErr)
	assert.Equal(t, "", state.Err, "submit failures stay on the submit channel")
	assert.Len(t, state.Reviews, 2)
	assert.Equal(t, 4.0, state.Product.AverageRating, "aggregate untouched on failure")
	assert.Equal(t, int64(4), state.Product.ReviewCount)
	assert.False(t, state.Submitting)
}

func TestDetailController_AddReviewDroppedWhileSubmitting(t *testing.T) {
	gate := make(chan struct{})
	entered := make(chan struct{})
	var submissions int
	var mu sync.Mutex
	src := &fakeDetailSource{
		getProduct: func(id int64) (*catalog.Product, error) { return laptop(), nil },
		listReviews: func(id int64, page int) (*pagination.Page[catalog.Review], error) {
			return reviewPageOf(nil, true), nil
		},
		addReview: func(id int64, rating int, comment string) (*catalog.Review, error) {
			mu.Lock()
			submissions++
			mu.Unlock()
			close(entered)
			<-gate
			return &catalog.Review{ID: 9, Rating: rating, CreatedAt: "2026-08-03T10:00:00Z"}, nil
		},
	}
	c := NewDetailController(src, testLogger(), 10)
	ctx := context.Background()

	require.NoError(t, c.Load(ctx, 42))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, c.AddReview(ctx, 5, "first"))
	}()
	<-entered

	require.NoError(t, c.AddReview(ctx, 4, "second"))

	close(gate)
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, submissions, "concurrent submission is dropped, not queued")
	assert.Len(t, c.Snapshot().Reviews, 1)
}

func TestDetailController_AddReviewRequiresLoadedProduct(t *testing.T) {
	var submissions int
	src := &fakeDetailSource{
		addReview: func(id int64, rating int, comment string) (*catalog.Review, error) {
			submissions++
			return &catalog.Review{ID: 9, Rating: rating}, nil
		},
	}
	c := NewDetailController(src, testLogger(), 10)

	err := c.AddReview(context.Background(), 5, "great")

	require.Error(t, err)
	assert.True(t, errors.Is(err, apierrors.ErrValidation))
	assert.Equal(t, 0, submissions, "no request without a loaded product")
}

func TestDetailController_NavigationDuringSubmitDoesNotWedge(t *testing.T) {
	gate := make(chan struct{})
	entered := make(chan struct{})
	var mu sync.Mutex
	var submissions []int64
	src := &fakeDetailSource{
		getProduct: func(id int64) (*catalog.Product, error) {
			return &catalog.Product{ID: id, Name: fmt.Sprintf("product-%d", id), ReviewCount: 1, AverageRating: 3.0}, nil
		},
		listReviews: func(id int64, page int) (*pagination.Page[catalog.Review], error) {
			return reviewPageOf(nil, true), nil
		},
		addReview: func(id int64, rating int, comment string) (*catalog.Review, error) {
			mu.Lock()
			submissions = append(submissions, id)
			first := len(submissions) == 1
			mu.Unlock()
			if first {
				close(entered)
				<-gate
			}
			return &catalog.Review{ID: int64(rating), Rating: rating, CreatedAt: "2026-08-03T10:00:00Z"}, nil
		},
	}
	c := NewDetailController(src, testLogger(), 10)
	ctx := context.Background()

	require.NoError(t, c.Load(ctx, 1))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, c.AddReview(ctx, 5, "for the old product"))
	}()
	<-entered

	// Navigation moves on while the submission is still outstanding.
	require.NoError(t, c.Load(ctx, 2))
	assert.False(t, c.Snapshot().Submitting, "navigation resets the submit flag")

	close(gate)
	wg.Wait()

	state := c.Snapshot()
	assert.Empty(t, state.Reviews, "stale submission must not leak into the new product")
	assert.Equal(t, int64(1), state.Product.ReviewCount)

	// The screen accepts new submissions after the stale one resolved.
	require.NoError(t, c.AddReview(ctx, 4, "for the new product"))

	mu.Lock()
	assert.Equal(t, []int64{1, 2}, submissions)
	mu.Unlock()

	state = c.Snapshot()
	require.Len(t, state.Reviews, 1)
	assert.Equal(t, 4, state.Reviews[0].Rating)
	assert.Equal(t, int64(2), state.Product.ReviewCount)
}

func TestDetailController_StaleLoadDiscarded(t *testing.T) {
	gate := make(chan struct{})
	entered := make(chan struct{})
	var once sync.Once
	src := &fakeDetailSource{
		getProduct: func(id int64) (*catalog.Product, error) {
			if id == 1 {
				once.Do(func() { close(entered) })
				<-gate
				return &catalog.Product{ID: 1, Name: "Stale"}, nil
			}
			return &catalog.Product{ID: 2, Name: "Fresh"}, nil
		},
		listReviews: func(id int64, page int) (*pagination.Page[catalog.Review], error) {
			return reviewPageOf(nil, true), nil
		},
	}
	c := NewDetailController(src, testLogger(), 10)
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, c.Load(ctx, 1))
	}()
	<-entered

	// Navigation moved on while product 1 was still loading.
	require.NoError(t, c.Load(ctx, 2))

	close(gate)
	wg.Wait()

	state := c.Snapshot()
	require.NotNil(t, state.Product)
	assert.Equal(t, "Fresh", state.Product.Name, "result for the abandoned product is discarded")
	assert.Equal(t, int64(2), state.ProductID)
	assert.False(t, state.Loading)
}

func TestDetailController_SnapshotDoesNotAliasProduct(t *testing.T) {
	src := &fakeDetailSource{
		getProduct: func(id int64) (*catalog.Product, error) { return laptop(), nil },
		listReviews: func(id int64, page int) (*pagination.Page[catalog.Review], error) {
			return reviewPageOf(reviews(1), true), nil
		},
	}
	c := NewDetailController(src, testLogger(), 10)
	require.NoError(t, c.Load(context.Background(), 42))

	state := c.Snapshot()
	state.Product.Name = "mutated"
	state.Reviews[0].Rating = 1

	fresh := c.Snapshot()
	assert.Equal(t, "Laptop", fresh.Product.Name)
	assert.Equal(t, 4, fresh.Reviews[0].Rating)
}
