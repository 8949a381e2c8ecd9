package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"inventory-backend/application/services"
	"inventory-backend/domain/product"
	"inventory-backend/infrastructure/config"
	"inventory-backend/pkg/cache"
	"inventory-backend/pkg/common"
	apperrors "inventory-backend/pkg/errors"
)

// memRepo is an in-memory ProductRepository with real filter, sort, and
// pagination semantics, so the full HTTP stack can be exercised without
// a database.
type memRepo struct {
	mu    sync.Mutex
	items map[string]product.Product
}

func newMemRepo() *memRepo {
	return &memRepo{items: make(map[string]product.Product)}
}

func (m *memRepo) matching(search string) []product.Product {
	needle := strings.ToLower(search)
	out := make([]product.Product, 0, len(m.items))
	for _, p := range m.items {
		if needle == "" ||
			strings.Contains(strings.ToLower(p.Name), needle) ||
			strings.Contains(strings.ToLower(p.Image), needle) {
			out = append(out, p)
		}
	}
	return out
}

func (m *memRepo) List(ctx context.Context, params common.ListParams) ([]product.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := m.matching(params.Search)

	asc := params.SortOrder == "asc"
	sort.Slice(out, func(i, j int) bool {
		var less bool
		switch params.SortBy {
		case "name":
			less = out[i].Name < out[j].Name
		case "price":
			less = out[i].Price < out[j].Price
		case "quantity":
			less = out[i].Quantity < out[j].Quantity
		default:
			less = out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		if asc {
			return less
		}
		return !less
	})

	start := params.Offset()
	if start > len(out) {
		start = len(out)
	}
	end := start + params.Limit
	if end > len(out) {
		end = len(out)
	}

	page := make([]product.Product, end-start)
	copy(page, out[start:end])
	for i := range page {
		page[i].ComputeTotals()
	}
	return page, nil
}

func (m *memRepo) Count(ctx context.Context, params common.ListParams) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.matching(params.Search)), nil
}

func (m *memRepo) GetByID(ctx context.Context, id string) (*product.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.items[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("Product")
	}
	p.ComputeTotals()
	return &p, nil
}

func (m *memRepo) Create(ctx context.Context, p *product.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items[p.ID] = *p
	p.ComputeTotals()
	return nil
}

func (m *memRepo) Update(ctx context.Context, id string, upd product.Update) (*product.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.items[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("Product")
	}
	if upd.Name != nil {
		p.Name = *upd.Name
	}
	if upd.Price != nil {
		p.Price = *upd.Price
	}
	if upd.Quantity != nil {
		p.Quantity = *upd.Quantity
	}
	if upd.Image != nil {
		p.Image = *upd.Image
	}
	p.UpdatedAt = time.Now()
	m.items[id] = p
	p.ComputeTotals()
	return &p, nil
}

func (m *memRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[id]; !ok {
		return apperrors.NewNotFoundError("Product")
	}
	delete(m.items, id)
	return nil
}

func (m *memRepo) KPI(ctx context.Context) (*product.KPI, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := &product.KPI{}
	for _, p := range m.items {
		k.TotalProducts++
		k.TotalValue += p.Price * float64(p.Quantity)
		k.TotalUnits += p.Quantity
		k.AveragePrice += p.Price
		k.AverageQuantity += float64(p.Quantity)
	}
	if k.TotalProducts > 0 {
		k.AveragePrice /= float64(k.TotalProducts)
		k.AverageQuantity /= float64(k.TotalProducts)
	}
	return k, nil
}

type pingOK struct{}

func (pingOK) PingContext(ctx context.Context) error { return nil }

// envelope mirrors the JSON response shape for assertions.
type envelope struct {
	Success        bool                `json:"success"`
	Message        string              `json:"message"`
	Data           json.RawMessage     `json:"data"`
	Errors         []apperrors.FieldError `json:"errors"`
	Pagination     *common.PageMeta    `json:"pagination"`
	Filters        *common.ListFilters `json:"filters"`
	Cached         *bool               `json:"cached"`
	CacheTimestamp string              `json:"cacheTimestamp"`
	GeneratedAt    string              `json:"generatedAt"`
}

func newTestHandler(t *testing.T) (http.Handler, *memRepo) {
	t.Helper()

	cfg := &config.Config{
		Environment:         "test",
		CacheTTL:            300,
		CacheSweepInterval:  60,
		StoreTimeoutSeconds: 5,
	}

	repo := newMemRepo()
	responseCache := cache.New(time.Duration(cfg.CacheTTL)*time.Second, time.Minute)
	t.Cleanup(responseCache.Stop)

	logger := zap.NewNop()
	service := services.NewProductService(repo, logger)
	router := NewRouter(cfg, service, responseCache, pingOK{}, logger)

	return router.Setup(), repo
}

func do(t *testing.T, handler http.Handler, method, target string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

func createProduct(t *testing.T, handler http.Handler, name string, quantity int, price float64) product.Product {
	t.Helper()

	rec, env := do(t, handler, "POST", "/products", map[string]interface{}{
		"name":     name,
		"quantity": quantity,
		"price":    price,
		"image":    fmt.Sprintf("https://example.com/%s.jpg", strings.ToLower(name)),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var p product.Product
	require.NoError(t, json.Unmarshal(env.Data, &p))
	return p
}

func TestCreateAndGetRoundTrip(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec, env := do(t, handler, "POST", "/products", map[string]interface{}{
		"name":     "Test",
		"quantity": 50,
		"price":    99.99,
		"image":    "https://example.com/test.jpg",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "Product created successfully", env.Message)

	var created product.Product
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, 4999.5, created.TotalValue)
	require.NoError(t, uuid.Validate(created.ID))

	rec, env = do(t, handler, "GET", "/products/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var fetched product.Product
	require.NoError(t, json.Unmarshal(env.Data, &fetched))
	assert.Equal(t, "Test", fetched.Name)
	assert.Equal(t, 99.99, fetched.Price)
	assert.Equal(t, 50, fetched.Quantity)
	assert.Equal(t, "https://example.com/test.jpg", fetched.Image)
	assert.Equal(t, 4999.5, fetched.TotalValue)
}

func TestListCacheHitThenInvalidation(t *testing.T) {
	handler, _ := newTestHandler(t)
	createProduct(t, handler, "Widget", 5, 10)

	// First read misses, second is served from the cache with the same data.
	rec, first := do(t, handler, "GET", "/products", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, first.Cached)
	assert.False(t, *first.Cached)

	rec, second := do(t, handler, "GET", "/products", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, second.Cached)
	assert.True(t, *second.Cached)
	assert.JSONEq(t, string(first.Data), string(second.Data))

	// A write in between makes the next read fresh and complete.
	createProduct(t, handler, "Gadget", 2, 20)

	rec, third := do(t, handler, "GET", "/products", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, third.Cached)
	assert.False(t, *third.Cached)

	var products []product.Product
	require.NoError(t, json.Unmarshal(third.Data, &products))
	assert.Len(t, products, 2)
}

func TestSearchFiltersByName(t *testing.T) {
	handler, _ := newTestHandler(t)
	createProduct(t, handler, "iPhone", 3, 999)
	createProduct(t, handler, "Laptop", 7, 1299)

	rec, env := do(t, handler, "GET", "/products?search=iPhone", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var products []product.Product
	require.NoError(t, json.Unmarshal(env.Data, &products))
	require.Len(t, products, 1)
	assert.Equal(t, "iPhone", products[0].Name)
	assert.Equal(t, 1, env.Pagination.TotalCount)
	assert.Equal(t, "iPhone", env.Filters.Search)
}

func TestListPaginationEnvelope(t *testing.T) {
	handler, _ := newTestHandler(t)
	for i := 0; i < 15; i++ {
		createProduct(t, handler, fmt.Sprintf("Item%02d", i), i, float64(i))
	}

	rec, env := do(t, handler, "GET", "/products?page=2&limit=10&sortBy=name&sortOrder=asc", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var products []product.Product
	require.NoError(t, json.Unmarshal(env.Data, &products))
	assert.Len(t, products, 5)
	assert.Equal(t, "Item10", products[0].Name)

	meta := env.Pagination
	require.NotNil(t, meta)
	assert.Equal(t, 2, meta.CurrentPage)
	assert.Equal(t, 2, meta.TotalPages)
	assert.Equal(t, 15, meta.TotalCount)
	assert.Equal(t, 10, meta.Limit)
	assert.False(t, meta.HasNextPage)
	assert.True(t, meta.HasPrevPage)
	assert.Nil(t, meta.NextPage)
	require.NotNil(t, meta.PrevPage)
	assert.Equal(t, 1, *meta.PrevPage)
}

func TestUnknownSortBySilentlyDefaults(t *testing.T) {
	handler, _ := newTestHandler(t)
	createProduct(t, handler, "Widget", 5, 10)

	rec, env := do(t, handler, "GET", "/products?sortBy=evil;drop", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "createdAt", env.Filters.SortBy)
}

func TestKPIOnEmptyCollection(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec, env := do(t, handler, "GET", "/products/kpi", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	assert.NotEmpty(t, env.GeneratedAt)

	var k product.KPI
	require.NoError(t, json.Unmarshal(env.Data, &k))
	assert.Equal(t, product.KPI{}, k)
}

func TestKPIAggregates(t *testing.T) {
	handler, _ := newTestHandler(t)
	createProduct(t, handler, "A", 2, 10)
	createProduct(t, handler, "B", 3, 20)

	rec, env := do(t, handler, "GET", "/products/kpi", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var k product.KPI
	require.NoError(t, json.Unmarshal(env.Data, &k))
	assert.Equal(t, 2, k.TotalProducts)
	assert.Equal(t, 80.0, k.TotalValue)
	assert.Equal(t, 5, k.TotalUnits)
	assert.Equal(t, 15.0, k.AveragePrice)
	assert.Equal(t, 2.5, k.AverageQuantity)
}

func TestKPICachedAndInvalidatedWithCollection(t *testing.T) {
	handler, _ := newTestHandler(t)

	_, _ = do(t, handler, "GET", "/products/kpi", nil)
	_, env := do(t, handler, "GET", "/products/kpi", nil)
	require.NotNil(t, env.Cached)
	assert.True(t, *env.Cached)

	createProduct(t, handler, "Widget", 5, 10)

	_, env = do(t, handler, "GET", "/products/kpi", nil)
	require.NotNil(t, env.Cached)
	assert.False(t, *env.Cached)

	var k product.KPI
	require.NoError(t, json.Unmarshal(env.Data, &k))
	assert.Equal(t, 1, k.TotalProducts)
}

func TestDeleteThenGetReturns404(t *testing.T) {
	handler, _ := newTestHandler(t)
	created := createProduct(t, handler, "Doomed", 1, 1)

	rec, env := do(t, handler, "DELETE", "/products/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Product deleted successfully", env.Message)

	rec, env = do(t, handler, "GET", "/products/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Product not found", env.Message)
}

func TestDeleteMissingReturns404(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec, _ := do(t, handler, "DELETE", "/products/"+uuid.New().String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetMalformedIDReturns400(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec, env := do(t, handler, "GET", "/products/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid product ID format", env.Message)
}

func TestCreateValidationFailure(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec, env := do(t, handler, "POST", "/products", map[string]interface{}{
		"name":     "X",
		"quantity": 50000,
		"price":    -1,
		"image":    "not-a-url",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Validation failed", env.Message)
	assert.Len(t, env.Errors, 4)

	fields := make([]string, 0, len(env.Errors))
	for _, fe := range env.Errors {
		fields = append(fields, fe.Field)
	}
	assert.ElementsMatch(t, []string{"name", "quantity", "price", "image"}, fields)
}

func TestFailedCreateDoesNotInvalidate(t *testing.T) {
	handler, _ := newTestHandler(t)
	createProduct(t, handler, "Widget", 5, 10)

	_, _ = do(t, handler, "GET", "/products", nil)

	// Invalid write must leave the cached listing in place.
	rec, _ := do(t, handler, "POST", "/products", map[string]interface{}{"name": "X"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	_, env := do(t, handler, "GET", "/products", nil)
	require.NotNil(t, env.Cached)
	assert.True(t, *env.Cached)
}

func TestUpdatePartialRetainsFields(t *testing.T) {
	handler, _ := newTestHandler(t)
	created := createProduct(t, handler, "Widget", 5, 10)

	rec, env := do(t, handler, "PUT", "/products/"+created.ID, map[string]interface{}{
		"price": 25.5,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated product.Product
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, "Widget", updated.Name)
	assert.Equal(t, 25.5, updated.Price)
	assert.Equal(t, 5, updated.Quantity)
	assert.Equal(t, 127.5, updated.TotalValue)
}

func TestUpdateValidationFailure(t *testing.T) {
	handler, _ := newTestHandler(t)
	created := createProduct(t, handler, "Widget", 5, 10)

	rec, env := do(t, handler, "PUT", "/products/"+created.ID, map[string]interface{}{
		"quantity": -3,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Len(t, env.Errors, 1)
	assert.Equal(t, "quantity", env.Errors[0].Field)
}

func TestHealthAndReady(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec, _ := do(t, handler, "GET", "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(t, handler, "GET", "/ready", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
