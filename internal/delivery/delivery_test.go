package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/config"
	"storefront/internal/auth"
	"storefront/internal/delivery/response"
	"storefront/internal/domain"
	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/usecase"
	"storefront/internal/validation"
	"storefront/pkg/db"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := validation.Register(); err != nil {
		panic(err)
	}
}

type stubPinger struct{ err error }

func (p *stubPinger) PingContext(context.Context) error { return p.err }

type stubGateway struct{ err error }

func (g *stubGateway) Charge(_ context.Context, p domain.PaymentCreate) (*domain.PaymentResult, error) {
	if g.err != nil {
		return nil, g.err
	}
	return &domain.PaymentResult{PaymentID: "pay_1", Status: "succeeded", Amount: p.Amount, Method: p.Method}, nil
}

type stubCarrier struct{}

func (stubCarrier) Rates(context.Context, string) ([]domain.ShippingRate, error) {
	return []domain.ShippingRate{{Carrier: "UPS", Service: "Ground", Price: 9.99, EstimatedDays: 5}}, nil
}

type testServer struct {
	router   *gin.Engine
	cfg      *config.Config
	tokens   *auth.TokenManager
	pinger   *stubPinger
	gateway  *stubGateway
	products domain.ProductUseCase
	users    domain.UserUseCase
	orders   domain.OrderUseCase
	posts    domain.PostUseCase
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gdb, err := db.Open(db.DriverSQLite, "file:"+uuid.NewString()+"?mode=memory&cache=shared", nil)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	t.Cleanup(func() { _ = db.Close(gdb) })

	log := logrus.New()
	log.SetOutput(io.Discard)

	tokens, err := auth.NewTokenManager("delivery-test-secret")
	require.NoError(t, err)

	cfg := &config.Config{
		AppName:         "storefront-test",
		Environment:     "test",
		APIVersion:      "1.0.0",
		AccessTokenTTL:  30 * time.Minute,
		RememberMeTTL:   720 * time.Hour,
		APIKeys:         []string{"partner-key-0001"},
		CORSOrigins:     []string{"http://localhost:3000"},
		UploadDir:       t.TempDir(),
		MaxUploadBytes:  1 << 20,
		SearchRateLimit: 1000,
		SearchRateBurst: 1000,
	}

	productRepo := repository.NewProductRepository(gdb, log)
	userRepo := repository.NewUserRepository(gdb, log)
	orderRepo := repository.NewOrderRepository(gdb, log)

	s := &testServer{
		cfg:      cfg,
		tokens:   tokens,
		pinger:   &stubPinger{},
		gateway:  &stubGateway{},
		products: usecase.NewProductUseCase(productRepo, log),
		users:    usecase.NewUserUseCase(userRepo, log),
		orders:   usecase.NewOrderUseCase(orderRepo, productRepo, userRepo, log),
		posts:    usecase.NewPostUseCase(repository.NewPostRepository(gdb, log), log),
	}
	s.router = NewRouter(Dependencies{
		Config:   cfg,
		Logger:   log,
		Tokens:   tokens,
		DB:       s.pinger,
		Metrics:  middleware.NewMetrics(),
		Products: s.products,
		Users:    s.users,
		Orders:   s.orders,
		Posts:    s.posts,
		Commerce: usecase.NewCommerceUseCase(orderRepo, s.gateway, stubCarrier{}, log),
	})
	return s
}

type request struct {
	method  string
	path    string
	body    interface{}
	token   string
	headers map[string]string
	cookies []*http.Cookie
}

func (s *testServer) do(t *testing.T, r request) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	switch b := r.body.(type) {
	case nil:
	case string:
		body = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(r.method, r.path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}
	for _, c := range r.cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) get(t *testing.T, path, token string) *httptest.ResponseRecorder {
	return s.do(t, request{method: http.MethodGet, path: path, token: token})
}

func (s *testServer) user(t *testing.T, username string) *domain.User {
	t.Helper()
	u, err := s.users.RegisterUser(context.Background(), domain.UserCreate{
		Username: username, Email: username + "@example.com", FullName: "Test User", Password: "Secret123",
	})
	require.NoError(t, err)
	return u
}

func (s *testServer) admin(t *testing.T) *domain.User {
	t.Helper()
	u, err := s.users.EnsureAdmin(context.Background(), "admin", "admin@example.com", "Admin1234")
	require.NoError(t, err)
	return u
}

func (s *testServer) token(t *testing.T, u *domain.User) string {
	t.Helper()
	tok, _, err := s.tokens.Issue(u, time.Hour)
	require.NoError(t, err)
	return tok
}

func (s *testServer) product(t *testing.T, in domain.ProductCreate) *domain.Product {
	t.Helper()
	p, err := s.products.CreateProduct(context.Background(), in)
	require.NoError(t, err)
	return p
}

type envelope[T any] struct {
	Status  string               `json:"Status"`
	Message string               `json:"Message"`
	Data    T                    `json:"Data"`
	Details []domain.ErrorDetail `json:"Details"`
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var env envelope[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func TestSystemRoutes(t *testing.T) {
	s := newTestServer(t)

	w := s.get(t, "/", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, response.StatusSuccess, decode[map[string]interface{}](t, w).Status)

	w = s.get(t, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decode[map[string]string](t, w).Data["status"])

	s.pinger.err = errors.New("connection refused")
	w = s.get(t, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "unreachable", decode[map[string]string](t, w).Data["database"])

	w = s.get(t, "/api/config", "")
	cfg := decode[config.PublicConfig](t, w)
	assert.Equal(t, "storefront-test", cfg.Data.AppName)
	assert.Equal(t, "test", cfg.Data.Environment)

	w = s.get(t, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `storefront_http_requests_total{method="GET",route="/api/config",status="200"} 1`)

	w = s.get(t, "/nowhere", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Route not found", decode[any](t, w).Message)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
}

func TestProductWritesRequireAdmin(t *testing.T) {
	s := newTestServer(t)
	body := map[string]interface{}{"name": "Laptop", "category": "electronics", "price": 999.99}

	w := s.do(t, request{method: http.MethodPost, path: "/api/products", body: body})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, request{method: http.MethodPost, path: "/api/products", body: body, token: s.token(t, s.user(t, "alice"))})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Access denied. Required roles: [admin]", decode[any](t, w).Message)
}

func TestProductLifecycle(t *testing.T) {
	s := newTestServer(t)
	admin := s.token(t, s.admin(t))

	w := s.do(t, request{method: http.MethodPost, path: "/api/products", token: admin, body: map[string]interface{}{
		"name": "  ", "category": "electronics", "price": -1,
	}})
	require.Equal(t, http.StatusBadRequest, w.Code)
	invalid := decode[any](t, w)
	assert.Equal(t, "Validation failed", invalid.Message)
	assert.NotEmpty(t, invalid.Details)

	w = s.do(t, request{method: http.MethodPost, path: "/api/products", token: admin, body: map[string]interface{}{
		"name": "Laptop", "category": "electronics", "price": 999.99, "cost": 700, "stock": 5,
	}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[domain.ProductResponse](t, w).Data
	assert.Equal(t, "Electronics", created.Category)
	assert.Equal(t, domain.FormatSKU(created.ID), created.SKU)
	sku := created.SKU

	w = s.get(t, "/api/products/"+sku, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Laptop", decode[domain.ProductResponse](t, w).Data.Name)

	w = s.do(t, request{method: http.MethodPatch, path: "/api/products/" + sku + "?validate_only=true", token: admin,
		body: map[string]interface{}{"price": 899.99}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	preview := decode[validateOnlyResult](t, w).Data
	assert.True(t, preview.Valid)
	assert.Equal(t, []string{"price"}, preview.WouldUpdate)
	assert.Equal(t, 999.99, decode[domain.ProductResponse](t, s.get(t, "/api/products/"+sku, "")).Data.Price)

	w = s.do(t, request{method: http.MethodPut, path: "/api/products/1", token: admin, body: map[string]interface{}{"price": 899.99}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, request{method: http.MethodPut, path: "/api/products/" + sku + "?notify_users=true&audit_reason=reprice", token: admin,
		body: map[string]interface{}{"price": 899.99}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	replaced := decode[replaceResult](t, w).Data
	assert.Equal(t, 899.99, replaced.Product.Price)
	assert.Equal(t, []string{"price"}, replaced.UpdatedFields)
	assert.True(t, replaced.NotifyUsers)

	w = s.do(t, request{method: http.MethodPatch, path: "/api/products/" + sku, token: admin,
		body: map[string]interface{}{"discount_price": 849.99}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NotNil(t, decode[domain.ProductResponse](t, w).Data.DiscountPrice)

	w = s.do(t, request{method: http.MethodPatch, path: "/api/products/" + sku, token: admin,
		body: map[string]interface{}{"price": 799.99, "clear_discount": true}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	discounted := decode[domain.ProductResponse](t, w).Data
	assert.Nil(t, discounted.DiscountPrice)
	assert.Equal(t, 799.99, discounted.Price)

	w = s.get(t, "/api/products/"+sku+"/audits", admin)
	require.Equal(t, http.StatusOK, w.Code)
	audits := decode[[]domain.ProductAudit](t, w).Data
	require.Len(t, audits, 1)
	assert.Equal(t, "reprice", audits[0].Reason)

	w = s.do(t, request{method: http.MethodPost, path: "/api/products/" + sku + "/adjust-stock", token: admin,
		body: map[string]interface{}{"adjustment": -10}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Cannot remove 10 items. Only 5 in stock.", decode[any](t, w).Message)

	w = s.do(t, request{method: http.MethodPost, path: "/api/products/" + sku + "/quantity", token: admin,
		body: map[string]interface{}{"quantity": 3}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 3, decode[map[string]interface{}](t, w).Data["new_quantity"])

	w = s.get(t, "/api/products/reports/low-stock", admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[stockReport](t, w).Data.Count)

	w = s.do(t, request{method: http.MethodDelete, path: "/api/products/" + sku, token: admin})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	w = s.get(t, "/api/products/"+sku, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.get(t, "/api/products/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProductListFilters(t *testing.T) {
	s := newTestServer(t)
	s.product(t, domain.ProductCreate{Name: "Laptop Pro", Category: "electronics", Price: 1500, Stock: 3})
	s.product(t, domain.ProductCreate{Name: "Mouse", Category: "electronics", Price: 25})
	s.product(t, domain.ProductCreate{Name: "Desk", Category: "furniture", Price: 300, Stock: 1})

	w := s.get(t, "/api/products?category=Electronics&in_stock_only=true", "")
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[domain.PaginatedResponse[domain.ProductResponse]](t, w).Data
	assert.EqualValues(t, 1, page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Laptop Pro", page.Items[0].Name)

	w = s.get(t, "/api/products?in_stock_only=false", "")
	require.Equal(t, http.StatusOK, w.Code)
	page = decode[domain.PaginatedResponse[domain.ProductResponse]](t, w).Data
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Mouse", page.Items[0].Name)
	assert.False(t, page.Items[0].InStock)
	assert.Equal(t, "out_of_stock", page.Items[0].StockStatus)

	w = s.get(t, "/api/products?page_size=101", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.get(t, "/api/products?min_price=500&max_price=100", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.get(t, "/api/products?search=la", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchEndpoints(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	for i, name := range []string{"Laptop", "Lamp", "Mouse", "Keyboard", "Monitor"} {
		category := "electronics"
		if name == "Lamp" {
			category = "home"
		}
		in := domain.ProductCreate{Name: name, Category: category, Price: float64(10 * (i + 1)), Stock: i}
		switch name {
		case "Keyboard":
			in.Tags = []string{"r&d"}
		case "Monitor":
			in.Tags = []string{"<new>"}
		}
		s.product(t, in)
	}
	archived := s.product(t, domain.ProductCreate{Name: "Laser", Category: "electronics", Price: 99})
	status := domain.ProductArchived
	_, err := s.products.UpdateProduct(ctx, archived.ID, domain.ProductUpdate{Status: &status}, domain.ProductUpdateOptions{})
	require.NoError(t, err)

	t.Run("basic", func(t *testing.T) {
		w := s.get(t, "/api/products/basic?page_size=2", "")
		require.Equal(t, http.StatusOK, w.Code)
		page := decode[domain.PaginatedResponse[domain.ProductListItem]](t, w).Data
		assert.EqualValues(t, 5, page.Total)
		require.Len(t, page.Items, 2)
		assert.Equal(t, "Monitor", page.Items[0].Name)
	})

	t.Run("filter", func(t *testing.T) {
		w := s.get(t, "/api/products/filter?sort_by=price&order=asc&in_stock=true&is_active=true", "")
		require.Equal(t, http.StatusOK, w.Code)
		page := decode[domain.PaginatedResponse[domain.ProductResponse]](t, w).Data
		require.Len(t, page.Items, 4)
		assert.Equal(t, "Lamp", page.Items[0].Name)

		w = s.get(t, "/api/products/filter?in_stock=false&is_active=true", "")
		require.Equal(t, http.StatusOK, w.Code)
		page = decode[domain.PaginatedResponse[domain.ProductResponse]](t, w).Data
		require.Len(t, page.Items, 1)
		assert.Equal(t, "Laptop", page.Items[0].Name)

		w = s.get(t, "/api/products/filter?tags=r%26d&tags=%3Cnew%3E", "")
		require.Equal(t, http.StatusOK, w.Code)
		page = decode[domain.PaginatedResponse[domain.ProductResponse]](t, w).Data
		require.Len(t, page.Items, 2)
		names := []string{page.Items[0].Name, page.Items[1].Name}
		assert.ElementsMatch(t, []string{"Keyboard", "Monitor"}, names)

		w = s.get(t, "/api/products/filter?sort_by=rating", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("search matches category", func(t *testing.T) {
		w := s.get(t, "/api/products/search?q=home", "")
		require.Equal(t, http.StatusOK, w.Code)
		page := decode[domain.PaginatedResponse[domain.ProductResponse]](t, w).Data
		require.Len(t, page.Items, 1)
		assert.Equal(t, "Lamp", page.Items[0].Name)

		w = s.get(t, "/api/products/search?q=las", "")
		assert.EqualValues(t, 0, decode[domain.PaginatedResponse[domain.ProductResponse]](t, w).Data.Total)
	})

	t.Run("cursor", func(t *testing.T) {
		w := s.get(t, "/api/products/cursor?limit=3", "")
		require.Equal(t, http.StatusOK, w.Code)
		first := decode[domain.CursorPage[domain.ProductResponse]](t, w).Data
		assert.True(t, first.HasMore)
		assert.Equal(t, 3, first.Count)
		require.NotNil(t, first.NextCursor)

		w = s.get(t, "/api/products/cursor?limit=3&cursor="+*first.NextCursor, "")
		second := decode[domain.CursorPage[domain.ProductResponse]](t, w).Data
		assert.False(t, second.HasMore)
		assert.Nil(t, second.NextCursor)
		assert.Equal(t, 2, second.Count)

		w = s.get(t, "/api/products/cursor?cursor=abc", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid cursor format", decode[any](t, w).Message)
	})

	t.Run("infinite", func(t *testing.T) {
		w := s.get(t, "/api/products/infinite?limit=5", "")
		require.Equal(t, http.StatusOK, w.Code)
		page := decode[domain.InfiniteScrollPage[domain.ProductResponse]](t, w).Data
		assert.True(t, page.HasMore)
		require.NotNil(t, page.LastID)

		w = s.get(t, "/api/products/infinite?limit=51", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = s.get(t, "/api/products/infinite?last_id=-4", "")
		assert.Equal(t, "Invalid last_id", decode[any](t, w).Message)
	})

	t.Run("autocomplete", func(t *testing.T) {
		w := s.get(t, "/api/products/autocomplete?q=la", "")
		require.Equal(t, http.StatusOK, w.Code)
		got := decode[map[string][]string](t, w).Data["suggestions"]
		assert.Equal(t, []string{"Lamp", "Laptop"}, got)

		w = s.get(t, "/api/products/autocomplete", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("facets", func(t *testing.T) {
		w := s.get(t, "/api/products/facets", "")
		require.Equal(t, http.StatusOK, w.Code)
		result := decode[facetsResult](t, w).Data
		assert.EqualValues(t, 5, result.Total)
		assert.Equal(t, []domain.FacetCount{{Value: "Electronics", Count: 4}, {Value: "Home", Count: 1}}, result.Facets["categories"])
	})
}
