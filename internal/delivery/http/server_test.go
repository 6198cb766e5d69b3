package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"pointshop/config"
	httpdelivery "pointshop/internal/delivery/http"
	"pointshop/internal/delivery/http/middleware"
	"pointshop/internal/delivery/http/router"
	"pointshop/internal/delivery/http/router/handler"
	"pointshop/internal/infra/auth"
	"pointshop/internal/infra/clock"
	"pointshop/internal/infra/persistence/memory"
	"pointshop/internal/infra/storage"
	"pointshop/internal/usecase/impl"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/blob/memblob"
)

const adminPassword = "s3cret-admin"

var testNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) Notify(_ context.Context, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
}

func (n *recordingNotifier) sent() []string {
	n.mu.Lock()
	defer n.mu.Unlock()

	return append([]string(nil), n.messages...)
}

type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Details string `json:"details"`
	} `json:"error"`
}

type testServer struct {
	t        *testing.T
	e        *echo.Echo
	notifier *recordingNotifier
	cfg      *config.Config
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := &config.Config{}
	cfg.App.TZ = "UTC"
	cfg.App.Shops = []string{"regular", "premium"}
	cfg.Admin.Password = adminPassword
	cfg.Auth.BcryptCost = 4
	cfg.Auth.MinPasswordLength = 6
	cfg.Auth.MaxPasswordLength = 128
	cfg.Session.Secret = "test-session-secret"
	cfg.Session.CookieName = "pointshop_session"
	cfg.Session.TTL = time.Hour
	cfg.HTTP.MaxRequestBodySize = "1M"
	cfg.Uploads.PublicPrefix = "/static/uploads"

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	fixed := &clock.Fixed{At: testNow, Loc: time.UTC}

	store := memory.NewStore()
	txManager := memory.NewTransactionManager(store)
	users := memory.NewUserRepository(store)
	catalog := memory.NewCatalogRepository(store)
	orders := memory.NewOrderRepository(store)
	settings := memory.NewShopSettingsRepository(store)
	allowlist := memory.NewAllowlistRepository(store)
	require.NoError(t, settings.EnsureShops(context.Background(), cfg.App.Shops))

	bucket := memblob.OpenBucket(nil)
	t.Cleanup(func() { _ = bucket.Close() })
	images := storage.NewBlobStorage(bucket, cfg.Uploads.PublicPrefix, 1<<20, logger)

	tokens, err := auth.NewSessionTokenService(cfg)
	require.NoError(t, err)
	session := middleware.NewSessionMiddleware(tokens, cfg, logger)
	notifier := &recordingNotifier{}

	authUC := impl.NewAuthService(impl.AuthServiceParams{
		TxManager: txManager, UserRepo: users, Hasher: auth.NewBcryptHasher(cfg), Config: cfg, Logger: logger,
	})
	shopUC := impl.NewShopService(impl.ShopServiceParams{
		SettingsRepo: settings, AllowlistRepo: allowlist, CatalogRepo: catalog, Clock: fixed, Config: cfg, Logger: logger,
	})
	redemptionUC := impl.NewRedemptionService(impl.RedemptionServiceParams{
		TxManager: txManager, UserRepo: users, CatalogRepo: catalog, SettingsRepo: settings,
		AllowlistRepo: allowlist, Clock: fixed, Config: cfg, Logger: logger,
	})
	notificationUC := impl.NewNotificationService(impl.NotificationServiceParams{Notifier: notifier, Logger: logger})
	adminUC := impl.NewAdminService(impl.AdminServiceParams{
		TxManager: txManager, UserRepo: users, AllowlistRepo: allowlist, SettingsRepo: settings,
		Clock: fixed, Config: cfg, Logger: logger,
	})
	catalogUC := impl.NewCatalogService(impl.CatalogServiceParams{
		TxManager: txManager, CatalogRepo: catalog, Images: images, Config: cfg, Logger: logger,
	})
	orderUC := impl.NewOrderService(impl.OrderServiceParams{OrderRepo: orders, Clock: fixed, Logger: logger})

	e := httpdelivery.NewEcho(cfg, logger, prometheus.NewRegistry(), router.RouterParams{
		AuthHandler:       handler.NewAuthHandler(authUC, session, logger),
		ShopHandler:       handler.NewShopHandler(shopUC, logger),
		RedemptionHandler: handler.NewRedemptionHandler(redemptionUC, notificationUC, logger),
		UploadHandler:     handler.NewUploadHandler(images, logger),
		AdminHandler:      handler.NewAdminHandler(adminUC, fixed, logger),
		CatalogHandler:    handler.NewCatalogHandler(catalogUC, logger),
		OrderHandler:      handler.NewOrderHandler(orderUC, fixed, logger),
		SessionMiddleware: session,
	})

	return &testServer{t: t, e: e, notifier: notifier, cfg: cfg}
}

// client is a cookie-keeping browser session against the server.
type client struct {
	srv     *testServer
	cookies map[string]*http.Cookie
}

func (s *testServer) client() *client {
	return &client{srv: s, cookies: map[string]*http.Cookie{}}
}

func (cl *client) do(req *http.Request) *httptest.ResponseRecorder {
	for _, c := range cl.cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	cl.srv.e.ServeHTTP(rec, req)

	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 || c.Value == "" {
			delete(cl.cookies, c.Name)

			continue
		}
		cl.cookies[c.Name] = c
	}

	return rec
}

func (cl *client) json(method, path string, payload any) *httptest.ResponseRecorder {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(cl.srv.t, err)
		body = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	return cl.do(req)
}

func (cl *client) multipart(method, path string, fields map[string]string, filename string, file []byte) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(cl.srv.t, w.WriteField(k, v))
	}
	if filename != "" {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", `form-data; name="image"; filename="`+filename+`"`)
		h.Set("Content-Type", "image/png")
		part, err := w.CreatePart(h)
		require.NoError(cl.srv.t, err)
		_, err = part.Write(file)
		require.NoError(cl.srv.t, err)
	}
	require.NoError(cl.srv.t, w.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())

	return cl.do(req)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())

	return env
}

func assertDecline(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()

	assert.Equal(t, status, rec.Code, rec.Body.String())
	env := decode(t, rec)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, code, env.Error.Code)
}

type productData struct {
	ID       int64  `json:"id"`
	ImageURL string `json:"image_url"`
	Variants []struct {
		ID    int64  `json:"id"`
		Label string `json:"label"`
		Stock *int   `json:"stock"`
	} `json:"variants"`
}

// seed opens regular, grants @alice 150 points and access, and adds one product.
func (s *testServer) seed() (admin *client, product productData) {
	s.t.Helper()

	admin = s.client()
	require.Equal(s.t, http.StatusOK, admin.json(http.MethodPost, "/admin/login", map[string]string{"password": adminPassword}).Code)
	require.Equal(s.t, http.StatusOK, admin.json(http.MethodPut, "/admin/settings/regular", map[string]string{
		"opens_at":  "2026-03-14T11:00",
		"closes_at": "2026-03-14T13:00",
	}).Code)
	require.Equal(s.t, http.StatusOK, admin.json(http.MethodPost, "/admin/points", map[string]any{"handle": "Alice", "points": 150}).Code)
	require.Equal(s.t, http.StatusOK, admin.json(http.MethodPost, "/admin/allowlist", map[string]string{"handle": "@alice", "shop": "regular"}).Code)

	rec := admin.multipart(http.MethodPost, "/admin/products", map[string]string{
		"shop":     "regular",
		"title":    "Hoodie",
		"active":   "on",
		"variants": "Red|100|1\nBlue|50",
	}, "hoodie.png", pngBytes)
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	require.NoError(s.t, json.Unmarshal(decode(s.t, rec).Data, &product))
	require.Len(s.t, product.Variants, 2)

	return admin, product
}

func TestHealthCheck(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.client().json(http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	env := decode(t, rec)
	assert.True(t, env.Success)
	assert.JSONEq(t, `{"status":"ok"}`, string(env.Data))
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestRedeemFlow(t *testing.T) {
	srv := newTestServer(t)
	admin, product := srv.seed()
	red := product.Variants[0]

	alice := srv.client()
	rec := alice.json(http.MethodPost, "/auth/register", map[string]string{
		"handle": "@alice", "password": "hunter22", "password_confirm": "hunter22",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Contains(t, alice.cookies, "pointshop_session")

	rec = alice.json(http.MethodGet, "/shops", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var shops []struct {
		Shop      string `json:"shop"`
		HasAccess bool   `json:"has_access"`
		IsOpen    bool   `json:"is_open"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &shops))
	require.Len(t, shops, 2)
	assert.Equal(t, "regular", shops[0].Shop)
	assert.True(t, shops[0].HasAccess)
	assert.True(t, shops[0].IsOpen)
	assert.False(t, shops[1].HasAccess)

	rec = alice.json(http.MethodPost, "/api/redeem", map[string]int64{"variant_id": red.ID})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var result struct {
		OrderID     int64 `json:"order_id"`
		PointsSpent int   `json:"points_spent"`
		Balance     int   `json:"balance"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &result))
	assert.Equal(t, 100, result.PointsSpent)
	assert.Equal(t, 50, result.Balance)

	assertDecline(t, alice.json(http.MethodPost, "/api/redeem", map[string]int64{"variant_id": red.ID}),
		http.StatusBadRequest, "OUT_OF_STOCK")

	messages := srv.notifier.sent()
	require.Len(t, messages, 1)
	assert.Contains(t, messages[0], "@alice")
	assert.Contains(t, messages[0], "Order ID: "+strconv.FormatInt(result.OrderID, 10))

	rec = alice.json(http.MethodGet, "/auth/me", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(decode(t, rec).Data), `"points":50`)

	rec = admin.json(http.MethodGet, "/admin/orders?status=new", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var orders struct {
		Orders []struct {
			ID     int64  `json:"id"`
			Handle string `json:"handle"`
		} `json:"orders"`
		Page struct {
			Total int64 `json:"total"`
		} `json:"page"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &orders))
	require.Len(t, orders.Orders, 1)
	assert.Equal(t, "@alice", orders.Orders[0].Handle)
	assert.EqualValues(t, 1, orders.Page.Total)

	rec = admin.json(http.MethodPut, "/admin/orders/"+strconv.FormatInt(result.OrderID, 10)+"/status", map[string]string{"status": "delivered"})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assertDecline(t, admin.json(http.MethodPut, "/admin/orders/"+strconv.FormatInt(result.OrderID, 10)+"/status", map[string]string{"status": "lost"}),
		http.StatusBadRequest, "INVALID_STATUS")
}

func TestRedeemDeclineStatusCodes(t *testing.T) {
	srv := newTestServer(t)
	admin, product := srv.seed()
	blue := product.Variants[1]

	assertDecline(t, srv.client().json(http.MethodPost, "/api/redeem", map[string]int64{"variant_id": blue.ID}),
		http.StatusUnauthorized, "UNAUTHORIZED")

	require.Equal(t, http.StatusOK, admin.json(http.MethodPost, "/admin/points", map[string]any{"handle": "@bob", "points": 500}).Code)
	bob := srv.client()
	require.Equal(t, http.StatusCreated, bob.json(http.MethodPost, "/auth/register", map[string]string{
		"handle": "bob", "password": "hunter22", "password_confirm": "hunter22",
	}).Code)

	assertDecline(t, bob.json(http.MethodPost, "/api/redeem", map[string]int64{"variant_id": blue.ID}),
		http.StatusForbidden, "ACCESS_DENIED")
	assertDecline(t, bob.json(http.MethodPost, "/api/redeem", map[string]int64{"variant_id": 9999}),
		http.StatusBadRequest, "ITEM_UNAVAILABLE")
	assertDecline(t, bob.json(http.MethodPost, "/api/redeem", map[string]int64{"variant_id": 0}),
		http.StatusBadRequest, "VALIDATION_FAILED")

	assert.Empty(t, srv.notifier.sent())
}

func TestAdminRoutesRequireAdminSession(t *testing.T) {
	srv := newTestServer(t)
	anon := srv.client()

	for _, path := range []string{"/admin/allowlist", "/admin/users", "/admin/orders", "/admin/products", "/admin/orders/export"} {
		assertDecline(t, anon.json(http.MethodGet, path, nil), http.StatusForbidden, "FORBIDDEN")
	}

	assertDecline(t, anon.json(http.MethodPost, "/admin/login", map[string]string{"password": "nope"}),
		http.StatusUnauthorized, "INVALID_ADMIN_PASSWORD")
	assert.NotContains(t, anon.cookies, "pointshop_session")
}

func TestAdminLogoutKeepsUserLogin(t *testing.T) {
	srv := newTestServer(t)
	admin, _ := srv.seed()

	require.Equal(t, http.StatusCreated, admin.json(http.MethodPost, "/auth/register", map[string]string{
		"handle": "@alice", "password": "hunter22", "password_confirm": "hunter22",
	}).Code)

	require.Equal(t, http.StatusOK, admin.json(http.MethodPost, "/admin/logout", nil).Code)
	assertDecline(t, admin.json(http.MethodGet, "/admin/users", nil), http.StatusForbidden, "FORBIDDEN")
	assert.Equal(t, http.StatusOK, admin.json(http.MethodGet, "/auth/me", nil).Code)

	require.Equal(t, http.StatusOK, admin.json(http.MethodPost, "/auth/logout", nil).Code)
	assertDecline(t, admin.json(http.MethodGet, "/auth/me", nil), http.StatusUnauthorized, "UNAUTHORIZED")
}

func TestTamperedSessionIsCleared(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: "pointshop_session", Value: "not-a-token"})
	rec := httptest.NewRecorder()
	srv.e.ServeHTTP(rec, req)

	assertDecline(t, rec, http.StatusUnauthorized, "UNAUTHORIZED")
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "pointshop_session", cookies[0].Name)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestUploadedImageIsServed(t *testing.T) {
	srv := newTestServer(t)
	_, product := srv.seed()
	require.True(t, strings.HasPrefix(product.ImageURL, "/static/uploads/"), product.ImageURL)

	rec := srv.client().do(httptest.NewRequest(http.MethodGet, product.ImageURL, nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, pngBytes, rec.Body.Bytes())

	assertDecline(t, srv.client().json(http.MethodGet, "/static/uploads/missing.png", nil), http.StatusNotFound, "NOT_FOUND")
}

func TestExportOrdersDownload(t *testing.T) {
	srv := newTestServer(t)
	admin, product := srv.seed()

	alice := srv.client()
	require.Equal(t, http.StatusCreated, alice.json(http.MethodPost, "/auth/register", map[string]string{
		"handle": "@alice", "password": "hunter22", "password_confirm": "hunter22",
	}).Code)
	require.Equal(t, http.StatusCreated, alice.json(http.MethodPost, "/api/redeem", map[string]int64{"variant_id": product.Variants[1].ID}).Code)

	rec := admin.json(http.MethodGet, "/admin/orders/export", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="orders_20260314_1200.csv"`, rec.Header().Get(echo.HeaderContentDisposition))
	assert.True(t, strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), "text/csv"))

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "order_id,created_at,handle,shop,product_title,variant_label,points_spent,status_label", lines[0])
	assert.Contains(t, lines[1], ",@alice,regular,Hoodie,Blue,50,New")
}

func TestCatalogAdminLifecycle(t *testing.T) {
	srv := newTestServer(t)
	admin, product := srv.seed()
	productPath := "/admin/products/" + strconv.FormatInt(product.ID, 10)

	rec := admin.json(http.MethodPost, productPath+"/variants", map[string]any{"label": "Green", "points_cost": 70, "stock": 3})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var variant struct {
		ID     int64 `json:"id"`
		Active bool  `json:"active"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &variant))
	assert.True(t, variant.Active)

	variantPath := "/admin/variants/" + strconv.FormatInt(variant.ID, 10)
	rec = admin.json(http.MethodPut, variantPath, map[string]any{"label": "Green", "points_cost": 75, "active": false})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assertDecline(t, admin.json(http.MethodPut, variantPath, map[string]any{"label": "Green"}), http.StatusBadRequest, "VALIDATION_FAILED")
	assert.Equal(t, http.StatusOK, admin.json(http.MethodDelete, variantPath, nil).Code)

	rec = admin.json(http.MethodDelete, productPath+"/image", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var updated productData
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &updated))
	assert.Empty(t, updated.ImageURL)
	assertDecline(t, admin.json(http.MethodGet, product.ImageURL, nil), http.StatusNotFound, "NOT_FOUND")

	rec = admin.multipart(http.MethodPut, productPath, map[string]string{"title": "Hoodie v2", "active": "true", "image_url": "https://cdn.example.com/h.png"}, "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &updated))
	assert.Equal(t, "https://cdn.example.com/h.png", updated.ImageURL)

	require.Equal(t, http.StatusOK, admin.json(http.MethodDelete, productPath, nil).Code)
	assertDecline(t, admin.json(http.MethodDelete, productPath, nil), http.StatusNotFound, "PRODUCT_NOT_FOUND")
	assertDecline(t, admin.json(http.MethodDelete, "/admin/products/abc", nil), http.StatusBadRequest, "VALIDATION_FAILED")
}

func TestUnknownRoute(t *testing.T) {
	srv := newTestServer(t)

	assertDecline(t, srv.client().json(http.MethodGet, "/nope", nil), http.StatusNotFound, "HTTP_ERROR")
}
