package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"atelier_back_end/internal/auth"
	"atelier_back_end/internal/cache"
	"atelier_back_end/internal/cart"
	"atelier_back_end/internal/catalog"
	"atelier_back_end/internal/contact"
	"atelier_back_end/internal/customize"
	"atelier_back_end/internal/handlers"
	"atelier_back_end/internal/handlers/checkout"
	customizeHandler "atelier_back_end/internal/handlers/customize"
	"atelier_back_end/internal/handlers/product"
	"atelier_back_end/internal/handlers/user"
	"atelier_back_end/internal/middleware"
	"atelier_back_end/internal/models"
	"atelier_back_end/internal/orders"
	"atelier_back_end/internal/repository"
	"atelier_back_end/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("routes-test-secret")

type testServer struct {
	engine *gin.Engine
	carts  *cart.MemoryStore
	orders *repository.MemoryOrders
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	users := repository.NewMemoryUsers()
	orderRepo := repository.NewMemoryOrders()
	carts := cart.NewMemoryStore()
	blacklist := cache.NewMemoryBlacklist()
	sync := func(f func()) { f() }

	catalogSvc := catalog.NewService(repository.NewMemoryProducts(repository.SeedProducts()), nil, nil)
	authSvc := auth.NewService(users, blacklist, secret, time.Hour, func(email string) bool {
		return email == "admin@atelier.test"
	})
	_, err := authSvc.ProvisionAdmins(context.Background(), []string{"admin@atelier.test"}, "pw")
	require.NoError(t, err)
	orderSvc := orders.NewService(orderRepo, carts, catalogSvc, users, services.LogPublisher{}, services.LogMailer{}).WithDispatch(sync)
	contactSvc := contact.NewService(repository.NewMemoryContacts(), services.LogMailer{}).WithDispatch(sync)

	r := gin.New()
	RegisterRoutes(r, Deps{
		Auth:      middleware.NewAuth(secret, blacklist),
		Limiter:   middleware.NewRateLimiter(nil),
		Products:  product.NewHandler(catalogSvc, nil, 1<<20),
		Users:     user.NewAuthHandler(authSvc),
		Cart:      user.NewCartHandler(carts, catalogSvc),
		Orders:    user.NewOrderHandler(orderSvc),
		Customize: customizeHandler.NewHandler(customize.NewMemoryStore(), catalogSvc, carts, nil, 1<<20),
		Checkout:  checkout.NewHandler(orderSvc),
		Contact:   handlers.NewContactHandler(contactSvc),
	})
	return &testServer{engine: r, carts: carts, orders: orderRepo}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

// login ouvre une session et retourne le token et l'id utilisateur.
func (s *testServer) login(t *testing.T, email string) (string, string) {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/users/login", "", gin.H{"email": email, "password": "pw"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var sess auth.Session
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sess))
	return sess.Token, sess.User.ID
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

var shippingAddress = gin.H{
	"name":    "Jane Doe",
	"street":  "1 rue de la Paix",
	"city":    "Paris",
	"state":   "IDF",
	"zipCode": "75002",
	"country": "France",
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/health", "", nil).Code)
}

func TestCustomizableListOnlyReturnsCustomizable(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/products/customizable/list", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	products := decode[[]models.Product](t, w)
	assert.Len(t, products, 5)
	for _, p := range products {
		assert.True(t, p.IsCustomizable, p.ID)
	}
}

func TestProductLookups(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/products/1", "", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/products/999", "", nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/products/search", "", nil).Code)

	w := s.do(t, http.MethodGet, "/api/products/category/Jackets", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Product](t, w), 2)

	w = s.do(t, http.MethodGet, "/api/products/search?q=hoodie", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Graphic Hoodie")
}

func TestCreateProductRequiresAdmin(t *testing.T) {
	s := newTestServer(t)
	customer, _ := s.login(t, "jane@example.com")
	admin, _ := s.login(t, "admin@atelier.test")

	body := gin.H{"name": "Cap", "category": "Accessories", "price": 15}
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodPost, "/api/products", "", body).Code)
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodPost, "/api/products", customer, body).Code)
	assert.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/products", admin, body).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/api/products", admin, gin.H{"name": "x"}).Code)
}

func TestAdminAddressCannotBeClaimed(t *testing.T) {
	s := newTestServer(t)
	mallory, _ := s.login(t, "mallory@evil.test")

	w := s.do(t, http.MethodPut, "/api/users/profile", mallory, gin.H{"email": "admin@atelier.test"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodPost, "/api/users/register", "", gin.H{"name": "M", "email": "admin@atelier.test", "password": "x"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	again, _ := s.login(t, "mallory@evil.test")
	w = s.do(t, http.MethodGet, "/api/users/profile", again, nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[models.User](t, w)
	assert.Equal(t, "mallory@evil.test", me.Email)
	assert.Equal(t, models.RoleCustomer, me.Role)

	body := gin.H{"name": "Cap", "category": "Accessories", "price": 15}
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodPost, "/api/products", again, body).Code)

	w = s.do(t, http.MethodPost, "/api/users/login", "", gin.H{"email": "admin@atelier.test", "password": "guess"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCheckoutWithoutSessionKeepsCart(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	items, err := cart.Add(nil, models.CartItem{ProductID: "1", Name: "Classic T-Shirt", Price: 24.99, Quantity: 1})
	require.NoError(t, err)
	require.NoError(t, s.carts.Save(ctx, "u1", items))

	w := s.do(t, http.MethodPost, "/api/checkout", "", gin.H{"shippingAddress": shippingAddress})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Veuillez vous connecter","redirect":"/login?redirect=/cart"}`, w.Body.String())

	stored, err := s.carts.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestCartAndCheckoutFlow(t *testing.T) {
	s := newTestServer(t)
	token, userID := s.login(t, "jane@example.com")

	w := s.do(t, http.MethodPost, "/api/checkout", token, gin.H{"shippingAddress": shippingAddress})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/cart/add", token, gin.H{"productId": "2", "quantity": 1})
	require.Equal(t, http.StatusOK, w.Code)
	summary := decode[models.CartSummary](t, w)
	assert.InDelta(t, 49.99, summary.Subtotal, 0.001)
	assert.InDelta(t, 5.99, summary.Shipping, 0.001)
	assert.InDelta(t, 55.98, summary.Total, 0.001)

	w = s.do(t, http.MethodPost, "/api/cart/add", token, gin.H{"productId": "5"})
	require.Equal(t, http.StatusOK, w.Code)
	summary = decode[models.CartSummary](t, w)
	assert.Equal(t, 2, summary.Count)
	assert.InDelta(t, 0.0, summary.Shipping, 0.001)

	key := summary.Items[0].Key
	w = s.do(t, http.MethodPut, "/api/cart/"+key, token, gin.H{"quantity": 0})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[models.CartSummary](t, w).Items[0].Quantity)

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodDelete, "/api/cart/nope", token, nil).Code)

	w = s.do(t, http.MethodPost, "/api/checkout", token, gin.H{"shippingAddress": gin.H{"name": "Jane"}})
	require.Equal(t, http.StatusBadRequest, w.Code)
	items, err := s.carts.Load(context.Background(), userID)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	w = s.do(t, http.MethodPost, "/api/checkout", token, gin.H{"shippingAddress": shippingAddress})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp := decode[struct {
		Message string       `json:"message"`
		Order   models.Order `json:"order"`
	}](t, w)
	assert.Equal(t, "Commande passée avec succès", resp.Message)
	assert.Equal(t, models.OrderPending, resp.Order.Status)
	assert.InDelta(t, 79.98, resp.Order.Total, 0.001)

	w = s.do(t, http.MethodGet, "/api/cart", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, decode[models.CartSummary](t, w).Count)

	w = s.do(t, http.MethodGet, "/api/orders/"+resp.Order.ID, token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/api/orders/"+resp.Order.ID+"/qr", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))

	other, _ := s.login(t, "john@example.com")
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/orders/"+resp.Order.ID, other, nil).Code)
}

func TestOrderStatusFilter(t *testing.T) {
	s := newTestServer(t)
	token, userID := s.login(t, "jane@example.com")
	admin, _ := s.login(t, "admin@atelier.test")
	ctx := context.Background()

	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	for i, st := range []models.OrderStatus{models.OrderPending, models.OrderProcessing, models.OrderShipped, models.OrderDelivered} {
		o := models.Order{ID: string(st), UserID: userID, Status: st, CreatedAt: base.Add(time.Duration(i) * time.Hour)}
		require.NoError(t, s.orders.Insert(ctx, &o))
	}

	count := func(query string) int {
		w := s.do(t, http.MethodGet, "/api/orders"+query, token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		return len(decode[[]models.Order](t, w))
	}
	assert.Equal(t, 4, count(""))
	assert.Equal(t, 2, count("?status=open"))
	assert.Equal(t, 1, count("?status=shipped"))
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/orders?status=lost", token, nil).Code)

	path := "/api/orders/pending/status"
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodPut, path, token, gin.H{"status": "delivered"}).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodPut, path, admin, gin.H{"status": "delivered"}).Code)
	assert.Equal(t, 2, count("?status=delivered"))
}

func TestCustomizationFlowMergesIdenticalLines(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.login(t, "jane@example.com")

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/api/customize/2", token, nil).Code)

	w := s.do(t, http.MethodPost, "/api/customize/1", token, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	sess := decode[customize.Session](t, w)
	assert.Equal(t, "white", sess.Customization.Color)
	assert.Equal(t, "XS", sess.Customization.Size)

	base := "/api/customize/session/" + sess.ID
	w = s.do(t, http.MethodPatch, base, token, gin.H{"color": "purple"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPatch, base, token, gin.H{"color": "black", "size": "L", "text": "Hello"})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, base+"/preview", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	preview := decode[customize.Preview](t, w)
	require.NotEmpty(t, preview.Layers)

	other, _ := s.login(t, "john@example.com")
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, base, other, nil).Code)

	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, base+"/cart", token, nil).Code)
	w = s.do(t, http.MethodPost, base+"/cart", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[struct {
		Cart models.CartSummary `json:"cart"`
	}](t, w)
	require.Equal(t, 1, resp.Cart.Count)
	assert.Equal(t, 2, resp.Cart.Items[0].Quantity)
	assert.Equal(t, "black", resp.Cart.Items[0].Customization.Color)

	w = s.do(t, http.MethodPost, base+"/reset", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	reset := decode[customize.Session](t, w)
	assert.Equal(t, "white", reset.Customization.Color)
	assert.Empty(t, reset.Customization.Text)
}

func TestContact(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/contact", "", gin.H{"name": "Jane", "email": "jane@example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/contact", "", gin.H{
		"name":    "Jane",
		"email":   "jane@example.com",
		"subject": "Livraison",
		"message": "Livrez-vous en Belgique ?",
	})
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestShippingOptions(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/shipping?cart_total=50", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	calc := decode[models.ShippingCalculation](t, w)
	assert.False(t, calc.IsFree)
	assert.InDelta(t, 5.99, calc.Options[0].Price, 0.001)

	w = s.do(t, http.MethodGet, "/api/shipping?cart_total=50.01", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[models.ShippingCalculation](t, w).IsFree)

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/shipping?cart_total=abc", "", nil).Code)
}

func TestLogoutRevokesSession(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.login(t, "jane@example.com")

	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/users/profile", token, nil).Code)
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/users/logout", token, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/users/profile", token, nil).Code)
}

func (s *testServer) upload(t *testing.T, path, token, field string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, "upload.bin")
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func TestCustomizationImageUpload(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.login(t, "jane@example.com")

	w := s.do(t, http.MethodPost, "/api/customize/1", token, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	path := "/api/customize/session/" + decode[customize.Session](t, w).ID + "/image"

	assert.Equal(t, http.StatusUnsupportedMediaType, s.upload(t, path, token, "image", []byte("just some text")).Code)

	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")
	assert.Equal(t, http.StatusRequestEntityTooLarge, s.upload(t, path, token, "image", append(png, make([]byte, 1<<20)...)).Code)

	w = s.upload(t, path, token, "image", png)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	sess := decode[customize.Session](t, w)
	assert.True(t, strings.HasPrefix(sess.Customization.Image, "data:image/png;base64,"))
}
