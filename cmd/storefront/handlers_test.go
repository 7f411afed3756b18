package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/Divy2095/Foodie/internal/cart"
	"github.com/Divy2095/Foodie/internal/catalog"
	"github.com/Divy2095/Foodie/internal/checkout"
	"github.com/Divy2095/Foodie/internal/docstore"
	"github.com/Divy2095/Foodie/internal/identity"
	"github.com/Divy2095/Foodie/internal/kvstore"
	"github.com/Divy2095/Foodie/internal/payment"
)

type testEnv struct {
	router       *gin.Engine
	docs         *docstore.Memory
	token        string
	restaurantID string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	docs := docstore.NewMemory()
	durable := kvstore.NewMemory()
	tab := kvstore.NewMemory()

	ids := identity.NewService(docs, durable)
	cat := catalog.NewService(docs)
	carts := cart.NewManager(durable, tab)
	checkouts := checkout.NewService(
		checkout.NewReconciler(cat),
		payment.Simulated{Delay: 1}, // effectively instant
		checkout.NewCommitter(docs),
	)

	r := &catalog.Restaurant{
		ID:   "R1",
		Name: "Spice Villa",
		Menu: []catalog.Dish{
			{Name: "Paneer Tikka", Price: decimal.RequireFromString("180")},
			{Name: "Lassi", Price: decimal.RequireFromString("60")},
		},
	}
	if err := cat.Register(ctx, r); err != nil {
		t.Fatalf("register restaurant: %v", err)
	}

	if _, err := ids.SignUp(ctx, "asha@example.com", "s3cret", "Asha"); err != nil {
		t.Fatalf("signup: %v", err)
	}
	token, _, err := ids.SignIn(ctx, "asha@example.com", "s3cret")
	if err != nil {
		t.Fatalf("signin: %v", err)
	}

	router := gin.New()
	registerRoutes(router, ids, cat, carts, checkouts, docs)
	return &testEnv{router: router, docs: docs, token: token, restaurantID: "R1"}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) addItem(t *testing.T, name string) *httptest.ResponseRecorder {
	return e.do(t, http.MethodPost, "/cart/items",
		map[string]string{"restaurant_id": e.restaurantID, "name": name}, true)
}

func decodeCart(t *testing.T, w *httptest.ResponseRecorder) cartView {
	t.Helper()
	var v cartView
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode cart view: %v body=%s", err, w.Body.String())
	}
	return v
}

func TestAddToCartRequiresLogin(t *testing.T) {
	e := newTestEnv(t)
	w := e.do(t, http.MethodPost, "/cart/items",
		map[string]string{"restaurant_id": "R1", "name": "Lassi"}, false)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestAddSameDishTwiceIncrementsQuantity(t *testing.T) {
	e := newTestEnv(t)

	if w := e.addItem(t, "Paneer Tikka"); w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	w := e.addItem(t, "Paneer Tikka")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}

	v := decodeCart(t, w)
	if len(v.Items) != 1 || v.Items[0].Quantity != 2 {
		t.Fatalf("want one item with quantity 2, got %+v", v.Items)
	}
	if v.Subtotal != "360.00" || v.Total != "400.00" {
		t.Fatalf("subtotal=%s total=%s", v.Subtotal, v.Total)
	}
}

func TestAddUnknownDish(t *testing.T) {
	e := newTestEnv(t)
	if w := e.addItem(t, "Ghost Curry"); w.Code != http.StatusNotFound {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestSetQuantityZeroRemovesItem(t *testing.T) {
	e := newTestEnv(t)
	e.addItem(t, "Paneer Tikka")
	e.addItem(t, "Lassi")

	zero := 0
	w := e.do(t, http.MethodPatch, "/cart/items/Paneer%20Tikka",
		map[string]*int{"quantity": &zero}, true)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	v := decodeCart(t, w)
	if len(v.Items) != 1 || v.Items[0].Name != "Lassi" {
		t.Fatalf("want only Lassi left, got %+v", v.Items)
	}
}

func TestRemoveItem(t *testing.T) {
	e := newTestEnv(t)
	e.addItem(t, "Lassi")

	w := e.do(t, http.MethodDelete, "/cart/items/Lassi", nil, true)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if v := decodeCart(t, w); len(v.Items) != 0 || v.Count != 0 {
		t.Fatalf("want empty cart, got %+v", v)
	}
}

func TestCheckoutHappyPath(t *testing.T) {
	e := newTestEnv(t)
	e.addItem(t, "Paneer Tikka")
	e.addItem(t, "Paneer Tikka")
	e.addItem(t, "Lassi")

	w := e.do(t, http.MethodPost, "/checkout",
		map[string]string{"address": "12 MG Road", "phone": "9999999999"}, true)
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}

	// cart is empty afterwards
	v := decodeCart(t, e.do(t, http.MethodGet, "/cart", nil, true))
	if len(v.Items) != 0 {
		t.Fatalf("cart not cleared: %+v", v.Items)
	}

	// buyer history shows both dishes
	ow := e.do(t, http.MethodGet, "/orders", nil, true)
	if ow.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", ow.Code, ow.Body.String())
	}
	var out struct {
		Orders []map[string]any `json:"orders"`
	}
	if err := json.Unmarshal(ow.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode orders: %v", err)
	}
	if len(out.Orders) != 2 {
		t.Fatalf("want 2 order records, got %d", len(out.Orders))
	}
	for _, o := range out.Orders {
		if o["restaurantid"] != nil {
			t.Fatalf("buyer copy leaked restaurantid: %+v", o)
		}
		if o["restaurantName"] != "Spice Villa" {
			t.Fatalf("missing restaurant name: %+v", o)
		}
	}

	// seller received its copies too
	sellerDoc, err := e.docs.GetDocument(context.Background(), "restaurants", "R1")
	if err != nil {
		t.Fatalf("restaurant doc: %v", err)
	}
	if orders, _ := sellerDoc["orders"].([]any); len(orders) != 2 {
		t.Fatalf("want 2 seller records, got %v", sellerDoc["orders"])
	}
}

func TestCheckoutValidation(t *testing.T) {
	e := newTestEnv(t)
	e.addItem(t, "Lassi")

	w := e.do(t, http.MethodPost, "/checkout", map[string]string{"phone": "9999"}, true)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestCheckoutEmptyCart(t *testing.T) {
	e := newTestEnv(t)
	w := e.do(t, http.MethodPost, "/checkout",
		map[string]string{"address": "12 MG Road", "phone": "9999"}, true)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestListAndGetRestaurants(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(t, http.MethodGet, "/restaurants", nil, false)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}

	w = e.do(t, http.MethodGet, fmt.Sprintf("/restaurants/%s", e.restaurantID), nil, false)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	w = e.do(t, http.MethodGet, "/restaurants/missing", nil, false)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}
