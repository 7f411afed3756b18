package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/Divy2095/Foodie/internal/catalog"
	"github.com/Divy2095/Foodie/internal/docstore"
	"github.com/Divy2095/Foodie/internal/identity"
	"github.com/Divy2095/Foodie/internal/kvstore"
)

// fakeUploader stands in for the media host.
type fakeUploader struct {
	url string
	err error
}

func (f *fakeUploader) Upload(_ context.Context, _ string, r io.Reader) (string, error) {
	_, _ = io.ReadAll(r)
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

type adminEnv struct {
	router *gin.Engine
	docs   *docstore.Memory
	ids    *identity.Service
	cat    *catalog.Service
	token  string
	userID string
}

func newAdminEnv(t *testing.T, uploader *fakeUploader) *adminEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	docs := docstore.NewMemory()
	ids := identity.NewService(docs, kvstore.NewMemory())
	cat := catalog.NewService(docs)

	user, err := ids.SignUp(ctx, "owner@example.com", "s3cret", "Owner")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	token, _, err := ids.SignIn(ctx, "owner@example.com", "s3cret")
	if err != nil {
		t.Fatalf("signin: %v", err)
	}

	router := gin.New()
	registerRoutes(router, ids, cat, uploader)
	return &adminEnv{router: router, docs: docs, ids: ids, cat: cat, token: token, userID: user.ID}
}

func (e *adminEnv) doJSON(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.token)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *adminEnv) registerRestaurant(t *testing.T) string {
	t.Helper()
	w := e.doJSON(t, http.MethodPost, "/restaurants", map[string]string{
		"name": "Spice Villa", "address": "12 MG Road", "open": "09:00", "close": "22:00",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register status=%d body=%s", w.Code, w.Body.String())
	}
	var out struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return out.ID
}

func dishForm(t *testing.T, fields map[string]string, withImage bool) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := form.WriteField(k, v); err != nil {
			t.Fatalf("form field: %v", err)
		}
	}
	if withImage {
		part, err := form.CreateFormFile("image", "dish.jpg")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		_, _ = part.Write([]byte("jpeg-bytes"))
	}
	if err := form.Close(); err != nil {
		t.Fatalf("close form: %v", err)
	}
	return &buf, form.FormDataContentType()
}

func (e *adminEnv) postDish(t *testing.T, restID string, fields map[string]string, withImage bool) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := dishForm(t, fields, withImage)
	req := httptest.NewRequest(http.MethodPost, "/restaurants/"+restID+"/menu", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+e.token)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestRegisterAndAddDish(t *testing.T) {
	e := newAdminEnv(t, &fakeUploader{url: "https://img.example/dish.jpg"})
	restID := e.registerRestaurant(t)

	w := e.postDish(t, restID, map[string]string{
		"name": "Paneer Tikka", "description": "smoky", "price": "180",
	}, true)
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}

	r, err := e.cat.Get(context.Background(), restID)
	if err != nil {
		t.Fatalf("get restaurant: %v", err)
	}
	if len(r.Menu) != 1 || r.Menu[0].ImageURL != "https://img.example/dish.jpg" {
		t.Fatalf("menu=%+v", r.Menu)
	}
	if r.OwnerID != e.userID {
		t.Fatalf("owner=%s want %s", r.OwnerID, e.userID)
	}
}

func TestAddDishRequiresImage(t *testing.T) {
	e := newAdminEnv(t, &fakeUploader{url: "x"})
	restID := e.registerRestaurant(t)

	w := e.postDish(t, restID, map[string]string{"name": "Dosa", "price": "90"}, false)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestAddDishRejectsBadPrice(t *testing.T) {
	e := newAdminEnv(t, &fakeUploader{url: "x"})
	restID := e.registerRestaurant(t)

	w := e.postDish(t, restID, map[string]string{"name": "Dosa", "price": "ninety"}, true)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestAddDishUploadFailureAborts(t *testing.T) {
	e := newAdminEnv(t, &fakeUploader{err: errors.New("host down")})
	restID := e.registerRestaurant(t)

	w := e.postDish(t, restID, map[string]string{"name": "Dosa", "price": "90"}, true)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	r, _ := e.cat.Get(context.Background(), restID)
	if len(r.Menu) != 0 {
		t.Fatalf("dish written despite upload failure: %+v", r.Menu)
	}
}

func TestUpdateAndRemoveDish(t *testing.T) {
	e := newAdminEnv(t, &fakeUploader{url: "https://img.example/dish.jpg"})
	restID := e.registerRestaurant(t)
	e.postDish(t, restID, map[string]string{"name": "Lassi", "price": "60"}, true)

	w := e.doJSON(t, http.MethodPut, "/restaurants/"+restID+"/menu/0", map[string]string{
		"name": "Sweet Lassi", "price": "70", "image_url": "https://img.example/dish.jpg",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("update status=%d body=%s", w.Code, w.Body.String())
	}
	r, _ := e.cat.Get(context.Background(), restID)
	if r.Menu[0].Name != "Sweet Lassi" || !r.Menu[0].Price.Equal(decimal.NewFromInt(70)) {
		t.Fatalf("menu=%+v", r.Menu)
	}

	w = e.doJSON(t, http.MethodDelete, "/restaurants/"+restID+"/menu/0", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete status=%d body=%s", w.Code, w.Body.String())
	}
	r, _ = e.cat.Get(context.Background(), restID)
	if len(r.Menu) != 0 {
		t.Fatalf("menu not empty: %+v", r.Menu)
	}

	w = e.doJSON(t, http.MethodDelete, "/restaurants/"+restID+"/menu/0", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("delete missing status=%d", w.Code)
	}
}

func TestOrdersVisibleToOwnerOnly(t *testing.T) {
	e := newAdminEnv(t, &fakeUploader{url: "x"})
	restID := e.registerRestaurant(t)

	// simulate a committed order landing on the seller document
	err := e.docs.AppendToArrayField(context.Background(), "restaurants", restID, "orders",
		map[string]any{"name": "Lassi", "quantity": 1, "orderStatus": "Paid"})
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	w := e.doJSON(t, http.MethodGet, "/restaurants/"+restID+"/orders", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var out struct {
		Orders []map[string]any `json:"orders"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Orders) != 1 {
		t.Fatalf("orders=%+v", out.Orders)
	}

	// a different signed-in user is rejected
	ctx := context.Background()
	if _, err := e.ids.SignUp(ctx, "rival@example.com", "s3cret", "Rival"); err != nil {
		t.Fatalf("signup: %v", err)
	}
	rivalToken, _, err := e.ids.SignIn(ctx, "rival@example.com", "s3cret")
	if err != nil {
		t.Fatalf("signin: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/restaurants/"+restID+"/orders", nil)
	req.Header.Set("Authorization", "Bearer "+rivalToken)
	w2 := httptest.NewRecorder()
	e.router.ServeHTTP(w2, req)
	if w2.Code != http.StatusForbidden {
		t.Fatalf("rival status=%d body=%s", w2.Code, w2.Body.String())
	}
}
