package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Divy2095/Foodie/internal/cart"
	"github.com/Divy2095/Foodie/internal/catalog"
	"github.com/Divy2095/Foodie/internal/checkout"
	"github.com/Divy2095/Foodie/internal/docstore"
	"github.com/Divy2095/Foodie/internal/httpx"
	"github.com/Divy2095/Foodie/internal/identity"
	"github.com/Divy2095/Foodie/internal/money"
)

func registerRoutes(r *gin.Engine, ids *identity.Service, cat *catalog.Service,
	carts *cart.Manager, checkouts *checkout.Service, docs docstore.Store) {

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	r.POST("/signup", signupHandler(ids))
	r.POST("/login", loginHandler(ids))
	r.POST("/logout", logoutHandler(ids))

	r.GET("/restaurants", listRestaurantsHandler(cat))
	r.GET("/restaurants/:id", getRestaurantHandler(cat))

	auth := r.Group("/", httpx.Auth(ids))
	auth.GET("/cart", getCartHandler(carts))
	auth.POST("/cart/items", addCartItemHandler(carts, cat))
	auth.PATCH("/cart/items/:name", setQuantityHandler(carts))
	auth.DELETE("/cart/items/:name", removeItemHandler(carts))
	auth.POST("/checkout", checkoutHandler(carts, checkouts))
	auth.GET("/orders", ordersHandler(docs))
}

type signupRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

func signupHandler(ids *identity.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req signupRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		user, err := ids.SignUp(c.Request.Context(), req.Email, req.Password, req.DisplayName)
		if errors.Is(err, identity.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, user)
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func loginHandler(ids *identity.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		token, user, err := ids.SignIn(c.Request.Context(), req.Email, req.Password)
		if errors.Is(err, identity.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
	}
}

func logoutHandler(ids *identity.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := ids.SignOut(c.Request.Context(), httpx.Token(c)); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func listRestaurantsHandler(cat *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		all, err := cat.List(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": all})
	}
}

func getRestaurantHandler(cat *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		r, err := cat.Get(c.Request.Context(), c.Param("id"))
		if errors.Is(err, catalog.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "restaurant not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, r)
	}
}

type cartItemView struct {
	Name         string `json:"name"`
	Price        string `json:"price"`
	Quantity     int    `json:"quantity"`
	ImageURL     string `json:"image_url"`
	RestaurantID string `json:"restaurant_id,omitempty"`
	LineTotal    string `json:"line_total"`
}

type cartView struct {
	Items       []cartItemView `json:"items"`
	Count       int            `json:"count"`
	Subtotal    string         `json:"subtotal"`
	DeliveryFee string         `json:"delivery_fee"`
	Total       string         `json:"total"`
}

func viewOf(entries []cart.Entry) cartView {
	items := make([]cartItemView, 0, len(entries))
	for _, e := range entries {
		items = append(items, cartItemView{
			Name:         e.Name,
			Price:        money.Display(e.Price),
			Quantity:     e.Quantity,
			ImageURL:     e.ImageURL,
			RestaurantID: e.SellerID,
			LineTotal:    money.Display(e.LineTotal()),
		})
	}
	sub := cart.Subtotal(entries)
	return cartView{
		Items:       items,
		Count:       cart.Count(entries),
		Subtotal:    money.Display(sub),
		DeliveryFee: money.Display(money.DeliveryFee),
		Total:       money.Display(money.GrandTotal(sub)),
	}
}

func getCartHandler(carts *cart.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := httpx.UserFrom(c)
		session, err := carts.Session(c.Request.Context(), user.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, viewOf(session.Store.Snapshot()))
	}
}

type addItemRequest struct {
	RestaurantID string `json:"restaurant_id"`
	Name         string `json:"name"`
}

func addCartItemHandler(carts *cart.Manager, cat *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req addItemRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.RestaurantID == "" || req.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "restaurant_id and name are required"})
			return
		}

		r, err := cat.Get(c.Request.Context(), req.RestaurantID)
		if errors.Is(err, catalog.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "restaurant not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		var dish *catalog.Dish
		for i := range r.Menu {
			if r.Menu[i].Name == req.Name {
				dish = &r.Menu[i]
				break
			}
		}
		if dish == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "dish not on the menu"})
			return
		}

		user := httpx.UserFrom(c)
		session, err := carts.Session(c.Request.Context(), user.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		session.Store.AddItem(cart.Entry{
			Name:     dish.Name,
			Price:    dish.Price,
			ImageURL: dish.ImageURL,
		}, r.ID)
		if err := session.Save(c.Request.Context()); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, viewOf(session.Store.Snapshot()))
	}
}

type setQuantityRequest struct {
	Quantity *int `json:"quantity"`
}

func setQuantityHandler(carts *cart.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req setQuantityRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Quantity == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "quantity is required"})
			return
		}
		user := httpx.UserFrom(c)
		session, err := carts.Session(c.Request.Context(), user.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		session.Store.SetQuantity(c.Param("name"), *req.Quantity)
		if err := session.Save(c.Request.Context()); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, viewOf(session.Store.Snapshot()))
	}
}

func removeItemHandler(carts *cart.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := httpx.UserFrom(c)
		session, err := carts.Session(c.Request.Context(), user.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		session.Store.RemoveItem(c.Param("name"))
		if err := session.Save(c.Request.Context()); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, viewOf(session.Store.Snapshot()))
	}
}

type checkoutRequest struct {
	Address  string `json:"address"`
	Landmark string `json:"landmark"`
	Phone    string `json:"phone"`
}

func checkoutHandler(carts *cart.Manager, checkouts *checkout.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req checkoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		if req.Address == "" || req.Phone == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "address and phone are required"})
			return
		}

		user := httpx.UserFrom(c)
		session, err := carts.Session(c.Request.Context(), user.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		records, err := checkouts.Checkout(c.Request.Context(), session, *user, checkout.DeliveryInfo{
			Address:  req.Address,
			Landmark: req.Landmark,
			Phone:    req.Phone,
		})
		var unresolved *checkout.UnresolvedDishError
		switch {
		case errors.Is(err, checkout.ErrEmptyCart):
			c.JSON(http.StatusBadRequest, gin.H{"error": "cart is empty"})
			return
		case errors.As(err, &unresolved):
			c.JSON(http.StatusConflict, gin.H{"error": unresolved.Error()})
			return
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, gin.H{"orders": records})
	}
}

func ordersHandler(docs docstore.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := httpx.UserFrom(c)
		fields, err := docs.GetDocument(c.Request.Context(), "users", user.ID)
		if errors.Is(err, docstore.ErrNotFound) {
			c.JSON(http.StatusOK, gin.H{"orders": []any{}})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		orders, _ := fields["orders"].([]any)
		if orders == nil {
			orders = []any{}
		}
		c.JSON(http.StatusOK, gin.H{"orders": orders})
	}
}
