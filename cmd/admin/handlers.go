package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/Divy2095/Foodie/internal/catalog"
	"github.com/Divy2095/Foodie/internal/httpx"
	"github.com/Divy2095/Foodie/internal/identity"
	"github.com/Divy2095/Foodie/internal/media"
)

func registerRoutes(r *gin.Engine, ids *identity.Service, cat *catalog.Service, uploader media.Uploader) {
	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	auth := r.Group("/", httpx.Auth(ids))
	auth.POST("/restaurants", registerRestaurantHandler(cat))
	auth.GET("/restaurants/:id/orders", restaurantOrdersHandler(cat))
	auth.POST("/restaurants/:id/menu", addDishHandler(cat, uploader))
	auth.PUT("/restaurants/:id/menu/:index", updateDishHandler(cat))
	auth.DELETE("/restaurants/:id/menu/:index", removeDishHandler(cat))
}

// owned loads the restaurant and rejects callers other than its owner.
func owned(c *gin.Context, cat *catalog.Service) (*catalog.Restaurant, bool) {
	r, err := cat.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, catalog.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "restaurant not found"})
		return nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, false
	}
	user := httpx.UserFrom(c)
	if r.OwnerID != "" && r.OwnerID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your restaurant"})
		return nil, false
	}
	return r, true
}

type registerRestaurantRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Open    string `json:"open"`
	Close   string `json:"close"`
}

func registerRestaurantHandler(cat *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req registerRestaurantRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "restaurant name is required"})
			return
		}
		r := &catalog.Restaurant{
			Name:    req.Name,
			Address: req.Address,
			Open:    req.Open,
			Close:   req.Close,
			OwnerID: httpx.UserFrom(c).ID,
		}
		if err := cat.Register(c.Request.Context(), r); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"id": r.ID})
	}
}

func restaurantOrdersHandler(cat *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		r, ok := owned(c, cat)
		if !ok {
			return
		}
		orders, err := cat.Orders(c.Request.Context(), r.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if orders == nil {
			orders = []any{}
		}
		c.JSON(http.StatusOK, gin.H{"orders": orders})
	}
}

func parsePrice(raw string) (decimal.Decimal, error) {
	p, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, errors.New("price must be a number")
	}
	if p.IsNegative() {
		return decimal.Zero, errors.New("price must not be negative")
	}
	return p, nil
}

// addDishHandler takes a multipart form: name, description, price and
// the dish image. The image goes to the media host first; the dish is
// written only if the upload succeeded.
func addDishHandler(cat *catalog.Service, uploader media.Uploader) gin.HandlerFunc {
	return func(c *gin.Context) {
		r, ok := owned(c, cat)
		if !ok {
			return
		}

		name := c.PostForm("name")
		if name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "dish name is required"})
			return
		}
		price, err := parsePrice(c.PostForm("price"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		fileHeader, err := c.FormFile("image")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "dish image is required"})
			return
		}
		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read image"})
			return
		}
		defer file.Close()

		url, err := uploader.Upload(c.Request.Context(), fileHeader.Filename, file)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}

		dish := catalog.Dish{
			Name:        name,
			Description: c.PostForm("description"),
			Price:       price,
			ImageURL:    url,
		}
		if err := cat.AddDish(c.Request.Context(), r.ID, dish); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, dish)
	}
}

type updateDishRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	ImageURL    string `json:"image_url"`
}

func updateDishHandler(cat *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		r, ok := owned(c, cat)
		if !ok {
			return
		}
		index, err := strconv.Atoi(c.Param("index"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid menu index"})
			return
		}
		var req updateDishRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "dish name is required"})
			return
		}
		price, err := parsePrice(req.Price)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		dish := catalog.Dish{
			Name:        req.Name,
			Description: req.Description,
			Price:       price,
			ImageURL:    req.ImageURL,
		}
		switch err := cat.UpdateDish(c.Request.Context(), r.ID, index, dish); {
		case errors.Is(err, catalog.ErrDishNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "dish not found"})
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusOK, dish)
		}
	}
}

func removeDishHandler(cat *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		r, ok := owned(c, cat)
		if !ok {
			return
		}
		index, err := strconv.Atoi(c.Param("index"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid menu index"})
			return
		}
		switch err := cat.RemoveDish(c.Request.Context(), r.ID, index); {
		case errors.Is(err, catalog.ErrDishNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "dish not found"})
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		default:
			c.Status(http.StatusNoContent)
		}
	}
}
