package api

import (
	"mime/multipart"
	"net/http"

	"go-shop/internal/apperr"
	"go-shop/internal/media"
	"go-shop/internal/product"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const productNotFound = "Product not found"

type ProductHandlers struct {
	Products *product.Store
	Media    *media.Host
	MaxImage int64
	Log      logrus.FieldLogger
}

// CreateProductRequest takes the image either as an upload ("image" form
// file) or as an already hosted URL ("image_url" form field, "image" in JSON).
type CreateProductRequest struct {
	Name        string                `form:"name" json:"name" binding:"required,max=255"`
	Description string                `form:"description" json:"description" binding:"required"`
	Price       *float64              `form:"price" json:"price" binding:"required,gte=0,lte=99999999.99"`
	Stock       *int                  `form:"stock" json:"stock" binding:"required,gte=0,lte=2147483647"`
	ImageURL    string                `form:"image_url" json:"image" binding:"omitempty,url,max=500"`
	Image       *multipart.FileHeader `form:"image" json:"-" swaggerignore:"true"`
}

type UpdateProductRequest struct {
	Name        *string               `form:"name" json:"name" binding:"omitnil,min=1,max=255"`
	Description *string               `form:"description" json:"description" binding:"omitnil,min=1"`
	Price       *float64              `form:"price" json:"price" binding:"omitnil,gte=0,lte=99999999.99"`
	Stock       *int                  `form:"stock" json:"stock" binding:"omitnil,gte=0,lte=2147483647"`
	ImageURL    *string               `form:"image_url" json:"image" binding:"omitnil,url,max=500"`
	Image       *multipart.FileHeader `form:"image" json:"-" swaggerignore:"true"`
}

// List godoc
// @Summary      List products
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        page  query  int  false  "Page number"
// @Success      200  {object}  listResponse
// @Router       /products [get]
func (h *ProductHandlers) List() gin.HandlerFunc {
	return func(c *gin.Context) {
		products, meta, err := h.Products.List(c.Request.Context(), pageParam(c))
		if err != nil {
			respondError(c, h.Log, err, "")
			return
		}
		c.JSON(http.StatusOK, listResponse{Message: "Products retrieved successfully", Data: products, Meta: meta})
	}
}

// Get godoc
// @Summary      Show a product
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "Product ID"
// @Success      200  {object}  product.Product
// @Failure      404  {object}  map[string]string
// @Router       /products/{id} [get]
func (h *ProductHandlers) Get() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := idParam(c)
		if err != nil {
			respondError(c, h.Log, err, productNotFound)
			return
		}
		p, err := h.Products.Get(c.Request.Context(), id)
		if err != nil {
			respondError(c, h.Log, err, productNotFound)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

// Create godoc
// @Summary      Create a product
// @Tags         products
// @Accept       mpfd,json
// @Produce      json
// @Security     BearerAuth
// @Param        name         formData  string  true   "Name"
// @Param        description  formData  string  true   "Description"
// @Param        price        formData  number  true   "Price"
// @Param        stock        formData  int     true   "Stock"
// @Param        image        formData  file    false  "Image upload"
// @Param        image_url    formData  string  false  "Hosted image URL"
// @Success      201  {object}  product.Product
// @Failure      422  {object}  map[string]any
// @Failure      502  {object}  map[string]string
// @Router       /products [post]
func (h *ProductHandlers) Create() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateProductRequest
		if err := bind(c, &req); err != nil {
			respondError(c, h.Log, err, "")
			return
		}
		v := apperr.NewValidation()
		if req.Image == nil && req.ImageURL == "" {
			v.Add("image", "The image field is required.")
		}
		img, err := optionalImage(v, "image", req.Image, h.MaxImage)
		if err == nil {
			err = v.OrNil()
		}
		if err != nil {
			respondError(c, h.Log, err, "")
			return
		}

		ctx := c.Request.Context()
		p := &product.Product{
			Name:        req.Name,
			Description: req.Description,
			Price:       *req.Price,
			Stock:       *req.Stock,
			Image:       req.ImageURL,
		}
		err = h.Media.Attach(ctx, img, func(url *string) error {
			if url != nil {
				p.Image = *url
			}
			return h.Products.Create(ctx, p)
		})
		if err != nil {
			respondError(c, h.Log, err, "")
			return
		}
		c.JSON(http.StatusCreated, p)
	}
}

// Update godoc
// @Summary      Update a product; absent fields are kept
// @Tags         products
// @Accept       mpfd,json
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "Product ID"
// @Success      200  {object}  product.Product
// @Failure      404  {object}  map[string]string
// @Failure      422  {object}  map[string]any
// @Router       /products/{id} [put]
func (h *ProductHandlers) Update() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := idParam(c)
		if err != nil {
			respondError(c, h.Log, err, productNotFound)
			return
		}
		var req UpdateProductRequest
		if err := bind(c, &req); err != nil {
			respondError(c, h.Log, err, productNotFound)
			return
		}
		ctx := c.Request.Context()
		if _, err := h.Products.Get(ctx, id); err != nil {
			respondError(c, h.Log, err, productNotFound)
			return
		}
		v := apperr.NewValidation()
		img, err := optionalImage(v, "image", req.Image, h.MaxImage)
		if err == nil {
			err = v.OrNil()
		}
		if err != nil {
			respondError(c, h.Log, err, productNotFound)
			return
		}

		ch := product.Changes{
			Name:        req.Name,
			Description: req.Description,
			Price:       req.Price,
			Stock:       req.Stock,
			Image:       req.ImageURL,
		}
		var updated *product.Product
		err = h.Media.Attach(ctx, img, func(url *string) error {
			if url != nil {
				ch.Image = url
			}
			var err error
			updated, err = h.Products.Update(ctx, id, ch)
			return err
		})
		if err != nil {
			respondError(c, h.Log, err, productNotFound)
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}

// Delete godoc
// @Summary      Delete a product and its comments
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "Product ID"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /products/{id} [delete]
func (h *ProductHandlers) Delete() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := idParam(c)
		if err == nil {
			err = h.Products.Delete(c.Request.Context(), id)
		}
		if err != nil {
			respondError(c, h.Log, err, productNotFound)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
	}
}
