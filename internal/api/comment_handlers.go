package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"go-shop/internal/apperr"
	"go-shop/internal/auth"
	"go-shop/internal/comment"
	"go-shop/internal/product"
	"go-shop/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const commentNotFound = "Comment not found"

var dateLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"}

type CommentHandlers struct {
	Comments *comment.Store
	Users    *user.Store
	Products *product.Store
	Log      logrus.FieldLogger
}

type CreateCommentRequest struct {
	Content   string  `json:"contenido" form:"contenido" binding:"required,max=255"`
	Rating    *int    `json:"calificacion" form:"calificacion" binding:"required,min=1,max=5"`
	Date      *string `json:"fecha" form:"fecha"`
	UserID    *uint   `json:"usuario_id" form:"usuario_id" binding:"omitnil,min=1"`
	ProductID *uint   `json:"producto_id" form:"producto_id" binding:"required,min=1"`
}

type UpdateCommentRequest struct {
	Content   *string `json:"contenido" form:"contenido" binding:"omitnil,min=1,max=255"`
	Rating    *int    `json:"calificacion" form:"calificacion" binding:"omitnil,min=1,max=5"`
	Date      *string `json:"fecha" form:"fecha"`
	UserID    *uint   `json:"usuario_id" form:"usuario_id" binding:"omitnil,min=1"`
	ProductID *uint   `json:"producto_id" form:"producto_id" binding:"omitnil,min=1"`
}

func parseDate(v *apperr.ValidationError, raw *string) *time.Time {
	if raw == nil {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, *raw); err == nil {
			t = t.UTC()
			return &t
		}
	}
	v.Add("fecha", "The fecha is not a valid date.")
	return nil
}

// listFilter reads the optional producto_id / usuario_id query filters.
// Each must name an existing row.
func (h *CommentHandlers) listFilter(ctx context.Context, c *gin.Context) (comment.Filter, error) {
	var f comment.Filter
	v := apperr.NewValidation()
	parse := func(name string) *uint {
		raw, ok := c.GetQuery(name)
		if !ok {
			return nil
		}
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			v.Add(name, "The "+name+" must be an integer.")
			return nil
		}
		u := uint(id)
		return &u
	}
	f.ProductID = parse("producto_id")
	f.UserID = parse("usuario_id")

	if f.ProductID != nil {
		ok, err := h.Products.Exists(ctx, *f.ProductID)
		if err != nil {
			return f, err
		}
		if !ok {
			v.Add("producto_id", "The selected producto_id is invalid.")
		}
	}
	if f.UserID != nil {
		ok, err := h.Users.Exists(ctx, *f.UserID)
		if err != nil {
			return f, err
		}
		if !ok {
			v.Add("usuario_id", "The selected usuario_id is invalid.")
		}
	}
	return f, v.OrNil()
}

// List godoc
// @Summary      List comments, newest first
// @Tags         comments
// @Produce      json
// @Security     BearerAuth
// @Param        producto_id  query  int  false  "Only comments on this product"
// @Param        usuario_id   query  int  false  "Only comments by this user"
// @Param        page         query  int  false  "Page number"
// @Success      200  {object}  listResponse
// @Failure      422  {object}  map[string]any
// @Router       /comentario [get]
func (h *CommentHandlers) List() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		f, err := h.listFilter(ctx, c)
		if err != nil {
			respondError(c, h.Log, err, "")
			return
		}
		comments, meta, err := h.Comments.List(ctx, f, pageParam(c))
		if err != nil {
			respondError(c, h.Log, err, "")
			return
		}
		c.JSON(http.StatusOK, listResponse{Message: "Comments retrieved successfully", Data: comments, Meta: meta})
	}
}

// Get godoc
// @Summary      Show a comment
// @Tags         comments
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "Comment ID"
// @Success      200  {object}  map[string]any
// @Failure      404  {object}  map[string]string
// @Router       /comentario/{id} [get]
func (h *CommentHandlers) Get() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := idParam(c)
		if err != nil {
			respondError(c, h.Log, err, commentNotFound)
			return
		}
		cm, err := h.Comments.Get(c.Request.Context(), id)
		if err != nil {
			respondError(c, h.Log, err, commentNotFound)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Comment retrieved successfully", "data": cm})
	}
}

// Create godoc
// @Summary      Post a comment; usuario_id defaults to the caller
// @Tags         comments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body  CreateCommentRequest  true  "Comment"
// @Success      201  {object}  map[string]any
// @Failure      422  {object}  map[string]any
// @Router       /comentario [post]
func (h *CommentHandlers) Create() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateCommentRequest
		if err := bind(c, &req); err != nil {
			respondError(c, h.Log, err, "")
			return
		}
		ctx := c.Request.Context()
		v := apperr.NewValidation()
		date := parseDate(v, req.Date)
		if err := v.OrNil(); err != nil {
			respondError(c, h.Log, err, "")
			return
		}

		cm := &comment.Comment{Content: req.Content, Rating: *req.Rating, ProductID: *req.ProductID}
		if date != nil {
			cm.PostedAt = *date
		}
		if req.UserID != nil {
			cm.UserID = *req.UserID
		} else if me, ok := auth.UserFromContext(ctx); ok {
			cm.UserID = me.ID
		}
		if err := h.Comments.Create(ctx, cm); err != nil {
			respondError(c, h.Log, err, "")
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "Comment created successfully", "data": cm})
	}
}

// Update godoc
// @Summary      Edit a comment; absent fields are kept
// @Tags         comments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path  int                   true  "Comment ID"
// @Param        request  body  UpdateCommentRequest  true  "Changes"
// @Success      200  {object}  map[string]any
// @Failure      404  {object}  map[string]string
// @Failure      422  {object}  map[string]any
// @Router       /comentario/{id} [patch]
func (h *CommentHandlers) Update() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := idParam(c)
		if err != nil {
			respondError(c, h.Log, err, commentNotFound)
			return
		}
		var req UpdateCommentRequest
		if err := bind(c, &req); err != nil {
			respondError(c, h.Log, err, commentNotFound)
			return
		}
		v := apperr.NewValidation()
		date := parseDate(v, req.Date)
		if err := v.OrNil(); err != nil {
			respondError(c, h.Log, err, commentNotFound)
			return
		}
		cm, err := h.Comments.Update(c.Request.Context(), id, comment.Changes{
			Content:   req.Content,
			Rating:    req.Rating,
			PostedAt:  date,
			UserID:    req.UserID,
			ProductID: req.ProductID,
		})
		if err != nil {
			respondError(c, h.Log, err, commentNotFound)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Comment updated successfully", "data": cm})
	}
}

// Delete godoc
// @Summary      Delete a comment
// @Tags         comments
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "Comment ID"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /comentario/{id} [delete]
func (h *CommentHandlers) Delete() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := idParam(c)
		if err == nil {
			err = h.Comments.Delete(c.Request.Context(), id)
		}
		if err != nil {
			respondError(c, h.Log, err, commentNotFound)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Comment deleted successfully"})
	}
}
