package api

import (
	"math"
	"net/http"
	"time"

	"go-shop/internal/comment"
	"go-shop/internal/product"
	"go-shop/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type StatsResponse struct {
	Users             int64   `json:"users"`
	NewUsersLastMonth int64   `json:"new_users_last_month"`
	Products          int64   `json:"products"`
	Comments          int64   `json:"comments"`
	AverageRating     float64 `json:"average_rating"`
}

// StatsHandler godoc
// @Summary      Dashboard counters (admin)
// @Tags         stats
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  StatsResponse
// @Failure      403  {object}  map[string]string
// @Router       /stats [get]
func StatsHandler(users *user.Store, products *product.Store, comments *comment.Store, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var (
			out StatsResponse
			err error
		)
		if out.Users, err = users.Count(ctx); err != nil {
			respondError(c, log, err, "")
			return
		}
		if out.NewUsersLastMonth, err = users.CountSince(ctx, time.Now().AddDate(0, -1, 0)); err != nil {
			respondError(c, log, err, "")
			return
		}
		if out.Products, err = products.Count(ctx); err != nil {
			respondError(c, log, err, "")
			return
		}
		if out.Comments, err = comments.Count(ctx); err != nil {
			respondError(c, log, err, "")
			return
		}
		avg, err := comments.AverageRating(ctx)
		if err != nil {
			respondError(c, log, err, "")
			return
		}
		out.AverageRating = math.Round(avg*100) / 100
		c.JSON(http.StatusOK, out)
	}
}
