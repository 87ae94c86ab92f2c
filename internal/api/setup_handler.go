package api

import (
	"net/http"

	"go-shop/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type SetupRequest struct {
	Name     string `json:"name" binding:"required,max=255"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6"`
}

// SetupHandler godoc
// @Summary      Create the first administrator
// @Description  Only allowed while the users table is empty.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body  SetupRequest  true  "Administrator account"
// @Success      201  {object}  map[string]any
// @Failure      403  {object}  map[string]string
// @Failure      422  {object}  map[string]any
// @Router       /setup [post]
func SetupHandler(users *user.Store, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		count, err := users.Count(ctx)
		if err != nil {
			respondError(c, log, err, "")
			return
		}
		if count != 0 {
			c.JSON(http.StatusForbidden, gin.H{"error": "Setup not allowed; users already exist"})
			return
		}
		var req SetupRequest
		if err := bind(c, &req); err != nil {
			respondError(c, log, err, "")
			return
		}
		hash, err := user.HashPassword(req.Password)
		if err != nil {
			respondError(c, log, err, "")
			return
		}
		u := &user.User{Name: req.Name, Email: req.Email, PasswordHash: hash, Role: user.RoleAdmin}
		if err := users.Create(ctx, u); err != nil {
			respondError(c, log, err, "")
			return
		}
		log.WithField("user_id", u.ID).Info("[Setup] first administrator created")
		c.JSON(http.StatusCreated, gin.H{"user": u, "setup_complete": true})
	}
}
