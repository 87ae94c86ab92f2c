package api

import (
	"mime/multipart"
	"net/http"
	"time"

	"go-shop/internal/auth"
	"go-shop/internal/config"
	"go-shop/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type RegisterRequest struct {
	Name           string                `form:"name" json:"name" binding:"required,max=255"`
	Email          string                `form:"email" json:"email" binding:"required,email,max=255"`
	Password       string                `form:"password" json:"password" binding:"required,min=6"`
	ProfilePicture *multipart.FileHeader `form:"profile_picture" json:"-" swaggerignore:"true"`
}

type LoginRequest struct {
	Email    string `form:"email" json:"email" binding:"required,email"`
	Password string `form:"password" json:"password" binding:"required"`
}

type AuthResponse struct {
	Token string     `json:"token"`
	User  *user.User `json:"user"`
}

func setTokenCookie(c *gin.Context, cfg *config.Config, token string, ttl time.Duration) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.CookieName, token, int(ttl.Seconds()), "/", "", cfg.Server.SecureCookie, true)
}

func clearTokenCookie(c *gin.Context, cfg *config.Config) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.CookieName, "", -1, "/", "", cfg.Server.SecureCookie, true)
}

// RegisterHandler godoc
// @Summary      Register a new user
// @Tags         auth
// @Accept       mpfd,json
// @Produce      json
// @Param        name             formData  string  true   "Name"
// @Param        email            formData  string  true   "Email"
// @Param        password         formData  string  true   "Password (min 6)"
// @Param        profile_picture  formData  file    false  "jpg/png, max 2048 KB"
// @Success      201  {object}  AuthResponse
// @Failure      422  {object}  map[string]any
// @Failure      502  {object}  map[string]string
// @Router       /register [post]
func RegisterHandler(cfg *config.Config, svc *auth.Service, tokens *auth.TokenService, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := bind(c, &req); err != nil {
			respondError(c, log, err, "")
			return
		}
		token, u, err := svc.Register(c.Request.Context(), auth.RegisterCommand{
			Name:           req.Name,
			Email:          req.Email,
			Password:       req.Password,
			ProfilePicture: req.ProfilePicture,
		})
		if err != nil {
			respondError(c, log, err, "")
			return
		}
		setTokenCookie(c, cfg, token, tokens.TTL())
		c.JSON(http.StatusCreated, AuthResponse{Token: token, User: u})
	}
}

// LoginHandler godoc
// @Summary      Log in with email and password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body  LoginRequest  true  "Credentials"
// @Success      200  {object}  AuthResponse
// @Failure      401  {object}  map[string]string
// @Failure      429  {object}  map[string]string
// @Router       /login [post]
func LoginHandler(cfg *config.Config, svc *auth.Service, tokens *auth.TokenService, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := bind(c, &req); err != nil {
			respondError(c, log, err, "")
			return
		}
		token, u, err := svc.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			respondError(c, log, err, "")
			return
		}
		setTokenCookie(c, cfg, token, tokens.TTL())
		c.JSON(http.StatusOK, AuthResponse{Token: token, User: u})
	}
}

// MeHandler godoc
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  user.User
// @Failure      401  {object}  map[string]string
// @Router       /me [get]
func MeHandler(svc *auth.Service, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := svc.Me(c.Request.Context())
		if err != nil {
			respondError(c, log, err, "")
			return
		}
		c.JSON(http.StatusOK, u)
	}
}

// LogoutHandler godoc
// @Summary      Revoke the current token
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /logout [post]
func LogoutHandler(cfg *config.Config, svc *auth.Service, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := auth.TokenFromContext(c.Request.Context())
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}
		if err := svc.Logout(c.Request.Context(), token); err != nil {
			respondError(c, log, err, "")
			return
		}
		clearTokenCookie(c, cfg)
		c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
	}
}
