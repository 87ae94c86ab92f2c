package api

import (
	"path"
	"time"

	"go-shop/docs"
	"go-shop/internal/auth"
	"go-shop/internal/comment"
	"go-shop/internal/config"
	"go-shop/internal/logging"
	"go-shop/internal/media"
	"go-shop/internal/product"
	"go-shop/internal/user"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// Deps is everything the HTTP layer needs from main.
type Deps struct {
	Config   *config.Config
	DB       *gorm.DB
	Redis    *redis.Client
	Uploader media.Uploader
	Log      logrus.FieldLogger
}

func corsConfig(cfg *config.Config) cors.Config {
	cc := cors.DefaultConfig()
	cc.AllowCredentials = true
	cc.AddAllowHeaders("Authorization")
	cc.MaxAge = 12 * time.Hour
	if len(cfg.CORS.AllowOrigins) > 0 {
		cc.AllowOrigins = cfg.CORS.AllowOrigins
	} else {
		cc.AllowOriginFunc = func(string) bool { return true }
	}
	return cc
}

func SetupRouter(d Deps) *gin.Engine {
	useWireNames()
	cfg := d.Config
	log := d.Log

	users := user.NewStore(d.DB)
	products := product.NewStore(d.DB)
	comments := comment.NewStore(d.DB)
	host := media.NewHost(d.Uploader, cfg.Media.Timeout(), log)
	maxImage := cfg.Media.MaxUploadBytes()
	tokens := auth.NewTokenService(cfg.Server.JWTSecret, cfg.TokenTTL(), d.Redis, users)
	authSvc := auth.NewService(users, tokens, host, maxImage, log)

	userH := &UserHandlers{Users: users, Media: host, MaxImage: maxImage, Log: log}
	productH := &ProductHandlers{Products: products, Media: host, MaxImage: maxImage, Log: log}
	commentH := &CommentHandlers{Comments: comments, Users: users, Products: products, Log: log}

	r := gin.New()
	r.Use(logging.GinLogger(log), gin.Recovery(), cors.New(corsConfig(cfg)))
	r.MaxMultipartMemory = maxImage + (1 << 20)

	subpath := cfg.Server.Subpath
	docs.SwaggerInfo.BasePath = path.Join("/", subpath, "api")
	r.GET(path.Join("/", subpath, "health"), healthHandler)
	r.GET(path.Join("/", subpath, "swagger/*any"), ginSwagger.WrapHandler(swaggerFiles.Handler))

	loginLimit := auth.RateLimitMiddleware(d.Redis, cfg.RateLimit.LoginAttempts,
		time.Duration(cfg.RateLimit.WindowSecs)*time.Second, log)
	requireAuth := auth.AuthMiddleware(tokens, log)

	group := r.Group(path.Join("/", subpath, "api"))
	{
		// Auth
		group.POST("/setup", SetupHandler(users, log))
		group.POST("/register", RegisterHandler(cfg, authSvc, tokens, log))
		group.POST("/login", loginLimit, LoginHandler(cfg, authSvc, tokens, log))

		protected := group.Group("", requireAuth)
		protected.GET("/me", MeHandler(authSvc, log))
		protected.POST("/logout", LogoutHandler(cfg, authSvc, log))

		// Users
		protected.GET("/users", userH.List())
		protected.POST("/users", auth.RequirePermission(auth.OpCreateUser), userH.Create())
		protected.GET("/users/:id", userH.Get())
		protected.PUT("/users/:id", auth.RequirePermission(auth.OpUpdateUser), userH.Update())
		protected.DELETE("/users/:id", auth.RequirePermission(auth.OpDeleteUser), userH.Delete())
		protected.PATCH("/users/:id/role", auth.RequirePermission(auth.OpUpdateRole), userH.UpdateRole())
		protected.PATCH("/users/:id/info", auth.RequirePermission(auth.OpUpdateInfo), userH.UpdateInfo())
		protected.PATCH("/users/:id/password", auth.RequirePermission(auth.OpUpdatePassword), userH.UpdatePassword())

		// Products
		protected.GET("/products", productH.List())
		protected.GET("/products/:id", productH.Get())
		protected.POST("/products", auth.RequirePermission(auth.OpCreateProduct), productH.Create())
		protected.PUT("/products/:id", auth.RequirePermission(auth.OpUpdateProduct), productH.Update())
		protected.DELETE("/products/:id", auth.RequirePermission(auth.OpDeleteProduct), productH.Delete())

		// Comments
		protected.GET("/comentario", commentH.List())
		protected.GET("/comentario/:id", commentH.Get())
		protected.POST("/comentario", auth.RequirePermission(auth.OpCreateComment), commentH.Create())
		protected.PATCH("/comentario/:id", auth.RequirePermission(auth.OpUpdateComment), commentH.Update())
		protected.DELETE("/comentario/:id", auth.RequirePermission(auth.OpDeleteComment), commentH.Delete())

		// Stats
		protected.GET("/stats", auth.RequirePermission(auth.OpViewStats), StatsHandler(users, products, comments, log))
	}
	return r
}
