package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"skinmuse/internal/audit"
	"skinmuse/internal/handlers"
	"skinmuse/internal/metrics"
	"skinmuse/internal/middleware"
	"skinmuse/internal/ratelimit"
)

type Handlers struct {
	Auth     *handlers.AuthHandler
	Password *handlers.PasswordHandler
	User     *handlers.UserHandler
	Admin    *handlers.AdminHandler
	Post     *handlers.PostHandler
	Comment  *handlers.CommentHandler
	Rating   *handlers.RatingHandler
}

type Guards struct {
	Tokens  middleware.AccessTokenParser
	Users   middleware.UserLookup
	Limiter ratelimit.Limiter
	Audit   audit.Recorder
	// Health проверяет зависимости для /healthz; nil: всегда ok.
	Health func(ctx context.Context) error
}

func SetupRoutes(r *gin.Engine, h Handlers, g Guards) *gin.Engine {
	r.GET("/healthz", healthz(g.Health))
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api")

	// ---- public
	api.POST("/signup", h.Auth.Signup)
	api.POST("/login", middleware.LoginRateLimit(g.Limiter, g.Audit), h.Auth.Login)
	api.POST("/verify-otp", h.Auth.VerifyOTP)
	api.POST("/refresh-token", h.Auth.RefreshToken)
	api.POST("/request-password-reset", h.Password.RequestPasswordReset)
	api.POST("/reset-password", h.Password.ResetPassword)

	// ---- protected
	protected := api.Group("", middleware.AuthMiddleware(g.Tokens))
	{
		protected.POST("/logout", h.Auth.Logout)
		protected.PUT("/change-password", h.User.ChangePassword)
		protected.PUT("/update-details", h.User.UpdateDetails)
		protected.PUT("/update-profile-image", h.User.UpdateProfileImage)
		protected.DELETE("/delete-user", h.User.DeleteUser)
	}

	// ADMIN (роль читается из БД)
	admin := protected.Group("", middleware.RequireAdmin(g.Users, g.Audit))
	{
		admin.GET("/admin-only", h.Admin.AdminOnly)
		admin.GET("/activity-logs", h.Admin.ActivityLogs)
		admin.GET("/activity-logs/report", h.Admin.ActivityReport)
	}

	// POSTS
	posts := protected.Group("/post")
	{
		posts.POST("", h.Post.Create)
		posts.GET("", h.Post.List)
		posts.POST("/saved", h.Post.Saved)
		posts.POST("/save/:postId", h.Post.Save)
		posts.DELETE("/unsave/:postId", h.Post.Unsave)
		posts.GET("/:id", h.Post.Get)
		posts.PUT("/:id", h.Post.Update)
		posts.DELETE("/:id", h.Post.Delete)
	}

	// COMMENTS
	comments := protected.Group("/comments")
	{
		comments.GET("", h.Comment.ListMine)
		comments.GET("/post/:postId", h.Comment.ListForPost)
		comments.POST("/:postId", h.Comment.Create)
		comments.GET("/:id", h.Comment.Get)
		comments.PUT("/:id", h.Comment.Update)
		comments.DELETE("/:id", h.Comment.Delete)
	}

	// RATING
	protected.POST("/user/rating", h.Rating.Save)
	protected.GET("/user/rating", h.Rating.Get)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Route not found"})
	})

	return r
}

func healthz(check func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if check != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				log.Warn().Err(err).Msg("[healthz] dependency check failed")
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
