package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"skinmuse/internal/audit"
	"skinmuse/internal/authz"
	"skinmuse/internal/models"
	"skinmuse/internal/services"
)

type UserLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// RequireAdmin ставится после AuthMiddleware. Роль берётся из БД, не из токена.
func RequireAdmin(users UserLookup, rec audit.Recorder) gin.HandlerFunc {
	if rec == nil {
		rec = audit.Nop{}
	}
	return func(c *gin.Context) {
		id, ok := c.Get(UserIDKey)
		userID, _ := id.(uuid.UUID)
		if !ok || userID == uuid.Nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}

		user, err := users.GetByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, services.ErrUserNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
				return
			}
			log.Error().Err(err).Msg("[authz][admin] user lookup failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error"})
			return
		}
		if !authz.IsAdmin(user.Role) {
			rec.Security(c.Request.Context(), audit.EventAccessDenied, "Admin route denied",
				map[string]any{"user_id": userID.String(), "path": c.FullPath()})
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Forbidden: Admins only"})
			return
		}
		c.Next()
	}
}
