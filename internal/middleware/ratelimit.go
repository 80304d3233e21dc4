package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"skinmuse/internal/audit"
	"skinmuse/internal/metrics"
	"skinmuse/internal/ratelimit"
)

const loginLimitMessage = "Too many login attempts. Please try again after 15 minutes."

// LoginRateLimit: ключ по IP клиента, проверка до разбора тела.
// Ошибка хранилища лимитов пропускает запрос.
func LoginRateLimit(limiter ratelimit.Limiter, rec audit.Recorder) gin.HandlerFunc {
	if rec == nil {
		rec = audit.Nop{}
	}
	return func(c *gin.Context) {
		ip := c.ClientIP()
		d, err := limiter.Allow(c.Request.Context(), ip)
		if err != nil {
			log.Warn().Err(err).Str("ip", ip).Msg("[ratelimit][login] limiter unavailable, allowing request")
			c.Next()
			return
		}

		c.Header("RateLimit-Limit", strconv.Itoa(d.Limit))
		c.Header("RateLimit-Remaining", strconv.Itoa(d.Remaining))
		if !d.ResetAt.IsZero() {
			c.Header("RateLimit-Reset", strconv.Itoa(ceilSeconds(time.Until(d.ResetAt))))
		}

		if !d.Allowed {
			c.Header("Retry-After", strconv.Itoa(ceilSeconds(d.RetryAfter)))
			metrics.RateLimited(c.FullPath())
			rec.Security(c.Request.Context(), audit.EventRateLimited, "Login rate limit exceeded", map[string]any{"ip": ip})
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"message": loginLimitMessage})
			return
		}
		c.Next()
	}
}

func ceilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Seconds()))
}
