package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"skinmuse/internal/audit"
	"skinmuse/internal/middleware"
	"skinmuse/internal/services"
	"skinmuse/internal/utils"
)

const (
	accessCookie  = "accessToken"
	refreshCookie = "refreshToken"
)

type CookieConfig struct {
	MaxAge time.Duration
	Secure bool
}

const passwordTooLong = "Password must not exceed 72 bytes"

// RegisterValidators регистрирует правила safestring и bcryptlen для binding-тегов.
// max в validator считает руны, bcryptlen ограничивает байты.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected validator engine")
	}
	if err := v.RegisterValidation("safestring", func(fl validator.FieldLevel) bool {
		return utils.IsSafeString(fl.Field().String())
	}); err != nil {
		return err
	}
	return v.RegisterValidation("bcryptlen", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= services.MaxPasswordBytes
	})
}

func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(middleware.UserIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok && id != uuid.Nil
}

// mustUserID: для маршрутов за AuthMiddleware; без id отвечает 401.
func mustUserID(c *gin.Context) (uuid.UUID, bool) {
	id, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
	}
	return id, ok
}

func pathUUID(c *gin.Context, name, notFoundMsg string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		// несуществующий и некорректный id неразличимы
		c.JSON(http.StatusNotFound, gin.H{"message": notFoundMsg})
		return uuid.Nil, false
	}
	return id, true
}

func setAuthCookies(c *gin.Context, cfg CookieConfig, access, refresh string) {
	maxAge := int(cfg.MaxAge / time.Second)
	c.SetSameSite(http.SameSiteLaxMode)
	if refresh != "" {
		c.SetCookie(refreshCookie, refresh, maxAge, "/", "", cfg.Secure, true)
	}
	c.SetCookie(accessCookie, access, maxAge, "/", "", cfg.Secure, true)
}

func clearAuthCookies(c *gin.Context, cfg CookieConfig) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(refreshCookie, "", -1, "/", "", cfg.Secure, true)
	c.SetCookie(accessCookie, "", -1, "/", "", cfg.Secure, true)
}

// bindMessage: ответ на ошибку ShouldBindJSON.
func bindMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		switch fe.Tag() {
		case "required", "min":
			return "All fields are required"
		case "email":
			return "Invalid email"
		case "bcryptlen":
			return passwordTooLong
		case "hexadecimal":
			return "Invalid or expired token"
		case "safestring":
			return "Invalid characters in " + fe.Field()
		default:
			return "Invalid " + fe.Field()
		}
	}
	return "Invalid request body"
}

var errorStatus = map[error]struct {
	status int
	msg    string
}{
	services.ErrMissingFields:      {http.StatusBadRequest, "All fields are required"},
	services.ErrPasswordMismatch:   {http.StatusBadRequest, "Passwords don't match"},
	services.ErrWeakPassword:       {http.StatusBadRequest, "Password must be at least 8 characters, include uppercase, lowercase and number"},
	services.ErrPasswordTooLong:    {http.StatusBadRequest, passwordTooLong},
	services.ErrNameRequired:       {http.StatusBadRequest, "Name is required"},
	services.ErrInvalidRating:      {http.StatusBadRequest, "Invalid rating"},
	services.ErrAlreadySaved:       {http.StatusBadRequest, "Post already saved"},
	services.ErrEmptyContent:       {http.StatusBadRequest, "Content is required"},
	services.ErrUnsupportedUpload:  {http.StatusBadRequest, "Only jpeg, png, gif and webp images are allowed"},
	services.ErrUploadTooLarge:     {http.StatusBadRequest, "File too large"},
	services.ErrEmailTaken:         {http.StatusBadRequest, "Email is Taken"},
	services.ErrInvalidCredentials: {http.StatusBadRequest, "Invalid credentials"},
	services.ErrCaptchaRequired:    {http.StatusBadRequest, "Captcha is required"},
	services.ErrCaptchaFailed:      {http.StatusBadRequest, "Captcha validation failed"},
	services.ErrNoActiveChallenge:  {http.StatusBadRequest, "OTP verification failed"},
	services.ErrOTPExpired:         {http.StatusBadRequest, "OTP expired"},
	services.ErrInvalidOTP:         {http.StatusBadRequest, "Invalid OTP"},
	services.ErrInvalidResetToken:  {http.StatusBadRequest, "Invalid or expired token"},
	services.ErrTokenExpired:       {http.StatusUnauthorized, "Unauthorized: Token expired. Please log in again."},
	services.ErrTokenInvalid:       {http.StatusUnauthorized, "Unauthorized: Invalid token"},
	services.ErrSessionInvalidated: {http.StatusUnauthorized, "Unauthorized: Session expired. Please log in again."},
	services.ErrUserNotFound:       {http.StatusNotFound, "User not found"},
	services.ErrPostNotFound:       {http.StatusNotFound, "Post not found"},
	services.ErrCommentNotFound:    {http.StatusNotFound, "Comment not found"},
}

// respondError отвечает по таблице ошибок сервисов. overrides меняют текст для
// конкретного маршрута; неизвестные ошибки: 500 с serverMsg, причина в лог.
func respondError(c *gin.Context, op string, err error, serverMsg string, overrides map[error]string) {
	for target, m := range errorStatus {
		if errors.Is(err, target) {
			msg := m.msg
			if o, ok := overrides[target]; ok {
				msg = o
			}
			c.JSON(m.status, gin.H{"message": msg})
			return
		}
	}
	log.Error().Err(err).Str("op", op).Str("request_id", audit.RequestID(c.Request.Context())).Msg("request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"message": serverMsg})
}
