package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"skinmuse/internal/audit"
	"skinmuse/internal/logger"
	"skinmuse/internal/models"
	"skinmuse/internal/services"
)

type AuthHandler struct {
	sessions services.SessionService
	audit    audit.Recorder
	cookies  CookieConfig
}

func NewAuthHandler(sessions services.SessionService, rec audit.Recorder, cookies CookieConfig) *AuthHandler {
	if rec == nil {
		rec = audit.Nop{}
	}
	return &AuthHandler{sessions: sessions, audit: rec, cookies: cookies}
}

// @Summary      Регистрация
// @Description  Создаёт пользователя и сразу выдаёт access/refresh токены (cookies + accessToken в теле)
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body      models.SignupRequest  true  "Данные регистрации"
// @Success      201   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": bindMessage(err)})
		return
	}

	res, err := h.sessions.Signup(c.Request.Context(), req.Email, req.Password, req.ConfirmPassword)
	if err != nil {
		respondError(c, "signup", err, "Internal Server Error During Signup", nil)
		return
	}
	log.Info().Str("user_id", res.User.ID.String()).Str("email", logger.MaskEmail(res.User.Email)).Msg("[auth][signup] user created")

	setAuthCookies(c, h.cookies, res.Tokens.AccessToken, res.Tokens.RefreshToken)
	c.JSON(http.StatusCreated, gin.H{
		"message":     "User Created Successfully",
		"accessToken": res.Tokens.AccessToken,
	})
}

// @Summary      Вход (шаг 1)
// @Description  Проверяет пароль и CAPTCHA, отправляет OTP на email. Повторный вызов при живом OTP: переотправка без CAPTCHA.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body      models.LoginRequest  true  "Данные для входа"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      429   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.audit.Security(c.Request.Context(), audit.EventLoginFailed, "Invalid login payload", nil)
		c.JSON(http.StatusBadRequest, gin.H{"message": bindMessage(err)})
		return
	}

	if _, err := h.sessions.Login(c.Request.Context(), req.Email, req.Password, req.CaptchaValue); err != nil {
		respondError(c, "login", err, "Internal Server Error During Login", nil)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "OTP sent to registered email. Verify to continue.",
		"mfaRequired": true,
	})
}

// @Summary      Вход (шаг 2): проверка OTP
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body      models.VerifyOTPRequest  true  "Email и 6-значный код"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/verify-otp [post]
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req models.VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		msg := bindMessage(err)
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && verrs[0].Tag() == "required" {
			msg = "Email and OTP are required"
		}
		c.JSON(http.StatusBadRequest, gin.H{"message": msg})
		return
	}

	res, err := h.sessions.VerifyOTP(c.Request.Context(), req.Email, req.OTP)
	if err != nil {
		respondError(c, "verify-otp", err, "Internal Server Error During OTP Verification", nil)
		return
	}

	setAuthCookies(c, h.cookies, res.Tokens.AccessToken, res.Tokens.RefreshToken)
	c.JSON(http.StatusOK, gin.H{
		"message":     "Login successful",
		"accessToken": res.Tokens.AccessToken,
		"userRole":    res.User.Role,
		"avatar":      res.User.Avatar,
		"name":        res.User.Name,
		"email":       res.User.Email,
	})
}

// @Summary      Выход
// @Tags         Auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /api/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	h.sessions.Logout(c.Request.Context(), userID)
	clearAuthCookies(c, h.cookies)
	c.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
}

// @Summary      Новый access-токен по refresh-токену
// @Description  Refresh берётся из cookie refreshToken или из тела {"refreshToken": "..."}
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body      models.RefreshTokenRequest  false  "Refresh-токен"
// @Success      200   {object}  map[string]interface{}
// @Failure      401   {object}  map[string]string
// @Router       /api/refresh-token [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	token, _ := c.Cookie(refreshCookie)
	if token == "" {
		var req models.RefreshTokenRequest
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, gin.H{"message": bindMessage(err)})
			return
		}
		token = strings.TrimSpace(req.RefreshToken)
	}
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	access, _, err := h.sessions.Refresh(c.Request.Context(), token)
	if err != nil {
		respondError(c, "refresh-token", err, "Internal Server Error During Token Refresh", nil)
		return
	}

	setAuthCookies(c, h.cookies, access, "")
	c.JSON(http.StatusOK, gin.H{
		"message":     "Token refreshed",
		"accessToken": access,
	})
}
