package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"skinmuse/internal/models"
	"skinmuse/internal/services"
)

type PasswordHandler struct {
	resets services.PasswordResetService
}

func NewPasswordHandler(resets services.PasswordResetService) *PasswordHandler {
	return &PasswordHandler{resets: resets}
}

// @Summary      Запрос на сброс пароля
// @Description  Отправляет ссылку со случайным токеном на email (действует 30 минут)
// @Tags         Password
// @Accept       json
// @Produce      json
// @Param        body  body      models.RequestPasswordResetRequest  true  "Email"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/request-password-reset [post]
func (h *PasswordHandler) RequestPasswordReset(c *gin.Context) {
	var req models.RequestPasswordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": bindMessage(err)})
		return
	}
	if err := h.resets.RequestReset(c.Request.Context(), req.Email); err != nil {
		respondError(c, "request-password-reset", err, "Internal Server Error During Password Reset Request", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password reset link sent to email"})
}

// @Summary      Сброс пароля по токену
// @Tags         Password
// @Accept       json
// @Produce      json
// @Param        body  body      models.ResetPasswordRequest  true  "Email, токен и новый пароль"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/reset-password [post]
func (h *PasswordHandler) ResetPassword(c *gin.Context) {
	var req models.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": bindMessage(err)})
		return
	}
	err := h.resets.ResetPassword(c.Request.Context(), req.Email, req.Token, req.NewPassword, req.ConfirmPassword)
	if err != nil {
		respondError(c, "reset-password", err, "Internal Server Error During Password Reset", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password has been reset successfully"})
}
