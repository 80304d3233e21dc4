package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"skinmuse/internal/models"
	"skinmuse/internal/services"
)

const avatarField = "pfp"

type UserHandler struct {
	users    services.UserService
	cookies  CookieConfig
	maxBytes int64
}

func NewUserHandler(users services.UserService, cookies CookieConfig, maxUploadBytes int64) *UserHandler {
	return &UserHandler{users: users, cookies: cookies, maxBytes: maxUploadBytes}
}

// @Summary      Смена пароля
// @Description  email в теле должен совпадать с email текущего пользователя
// @Tags         Account
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      models.ChangePasswordRequest  true  "Новый пароль"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/change-password [put]
func (h *UserHandler) ChangePassword(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var req models.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": bindMessage(err)})
		return
	}

	err := h.users.ChangePassword(c.Request.Context(), userID, req.Email, req.NewPassword, req.ConfirmPassword)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			// чужой email или удалённый аккаунт
			c.JSON(http.StatusBadRequest, gin.H{"message": "User not found"})
			return
		}
		respondError(c, "change-password", err, "Internal Server Error During Password Change", map[error]string{
			services.ErrPasswordMismatch: "New passwords don't match",
			services.ErrWeakPassword:     "Weak password",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}

// @Summary      Обновление имени
// @Tags         Account
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      models.UpdateDetailsRequest  true  "Имя"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/update-details [put]
func (h *UserHandler) UpdateDetails(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var req models.UpdateDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": bindMessage(err)})
		return
	}

	user, err := h.users.UpdateName(c.Request.Context(), userID, req.Name)
	if err != nil {
		respondError(c, "update-details", err, "Internal Server Error During User Name Update", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User name updated successfully", "user": user})
}

// @Summary      Загрузка аватара
// @Description  multipart/form-data, поле pfp; jpeg/png/gif/webp
// @Tags         Account
// @Accept       mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        pfp  formData  file  true  "Изображение"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/update-profile-image [put]
func (h *UserHandler) UpdateProfileImage(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	// запас на multipart-заголовки
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+64<<10)

	fh, err := c.FormFile(avatarField)
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "File too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"message": "No file uploaded"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		respondError(c, "update-profile-image", err, "Failed to upload image", nil)
		return
	}
	defer f.Close()

	user, err := h.users.UpdateAvatar(c.Request.Context(), userID, f, fh.Size)
	if err != nil {
		respondError(c, "update-profile-image", err, "Failed to upload image", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profile image updated successfully", "user": user})
}

// @Summary      Удаление своего аккаунта
// @Tags         Account
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/delete-user [delete]
func (h *UserHandler) DeleteUser(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	if err := h.users.Delete(c.Request.Context(), userID); err != nil {
		respondError(c, "delete-user", err, "Internal Server Error During User Deletion", nil)
		return
	}
	clearAuthCookies(c, h.cookies)
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}
