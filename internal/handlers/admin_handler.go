package handlers

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"skinmuse/internal/services"
)

type AdminHandler struct {
	admin services.AdminService
}

func NewAdminHandler(admin services.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

// @Summary      Проверка доступа администратора
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /api/admin-only [get]
func (h *AdminHandler) AdminOnly(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Welcome, Admin! You have access."})
}

// @Summary      Журнал действий
// @Description  Новые сверху, с email и ролью пользователя
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query     int  false  "Максимум записей (по умолчанию 500)"
// @Success      200    {object}  map[string]interface{}
// @Failure      403    {object}  map[string]string
// @Failure      500    {object}  map[string]string
// @Router       /api/activity-logs [get]
func (h *AdminHandler) ActivityLogs(c *gin.Context) {
	logs, err := h.admin.ActivityLogs(c.Request.Context(), queryLimit(c))
	if err != nil {
		respondError(c, "activity-logs", err, "Failed to fetch activity logs", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Activity logs fetched successfully",
		"logs":    logs,
	})
}

// @Summary      Журнал действий (PDF)
// @Tags         Admin
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        limit  query     int  false  "Максимум записей (по умолчанию 500)"
// @Success      200    {file}    file
// @Failure      403    {object}  map[string]string
// @Failure      500    {object}  map[string]string
// @Router       /api/activity-logs/report [get]
func (h *AdminHandler) ActivityReport(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.admin.ActivityReport(c.Request.Context(), &buf, queryLimit(c)); err != nil {
		respondError(c, "activity-report", err, "Failed to build activity report", nil)
		return
	}
	filename := "activity_logs_" + time.Now().UTC().Format("20060102_150405") + ".pdf"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

func queryLimit(c *gin.Context) int {
	n, err := strconv.Atoi(c.Query("limit"))
	if err != nil || n <= 0 || n > 5000 {
		return 0
	}
	return n
}
