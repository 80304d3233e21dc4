package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"skinmuse/internal/models"
	"skinmuse/internal/services"
)

type RatingHandler struct {
	ratings services.RatingService
}

func NewRatingHandler(ratings services.RatingService) *RatingHandler {
	return &RatingHandler{ratings: ratings}
}

// @Summary      Оценка приложения (1..5)
// @Tags         Rating
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      models.RatingRequest  true  "Оценка"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Router       /api/user/rating [post]
func (h *RatingHandler) Save(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var req models.RatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid rating"})
		return
	}
	if err := h.ratings.Rate(c.Request.Context(), userID, req.Rating); err != nil {
		respondError(c, "rating-save", err, "Server error while saving rating", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Rating saved", "rating": req.Rating})
}

// @Summary      Моя оценка
// @Tags         Rating
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Router       /api/user/rating [get]
func (h *RatingHandler) Get(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	rating, err := h.ratings.Get(c.Request.Context(), userID)
	if err != nil {
		respondError(c, "rating-get", err, "Server error while fetching rating", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rating": rating})
}
