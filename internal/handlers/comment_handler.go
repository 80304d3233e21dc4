package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"skinmuse/internal/models"
	"skinmuse/internal/services"
)

const commentNotOwned = "Comment not found or not owned by user"

type CommentHandler struct {
	comments services.CommentService
}

func NewCommentHandler(comments services.CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

// @Summary      Комментарий к посту
// @Tags         Comments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        postId  path      string                 true  "ID поста"
// @Param        body    body      models.CommentRequest  true  "Текст"
// @Success      201     {object}  models.Comment
// @Failure      400     {object}  map[string]string
// @Failure      404     {object}  map[string]string
// @Router       /api/comments/{postId} [post]
func (h *CommentHandler) Create(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	postID, ok := pathUUID(c, "postId", "Post not found")
	if !ok {
		return
	}
	var req models.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": bindMessage(err)})
		return
	}
	comment, err := h.comments.Create(c.Request.Context(), userID, postID, req.Comment)
	if err != nil {
		respondError(c, "comment-create", err, "Server error while creating comment", map[error]string{
			services.ErrEmptyContent: "Comment is required",
		})
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// @Summary      Мои комментарии
// @Tags         Comments
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  models.Comment
// @Router       /api/comments [get]
func (h *CommentHandler) ListMine(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	comments, err := h.comments.ListMine(c.Request.Context(), userID)
	if err != nil {
		respondError(c, "comment-list", err, "Server error while fetching comments", nil)
		return
	}
	c.JSON(http.StatusOK, comments)
}

// @Summary      Мой комментарий по id
// @Tags         Comments
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "ID комментария"
// @Success      200  {object}  models.Comment
// @Failure      404  {object}  map[string]string
// @Router       /api/comments/{id} [get]
func (h *CommentHandler) Get(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id", "Comment not found")
	if !ok {
		return
	}
	comment, err := h.comments.GetMine(c.Request.Context(), id, userID)
	if err != nil {
		respondError(c, "comment-get", err, "Server error while fetching comment", nil)
		return
	}
	c.JSON(http.StatusOK, comment)
}

// @Summary      Изменить свой комментарий
// @Tags         Comments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                 true  "ID комментария"
// @Param        body  body      models.CommentRequest  true  "Текст"
// @Success      200   {object}  models.Comment
// @Failure      404   {object}  map[string]string
// @Router       /api/comments/{id} [put]
func (h *CommentHandler) Update(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id", commentNotOwned)
	if !ok {
		return
	}
	var req models.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": bindMessage(err)})
		return
	}
	comment, err := h.comments.Update(c.Request.Context(), id, userID, req.Comment)
	if err != nil {
		respondError(c, "comment-update", err, "Server error while updating comment", map[error]string{
			services.ErrCommentNotFound: commentNotOwned,
			services.ErrEmptyContent:    "Comment is required",
		})
		return
	}
	c.JSON(http.StatusOK, comment)
}

// @Summary      Удалить свой комментарий
// @Tags         Comments
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "ID комментария"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/comments/{id} [delete]
func (h *CommentHandler) Delete(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id", commentNotOwned)
	if !ok {
		return
	}
	if err := h.comments.Delete(c.Request.Context(), id, userID); err != nil {
		respondError(c, "comment-delete", err, "Server error while deleting comment", map[error]string{
			services.ErrCommentNotFound: commentNotOwned,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted successfully"})
}

// @Summary      Комментарии к посту
// @Tags         Comments
// @Produce      json
// @Security     BearerAuth
// @Param        postId  path     string  true  "ID поста"
// @Success      200     {array}  models.Comment
// @Router       /api/comments/post/{postId} [get]
func (h *CommentHandler) ListForPost(c *gin.Context) {
	postID, ok := pathUUID(c, "postId", "Post not found")
	if !ok {
		return
	}
	comments, err := h.comments.ListForPost(c.Request.Context(), postID)
	if err != nil {
		respondError(c, "comment-list-post", err, "Server error while fetching comments", nil)
		return
	}
	c.JSON(http.StatusOK, comments)
}
