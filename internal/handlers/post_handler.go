package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"skinmuse/internal/models"
	"skinmuse/internal/services"
)

const postNotOwned = "Post not found or not owned by user"

type PostHandler struct {
	posts services.PostService
}

func NewPostHandler(posts services.PostService) *PostHandler {
	return &PostHandler{posts: posts}
}

// @Summary      Создать пост
// @Tags         Posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      models.CreatePostRequest  true  "Пост"
// @Success      201   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Router       /api/post [post]
func (h *PostHandler) Create(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var req models.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": bindMessage(err)})
		return
	}
	post, err := h.posts.Create(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, "post-create", err, "Server error while creating post", map[error]string{
			services.ErrEmptyContent: "Title and description are required",
		})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Post created successfully", "post": post})
}

// @Summary      Список постов
// @Description  type: подстрока skin_type без учёта регистра; isSaved для текущего пользователя
// @Tags         Posts
// @Produce      json
// @Security     BearerAuth
// @Param        type  query     string  false  "Тип кожи"
// @Success      200   {object}  map[string]interface{}
// @Router       /api/post [get]
func (h *PostHandler) List(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	posts, err := h.posts.List(c.Request.Context(), userID, c.Query("type"))
	if err != nil {
		respondError(c, "post-list", err, "Server error while fetching posts", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Posts fetched successfully", "posts": posts})
}

// @Summary      Пост по id
// @Tags         Posts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "ID поста"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]string
// @Router       /api/post/{id} [get]
func (h *PostHandler) Get(c *gin.Context) {
	id, ok := pathUUID(c, "id", "Post not found")
	if !ok {
		return
	}
	post, err := h.posts.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, "post-get", err, "Server error while fetching post", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Post fetched successfully", "post": post})
}

// @Summary      Обновить свой пост
// @Tags         Posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                    true  "ID поста"
// @Param        body  body      models.UpdatePostRequest  true  "Поля для обновления"
// @Success      200   {object}  map[string]interface{}
// @Failure      404   {object}  map[string]string
// @Router       /api/post/{id} [put]
func (h *PostHandler) Update(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id", postNotOwned)
	if !ok {
		return
	}
	var req models.UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": bindMessage(err)})
		return
	}
	post, err := h.posts.Update(c.Request.Context(), id, userID, req)
	if err != nil {
		respondError(c, "post-update", err, "Server error while updating post", map[error]string{
			services.ErrPostNotFound: postNotOwned,
			services.ErrEmptyContent: "Title and description are required",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Post updated successfully", "post": post})
}

// @Summary      Удалить свой пост
// @Tags         Posts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "ID поста"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/post/{id} [delete]
func (h *PostHandler) Delete(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id", postNotOwned)
	if !ok {
		return
	}
	if err := h.posts.Delete(c.Request.Context(), id, userID); err != nil {
		respondError(c, "post-delete", err, "Server error while deleting post", map[error]string{
			services.ErrPostNotFound: postNotOwned,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Post deleted successfully"})
}

// @Summary      Сохранённые посты
// @Tags         Posts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Router       /api/post/saved [post]
func (h *PostHandler) Saved(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	posts, err := h.posts.ListSaved(c.Request.Context(), userID)
	if err != nil {
		respondError(c, "post-saved", err, "Server error while fetching saved posts", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Saved posts fetched", "savedPosts": posts})
}

// @Summary      Сохранить пост
// @Tags         Posts
// @Produce      json
// @Security     BearerAuth
// @Param        postId  path      string  true  "ID поста"
// @Success      200     {object}  map[string]interface{}
// @Failure      400     {object}  map[string]string
// @Failure      404     {object}  map[string]string
// @Router       /api/post/save/{postId} [post]
func (h *PostHandler) Save(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	postID, ok := pathUUID(c, "postId", "Post not found")
	if !ok {
		return
	}
	ids, err := h.posts.Save(c.Request.Context(), userID, postID)
	if err != nil {
		respondError(c, "post-save", err, "Server error while saving post", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Post saved successfully", "savedPosts": ids})
}

// @Summary      Убрать пост из сохранённых
// @Tags         Posts
// @Produce      json
// @Security     BearerAuth
// @Param        postId  path      string  true  "ID поста"
// @Success      200     {object}  map[string]interface{}
// @Router       /api/post/unsave/{postId} [delete]
func (h *PostHandler) Unsave(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	postID, ok := pathUUID(c, "postId", "Post not found")
	if !ok {
		return
	}
	ids, err := h.posts.Unsave(c.Request.Context(), userID, postID)
	if err != nil {
		respondError(c, "post-unsave", err, "Server error while unsaving post", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Post unsaved successfully", "savedPosts": ids})
}
