package http

import (
	"context"
	"net/http"

	"github.com/bcplughub/backend/internal/domain/dto"
	"github.com/bcplughub/backend/internal/domain/entity"
	"github.com/gin-gonic/gin"
)

type userService interface {
	Register(ctx context.Context, data dto.UserRegister) (*entity.User, error)
	Login(ctx context.Context, email, password string) (*entity.User, error)
	Get(ctx context.Context, id string) (*entity.User, error)
	Directory(ctx context.Context) ([]dto.DirectoryEntry, error)
	UpdateInstagram(ctx context.Context, userID, handle string, followers []string) (*entity.User, error)
	UpdateClubs(ctx context.Context, userID string, clubs []string) (*entity.User, error)
	Functions(ctx context.Context, userID string) (*dto.UserFunctions, error)
}

type userArchiver interface {
	ArchiveForUser(ctx context.Context, userID string) (*dto.ArchiveResult, error)
}

type UserHandler struct {
	users    userService
	archiver userArchiver
}

func NewUserHandler(users userService, archiver userArchiver) *UserHandler {
	return &UserHandler{users: users, archiver: archiver}
}

type registerRequest struct {
	Email           string `json:"bc_email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=8"`
	Name            string `json:"name" binding:"required"`
	InstagramHandle string `json:"instagram_handle"`
}

func (h *UserHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.Register(c.Request.Context(), dto.UserRegister{
		Email:           req.Email,
		Password:        req.Password,
		Name:            req.Name,
		InstagramHandle: req.InstagramHandle,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewUserProfile(user))
}

type loginRequest struct {
	Email    string `json:"bc_email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserProfile(user))
}

func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.users.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserProfile(user))
}

func (h *UserHandler) Directory(c *gin.Context) {
	entries, err := h.users.Directory(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": entries})
}

type instagramRequest struct {
	Handle    string   `json:"instagram_handle" binding:"required"`
	Followers []string `json:"instagram_followers"`
}

func (h *UserHandler) UpdateInstagram(c *gin.Context) {
	var req instagramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := h.users.UpdateInstagram(c.Request.Context(), c.Param("id"), req.Handle, req.Followers); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Instagram info updated successfully"})
}

type clubsRequest struct {
	Clubs []string `json:"bc_club_affiliations" binding:"required"`
}

func (h *UserHandler) UpdateClubs(c *gin.Context) {
	var req clubsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := h.users.UpdateClubs(c.Request.Context(), c.Param("id"), req.Clubs); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Club affiliations updated successfully"})
}

// Functions runs the incremental archive sweep for the user before
// returning the mirrors, so loading a profile converges passed events.
func (h *UserHandler) Functions(c *gin.Context) {
	userID := c.Param("id")
	if _, err := h.archiver.ArchiveForUser(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}

	functions, err := h.users.Functions(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, functions)
}
