package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"devconnector/internal/service"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps groups the services the HTTP layer depends on.
type Deps struct {
	Users    service.UserService
	Tokens   service.TokenService
	Profiles service.ProfileService
	Posts    service.PostService
	GitHub   service.GitHubService
	Avatars  service.AvatarService
	Store    Pinger
	Logger   *logrus.Logger
}

// Handler wires HTTP routes to domain services.
type Handler struct {
	users    service.UserService
	tokens   service.TokenService
	profiles service.ProfileService
	posts    service.PostService
	github   service.GitHubService
	avatars  service.AvatarService
	store    Pinger
	logger   *logrus.Logger
}

func NewHandler(d Deps) *Handler {
	logger := d.Logger
	if logger == nil {
		logger = logrus.New()
	}
	return &Handler{
		users:    d.Users,
		tokens:   d.Tokens,
		profiles: d.Profiles,
		posts:    d.Posts,
		github:   d.GitHub,
		avatars:  d.Avatars,
		store:    d.Store,
		logger:   logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(requestLogger(h.logger))
	auth := RequireAuth(h.tokens)

	api := router.Group("/api")
	{
		api.GET("/health", h.health)

		api.POST("/users", h.register)
		api.GET("/users/all", h.listUsers)
		api.PUT("/users/avatar", auth, h.uploadAvatar)

		api.GET("/auth", auth, h.currentUser)
		api.POST("/auth", h.login)

		profiles := api.Group("/profiles")
		profiles.GET("/me", auth, h.myProfile)
		profiles.POST("", auth, h.upsertProfile)
		profiles.GET("/all", h.listProfiles)
		profiles.GET("/user/:id", h.profileByUser)
		profiles.DELETE("", auth, h.deleteAccount)
		profiles.PUT("/experience", auth, h.addExperience)
		profiles.DELETE("/experience/:id", auth, h.removeExperience)
		profiles.PUT("/education", auth, h.addEducation)
		profiles.DELETE("/education/:id", auth, h.removeEducation)
		profiles.GET("/github/callback", h.githubCallback)
		profiles.GET("/github/:username", h.githubRedirect)

		posts := api.Group("/posts", auth)
		posts.POST("", h.createPost)
		posts.GET("", h.listPosts)
		posts.GET("/:id", h.getPost)
		posts.DELETE("/:id", h.deletePost)
		posts.PUT("/like/:id", h.likePost)
		posts.PUT("/unlike/:id", h.unlikePost)
		posts.POST("/comment/:id", h.addComment)
		posts.DELETE("/comment/:id/:commentId", h.removeComment)
	}
}

func (h *Handler) health(c *gin.Context) {
	if h.store != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.store.Ping(ctx); err != nil {
			h.logger.Warnf("health: store ping: %v", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
