package http

import (
	"errors"
	"net/http"

	"github.com/dkeye/Relay/internal/adapters/signal"
	"github.com/dkeye/Relay/internal/app/orch"
	"github.com/dkeye/Relay/internal/domain"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const sessionUsernameKey = "username"

type Handlers struct {
	Orch      *orch.Orchestrator
	Content   *Content
	regLimits *signal.RateLimiter
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
}

func registerError(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrUsernameEmpty):
		return http.StatusBadRequest, "Username required"
	case errors.Is(err, domain.ErrUsernameTaken):
		return http.StatusBadRequest, "Username taken"
	}
	return http.StatusInternalServerError, "Internal server error"
}

func (h *Handlers) Register(c *gin.Context) {
	// Keyed by address: a client that drops its cookies still shares a bucket.
	if !h.regLimits.Allow(c.ClientIP()) {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many registrations"})
		return
	}

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		status, msg := registerError(domain.ErrUsernameEmpty)
		c.JSON(status, gin.H{"error": msg})
		return
	}
	user, err := h.Orch.Identities.Register(req.Username)
	if err != nil {
		status, msg := registerError(err)
		log.Info().Err(err).Str("module", "adapters.http").Str("username", req.Username).Msg("register rejected")
		c.JSON(status, gin.H{"error": msg})
		return
	}

	session := sessions.Default(c)
	session.Set(sessionUsernameKey, user.Username)
	if err := session.Save(); err != nil {
		log.Warn().Err(err).Str("module", "adapters.http").Msg("session save")
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handlers) WhoAmI(c *gin.Context) {
	name, _ := sessions.Default(c).Get(sessionUsernameKey).(string)
	if name == "" || !h.Orch.Identities.Exists(name) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not registered"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"username": name})
}

func (h *Handlers) ListRooms(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"rooms": h.Orch.Rooms.List()})
}

func (h *Handlers) RoomMembers(c *gin.Context) {
	members, ok := h.Orch.Members(domain.RoomID(c.Param("id")))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Room not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"members": members})
}
