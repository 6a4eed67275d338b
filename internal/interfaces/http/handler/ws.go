package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pharmanet/backend/internal/infrastructure/notification"
)

// WSHandler upgrades authenticated clients to the notification stream
type WSHandler struct {
	BaseHandler
	hub *notification.Hub
}

// NewWSHandler creates a websocket handler
func NewWSHandler(hub *notification.Hub, logger *zap.Logger) *WSHandler {
	return &WSHandler{
		BaseHandler: NewBaseHandler(logger),
		hub:         hub,
	}
}

// RegisterRoutes registers the websocket route on the given group
func (h *WSHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/ws", h.Connect)
}

// Connect upgrades the request to a websocket and subscribes the client
// to events scoped to its user and branch
func (h *WSHandler) Connect(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var branchID *uuid.UUID
	branchID, ok = h.currentBranchID(c)
	if !ok {
		return
	}

	if err := notification.ServeWS(h.hub, c.Writer, c.Request, userID, branchID); err != nil {
		h.logger.Warn("websocket upgrade failed",
			zap.String("user_id", userID.String()),
			zap.Error(err))
	}
}
