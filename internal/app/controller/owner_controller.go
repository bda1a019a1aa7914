package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/ikkim/storerating-backend/internal/app/service"
	"github.com/ikkim/storerating-backend/internal/middleware"
	ws "github.com/ikkim/storerating-backend/internal/websocket"
)

type OwnerController struct {
	ownerService service.OwnerService
	hub          *ws.Hub
	upgrader     websocket.Upgrader
}

// NewOwnerController builds the owner endpoints. Feed upgrades only requests
// without an Origin header or from one of allowedOrigins.
func NewOwnerController(ownerService service.OwnerService, hub *ws.Hub, allowedOrigins []string) *OwnerController {
	return &OwnerController{
		ownerService: ownerService,
		hub:          hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowedOrigins []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, allowed := range allowedOrigins {
			if origin == allowed || allowed == "*" {
				return true
			}
		}
		return false
	}
}

// Dashboard GET /api/owner/dashboard
func (ctrl *OwnerController) Dashboard(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	dashboard, err := ctrl.ownerService.Dashboard(caller.ID)
	if err != nil {
		respondError(c, err, "owner dashboard")
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

// Feed streams rating events for the owner's store over a websocket
// GET /api/owner/feed
func (ctrl *OwnerController) Feed(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	store, err := ctrl.ownerService.StoreForOwner(caller.ID)
	if err != nil {
		respondError(c, err, "owner feed")
		return
	}

	conn, err := ctrl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the error response
		log.Warn("Failed to upgrade to WebSocket", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	client := ws.NewClient(ctrl.hub, &ws.Conn{Conn: conn}, caller.ID, store.ID)
	ctrl.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()

	log.Info("Rating feed connected", map[string]interface{}{
		"user_id":  caller.ID,
		"store_id": store.ID,
	})
}
