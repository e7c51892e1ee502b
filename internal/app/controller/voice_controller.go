package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/ikkim/maison-backend/internal/middleware"
	"github.com/ikkim/maison-backend/internal/voice"
	ws "github.com/ikkim/maison-backend/internal/websocket"
)

type VoiceController struct {
	hub      *ws.Hub
	dialer   voice.Dialer
	cfg      voice.Config
	upgrader websocket.Upgrader
}

func NewVoiceController(hub *ws.Hub, dialer voice.Dialer, cfg voice.Config, allowedOrigins []string) *VoiceController {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = true
	}

	return &VoiceController{
		hub:    hub,
		dialer: dialer,
		cfg:    cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed["*"] || allowed[origin]
			},
		},
	}
}

// Connect bridges the browser's microphone and speakers to the realtime model
// GET /api/v1/concierge/voice
func (ctrl *VoiceController) Connect(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	channels, err := ws.ParseChannels(c.Query("channels"))
	if err != nil {
		fail(c, "Invalid voice channel count", err)
		return
	}

	conn, err := ctrl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("Failed to upgrade voice connection", err, nil)
		return
	}

	client := ws.NewClient(ctrl.hub, conn, middleware.GetShopperID(c), channels)

	if err := ctrl.hub.Register(client); err != nil {
		if errors.Is(err, ws.ErrTooManySessions) {
			log.Warn("Voice session rejected", map[string]interface{}{
				"active": ctrl.hub.Count(),
			})
		}
		msg := websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "voice concierge is busy")
		conn.WriteMessage(websocket.CloseMessage, msg)
		conn.Close()
		return
	}

	session := voice.NewSession(ctrl.cfg, client, ctrl.dialer)
	session.OnStateChange(client.SendStatus)
	client.Attach(session)

	log.Info("Voice client connected", map[string]interface{}{
		"client_id": client.ID,
		"channels":  client.Channels,
	})

	go client.WritePump()
	client.ReadPump(c.Request.Context())

	log.Info("Voice client disconnected", map[string]interface{}{
		"client_id": client.ID,
	})
}
