package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Dosada05/tabletop-tournaments/live"
	"github.com/gorilla/websocket"
)

type WebSocketHandler struct {
	hub      *live.Hub
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewWebSocketHandler принимает список разрешенных Origin; "*" или пустой список разрешает все.
func NewWebSocketHandler(hub *live.Hub, allowedOrigins []string, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:    hub,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 {
			return true
		}
		for _, a := range allowed {
			if a == "*" || a == origin {
				return true
			}
		}
		return false
	}
}

// ServeWs подписывает клиента на обновления турнира: /ws/tournaments/{tournament}
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	name := tournamentFromURL(r)
	if name == "" {
		http.Error(w, "Missing tournament", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade сам отвечает клиенту ошибкой
		h.logger.Warn("websocket upgrade failed", slog.String("tournament", name), slog.Any("error", err))
		return
	}

	client := live.NewClient(h.hub, conn, live.RoomForTournament(name))
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
