package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/xkura/sdklogview/internal/hub"
	"github.com/xkura/sdklogview/internal/observability"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// WSHandler streams ingest events to connected browsers so they can refresh
// without polling.
type WSHandler struct {
	Hub     *hub.Hub
	Log     zerolog.Logger
	Metrics *observability.Metrics
}

func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	if h.Metrics != nil {
		h.Metrics.WebsocketClients.Inc()
		defer h.Metrics.WebsocketClients.Dec()
	}

	events := h.Hub.Subscribe()
	defer h.Hub.Unsubscribe(events)

	// Read pump: detect client disconnect.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.Hub.Unsubscribe(events)
				return
			}
		}
	}()

	for ev := range events {
		if err := conn.WriteJSON(ev); err != nil {
			h.Log.Debug().Err(err).Msg("websocket write failed")
			return
		}
	}
}
