package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/pegwheel/pegwheel/pkg/log"
	gamesync "github.com/pegwheel/pegwheel/pkg/sync"
)

const watchInterval = 250 * time.Millisecond

// HandleWatchGame streams a GameResponse over a WebSocket whenever the
// state changes, starting with the current state.
func HandleWatchGame(manager *gamesync.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: []string{"*"},
		})
		if err != nil {
			log.Error("Failed to accept WebSocket: %v", err)
			return
		}
		defer conn.CloseNow()

		ctx := conn.CloseRead(r.Context())

		var last []byte
		ticker := time.NewTicker(watchInterval)
		defer ticker.Stop()

		for {
			resp := buildGameResponse(manager)
			encoded, err := json.Marshal(resp)
			if err != nil {
				log.Error("Failed to encode game state: %v", err)
				return
			}
			if !bytes.Equal(encoded, last) {
				if err := wsjson.Write(ctx, conn, resp); err != nil {
					log.Trace("Watch connection closed: %v", err)
					return
				}
				last = encoded
			}

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}
}
