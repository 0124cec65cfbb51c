package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/pegwheel/pegwheel/pkg/game"
	"github.com/pegwheel/pegwheel/pkg/game/types"
	"github.com/pegwheel/pegwheel/pkg/log"
	"github.com/pegwheel/pegwheel/pkg/store"
	gamesync "github.com/pegwheel/pegwheel/pkg/sync"
)

// GameResponse is the full read-only view handed to the UI.
type GameResponse struct {
	game.Snapshot
	GameID           string                 `json:"gameId"`
	ConnectionStatus types.ConnectionStatus `json:"connectionStatus"`
}

func buildGameResponse(manager *gamesync.Manager) GameResponse {
	return GameResponse{
		Snapshot:         manager.Session().Snapshot(),
		GameID:           manager.GameID(),
		ConnectionStatus: manager.Status(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to encode response: %v", err)
	}
}

func HandleGetGame(manager *gamesync.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, buildGameResponse(manager))
	}
}

func HandleSelectPeg(manager *gamesync.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.PegRef
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		manager.Session().SelectPeg(req.PlayerID, req.PegID)
		writeJSON(w, http.StatusOK, buildGameResponse(manager))
	}
}

func HandleMovePeg(manager *gamesync.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Target types.PegPosition `json:"target"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		manager.Session().MoveSelectedPegTo(req.Target)
		writeJSON(w, http.StatusOK, buildGameResponse(manager))
	}
}

func HandleAddPlayer(manager *gamesync.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		manager.Session().AddPlayer()
		writeJSON(w, http.StatusOK, buildGameResponse(manager))
	}
}

func HandleRemovePlayer(manager *gamesync.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		manager.Session().RemovePlayer()
		writeJSON(w, http.StatusOK, buildGameResponse(manager))
	}
}

func HandleResetGame(manager *gamesync.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		manager.Session().ResetGame()
		writeJSON(w, http.StatusOK, buildGameResponse(manager))
	}
}

func HandleCreateGame(manager *gamesync.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			PlayerCount int `json:"playerCount"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		gameID, err := manager.CreateGame(r.Context(), req.PlayerCount)
		if err != nil {
			switch {
			case gamesync.IsInvalidPlayerCount(err):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case err == gamesync.ErrStoreUnavailable:
				http.Error(w, err.Error(), http.StatusServiceUnavailable)
			default:
				log.Error("failed to create game: %v", err)
				http.Error(w, "failed to create game", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusCreated, map[string]string{"gameId": gameID})
	}
}

func HandleJoinGame(manager *gamesync.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID := mux.Vars(r)["gameID"]
		if err := manager.JoinGame(r.Context(), gameID); err != nil {
			switch {
			case store.IsNotFound(err):
				http.Error(w, "game not found", http.StatusNotFound)
			case err == gamesync.ErrStoreUnavailable:
				http.Error(w, err.Error(), http.StatusServiceUnavailable)
			default:
				log.Error("failed to join game %s: %v", gameID, err)
				http.Error(w, "failed to join game", http.StatusInternalServerError)
			}
			return
		}
		writeJSON(w, http.StatusOK, buildGameResponse(manager))
	}
}

func HandleLeaveGame(manager *gamesync.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		manager.LeaveGame(r.Context())
		writeJSON(w, http.StatusOK, buildGameResponse(manager))
	}
}

func HandleListGames(manager *gamesync.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		games, err := manager.GetUserGames(r.Context())
		if err != nil {
			if err == gamesync.ErrStoreUnavailable {
				http.Error(w, err.Error(), http.StatusServiceUnavailable)
				return
			}
			log.Error("failed to list games: %v", err)
			http.Error(w, "failed to list games", http.StatusInternalServerError)
			return
		}
		if games == nil {
			games = []gamesync.UserGame{}
		}
		writeJSON(w, http.StatusOK, games)
	}
}
