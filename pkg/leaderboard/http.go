package leaderboard

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apphttp "github.com/carbonquest/carbonquest/pkg/app/http"
)

// RegisterRoutes mounts the public leaderboard endpoint.
func RegisterRoutes(r chi.Router, board *Leaderboard, _ *zap.Logger) {
	r.Get("/leaderboard", apphttp.HandleError(func(w http.ResponseWriter, _ *http.Request) error {
		apphttp.WriteJSON(w, http.StatusOK, board.Snapshot())
		return nil
	}))
}
