package handlers

import (
	"net/http"

	"github.com/Dosada05/badminton-doubles/services"
)

type LeaderboardHandler struct {
	leaderboardService services.LeaderboardService
}

func NewLeaderboardHandler(leaderboardService services.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboardService: leaderboardService}
}

// Overall godoc
// @Summary Leaderboard across all tournaments
// @Tags leaderboard
// @Produce json
// @Success 200 {object} map[string][]models.LeaderboardEntry
// @Router /api/leaderboard [get]
func (h *LeaderboardHandler) Overall(w http.ResponseWriter, r *http.Request) {
	entries, err := h.leaderboardService.GetOverall(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"leaderboard": entries}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
