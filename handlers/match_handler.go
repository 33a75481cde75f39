package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/badminton-doubles/services"
	"github.com/go-chi/chi/v5"
)

type MatchHandler struct {
	matchService services.MatchService
}

func NewMatchHandler(matchService services.MatchService) *MatchHandler {
	return &MatchHandler{matchService: matchService}
}

// SubmitScore godoc
// @Summary Record or correct a match score
// @Tags matches
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param matchID path string true "Match ID (uuid)"
// @Param input body services.SubmitScoreInput true "Scores"
// @Success 200 {object} map[string]models.Match
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/matches/{matchID}/score [put]
func (h *MatchHandler) SubmitScore(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchID")
	if matchID == "" {
		badRequestResponse(w, r, errors.New("missing matchID in URL path"))
		return
	}

	var input services.SubmitScoreInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.SubmitScore(r.Context(), matchID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
