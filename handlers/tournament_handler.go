package handlers

import (
	"fmt"
	"net/http"

	"github.com/Dosada05/badminton-doubles/models"
	"github.com/Dosada05/badminton-doubles/services"
)

type TournamentHandler struct {
	tournamentService  services.TournamentService
	matchService       services.MatchService
	leaderboardService services.LeaderboardService
}

func NewTournamentHandler(
	tournamentService services.TournamentService,
	matchService services.MatchService,
	leaderboardService services.LeaderboardService,
) *TournamentHandler {
	return &TournamentHandler{
		tournamentService:  tournamentService,
		matchService:       matchService,
		leaderboardService: leaderboardService,
	}
}

// Create godoc
// @Summary Create a tournament
// @Description Splits the players into two teams and generates the doubles schedule.
// @Tags tournaments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param input body services.CreateTournamentInput true "Tournament"
// @Success 201 {object} map[string]models.Tournament
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /api/tournaments [post]
func (h *TournamentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input services.CreateTournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.CreateTournament(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// List godoc
// @Summary List tournaments
// @Tags tournaments
// @Produce json
// @Param status query string false "active or completed"
// @Param limit query int false "Page size (max 100)"
// @Param offset query int false "Offset"
// @Success 200 {object} map[string][]models.Tournament
// @Router /api/tournaments [get]
func (h *TournamentHandler) List(w http.ResponseWriter, r *http.Request) {
	var filter services.ListTournamentsInput

	if raw := r.URL.Query().Get("status"); raw != "" {
		status := models.TournamentStatus(raw)
		if status != models.StatusActive && status != models.StatusCompleted {
			badRequestResponse(w, r, fmt.Errorf("invalid status filter: %q", raw))
			return
		}
		filter.Status = &status
	}

	var err error
	if filter.Limit, err = queryInt(r, "limit", 0); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if filter.Offset, err = queryInt(r, "offset", 0); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournaments, err := h.tournamentService.ListTournaments(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournaments": tournaments}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Get godoc
// @Summary Tournament with matches, leaderboard and team score
// @Tags tournaments
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 200 {object} map[string]models.Tournament
// @Failure 404 {object} map[string]string
// @Router /api/tournaments/{tournamentID} [get]
func (h *TournamentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.GetTournamentDetails(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Matches godoc
// @Summary Tournament schedule
// @Tags tournaments
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 200 {object} map[string][]models.Match
// @Router /api/tournaments/{tournamentID}/matches [get]
func (h *TournamentHandler) Matches(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.matchService.ListByTournament(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Leaderboard godoc
// @Summary Leaderboard of one tournament
// @Tags leaderboard
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 200 {object} map[string][]models.LeaderboardEntry
// @Router /api/tournaments/{tournamentID}/leaderboard [get]
func (h *TournamentHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	entries, err := h.leaderboardService.GetForTournament(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"leaderboard": entries}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Regenerate godoc
// @Summary Regenerate the schedule
// @Description Only while no score has been recorded.
// @Tags tournaments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param tournamentID path int true "Tournament ID"
// @Param input body services.RegenerateFixturesInput false "Optional seed"
// @Success 200 {object} map[string]models.Tournament
// @Failure 409 {object} map[string]string
// @Router /api/tournaments/{tournamentID}/regenerate [post]
func (h *TournamentHandler) Regenerate(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.RegenerateFixturesInput
	if r.ContentLength != 0 {
		if err := readJSON(w, r, &input); err != nil {
			badRequestResponse(w, r, err)
			return
		}
	}

	tournament, err := h.tournamentService.RegenerateFixtures(r.Context(), id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Complete godoc
// @Summary Close a tournament early
// @Tags tournaments
// @Produce json
// @Security BearerAuth
// @Param tournamentID path int true "Tournament ID"
// @Success 200 {object} map[string]models.Tournament
// @Failure 409 {object} map[string]string
// @Router /api/tournaments/{tournamentID}/complete [post]
func (h *TournamentHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.CompleteTournament(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Delete godoc
// @Summary Delete a tournament and its matches
// @Tags tournaments
// @Security BearerAuth
// @Param tournamentID path int true "Tournament ID"
// @Success 204
// @Router /api/tournaments/{tournamentID} [delete]
func (h *TournamentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.tournamentService.DeleteTournament(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
