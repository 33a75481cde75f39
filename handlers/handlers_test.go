package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Dosada05/badminton-doubles/models"
	"github.com/Dosada05/badminton-doubles/services"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Заглушки сервисов: неиспользуемые методы наследуются от nil-интерфейса.

type stubPlayerService struct {
	services.PlayerService
	created services.CreatePlayerInput
	getErr  error
}

func (s *stubPlayerService) CreatePlayer(_ context.Context, input services.CreatePlayerInput) (*models.Player, error) {
	s.created = input
	if strings.TrimSpace(input.Name) == "" {
		return nil, services.ErrPlayerNameRequired
	}
	return &models.Player{ID: 1, Name: input.Name, SkillLevel: 5}, nil
}

func (s *stubPlayerService) GetPlayerByID(_ context.Context, id int) (*models.Player, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return &models.Player{ID: id, Name: "Lin Dan", SkillLevel: 9}, nil
}

type stubTournamentService struct {
	services.TournamentService
	err        error
	listFilter services.ListTournamentsInput
	regenInput services.RegenerateFixturesInput
	deletedID  int
}

func (s *stubTournamentService) CreateTournament(_ context.Context, input services.CreateTournamentInput) (*models.Tournament, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.Tournament{ID: 3, Name: input.Name, MatchesPerPlayer: input.MatchesPerPlayer, Status: models.StatusActive}, nil
}

func (s *stubTournamentService) ListTournaments(_ context.Context, filter services.ListTournamentsInput) ([]models.Tournament, error) {
	s.listFilter = filter
	return []models.Tournament{{ID: 1, Name: "Friday"}}, nil
}

func (s *stubTournamentService) RegenerateFixtures(_ context.Context, id int, input services.RegenerateFixturesInput) (*models.Tournament, error) {
	s.regenInput = input
	if s.err != nil {
		return nil, s.err
	}
	return &models.Tournament{ID: id}, nil
}

func (s *stubTournamentService) DeleteTournament(_ context.Context, id int) error {
	s.deletedID = id
	return s.err
}

type stubMatchService struct {
	services.MatchService
	err error
}

func (s *stubMatchService) SubmitScore(_ context.Context, matchID string, input services.SubmitScoreInput) (*models.Match, error) {
	if s.err != nil {
		return nil, s.err
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}
	return &models.Match{ID: matchID, ScoreA: input.ScoreA, ScoreB: input.ScoreB, Status: models.MatchStatusCompleted}, nil
}

type stubAuthService struct{}

func (stubAuthService) Login(_ context.Context, c models.Credentials) (string, error) {
	if c.Username == "organizer" && c.Password == "shuttle" {
		return "signed-token", nil
	}
	return "", services.ErrAuthInvalidCredentials
}

type stubPinger struct{ err error }

func (p stubPinger) PingContext(context.Context) error { return p.err }

func serve(t *testing.T, router http.Handler, method, target, body string) (*httptest.ResponseRecorder, map[string]json.RawMessage) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env map[string]json.RawMessage
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

func TestPlayerHandler(t *testing.T) {
	svc := &stubPlayerService{}
	h := NewPlayerHandler(svc)
	r := chi.NewRouter()
	r.Post("/players", h.Create)
	r.Get("/players/{playerID}", h.Get)

	rec, env := serve(t, r, http.MethodPost, "/players", `{"name":"Lin Dan","skill_level":9}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, string(env["player"]), `"Lin Dan"`)
	require.NotNil(t, svc.created.SkillLevel)
	assert.Equal(t, 9, *svc.created.SkillLevel)

	rec, env = serve(t, r, http.MethodPost, "/players", `{"name":"Lin Dan","rating":9}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, string(env["error"]), "unknown key")

	rec, _ = serve(t, r, http.MethodPost, "/players", `{"name":"  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = serve(t, r, http.MethodGet, "/players/7", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = serve(t, r, http.MethodGet, "/players/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	svc.getErr = fmt.Errorf("lookup: %w", services.ErrPlayerNotFound)
	rec, _ = serve(t, r, http.MethodGet, "/players/7", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTournamentHandler(t *testing.T) {
	svc := &stubTournamentService{}
	h := NewTournamentHandler(svc, nil, nil)
	r := chi.NewRouter()
	r.Post("/tournaments", h.Create)
	r.Get("/tournaments", h.List)
	r.Post("/tournaments/{tournamentID}/regenerate", h.Regenerate)
	r.Delete("/tournaments/{tournamentID}", h.Delete)

	rec, env := serve(t, r, http.MethodPost, "/tournaments", `{"name":"Friday","player_ids":[1,2,3,4],"matches_per_player":1}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, string(env["tournament"]), `"Friday"`)

	rec, _ = serve(t, r, http.MethodGet, "/tournaments?status=completed&limit=10&offset=20", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.listFilter.Status)
	assert.Equal(t, models.StatusCompleted, *svc.listFilter.Status)
	assert.Equal(t, 10, svc.listFilter.Limit)
	assert.Equal(t, 20, svc.listFilter.Offset)

	rec, _ = serve(t, r, http.MethodGet, "/tournaments?status=archived", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec, _ = serve(t, r, http.MethodGet, "/tournaments?limit=-1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = serve(t, r, http.MethodPost, "/tournaments/3/regenerate", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, svc.regenInput.Seed)

	rec, _ = serve(t, r, http.MethodPost, "/tournaments/3/regenerate", `{"seed":42}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.regenInput.Seed)
	assert.Equal(t, int64(42), *svc.regenInput.Seed)

	rec, _ = serve(t, r, http.MethodDelete, "/tournaments/3", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 3, svc.deletedID)
}

func TestTournamentHandlerErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "not enough players", err: services.ErrNotEnoughPlayers, want: http.StatusBadRequest},
		{name: "unknown players", err: services.ErrUnknownPlayers, want: http.StatusBadRequest},
		{name: "no fixtures", err: services.ErrNoFixturesGenerated, want: http.StatusUnprocessableEntity},
		{name: "split failed", err: fmt.Errorf("ai: %w", services.ErrTeamSplitFailed), want: http.StatusServiceUnavailable},
		{name: "has results", err: services.ErrTournamentHasResults, want: http.StatusConflict},
		{name: "not found", err: services.ErrTournamentNotFound, want: http.StatusNotFound},
		{name: "unexpected", err: errors.New("connection reset"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewTournamentHandler(&stubTournamentService{err: tt.err}, nil, nil)
			r := chi.NewRouter()
			r.Post("/tournaments", h.Create)

			rec, env := serve(t, r, http.MethodPost, "/tournaments", `{"name":"Friday","player_ids":[1,2,3,4],"matches_per_player":1}`)
			assert.Equal(t, tt.want, rec.Code)
			assert.NotEmpty(t, env["error"])
		})
	}
}

func TestMatchHandlerSubmitScore(t *testing.T) {
	r := chi.NewRouter()
	r.Put("/matches/{matchID}/score", NewMatchHandler(&stubMatchService{}).SubmitScore)

	rec, env := serve(t, r, http.MethodPut, "/matches/m-1/score", `{"score_a":21,"score_b":17}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env["match"]), `"m-1"`)

	rec, _ = serve(t, r, http.MethodPut, "/matches/m-1/score", `{"score_a":21,"score_b":21}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = serve(t, r, http.MethodPut, "/matches/m-1/score", `{"score_a":"21"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	closed := chi.NewRouter()
	closed.Put("/matches/{matchID}/score", NewMatchHandler(&stubMatchService{err: services.ErrTournamentNotActive}).SubmitScore)
	rec, _ = serve(t, closed, http.MethodPut, "/matches/m-1/score", `{"score_a":21,"score_b":17}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAuthHandlerLogin(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/login", NewAuthHandler(stubAuthService{}).Login)

	rec, env := serve(t, r, http.MethodPost, "/login", `{"username":"organizer","password":"shuttle"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `"signed-token"`, string(env["token"]))

	rec, _ = serve(t, r, http.MethodPost, "/login", `{"username":"organizer","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = serve(t, r, http.MethodPost, "/login", `{"username":"organizer"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = serve(t, r, http.MethodPost, "/login", ``)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthHandler(t *testing.T) {
	rec, env := serve(t, http.HandlerFunc(NewHealthHandler(stubPinger{}).Health), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `"ok"`, string(env["status"]))

	rec, _ = serve(t, http.HandlerFunc(NewHealthHandler(stubPinger{err: errors.New("down")}).Health), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestQueryInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=15&offset=x", nil)

	v, err := queryInt(req, "limit", 50)
	require.NoError(t, err)
	assert.Equal(t, 15, v)

	v, err = queryInt(req, "missing", 50)
	require.NoError(t, err)
	assert.Equal(t, 50, v)

	_, err = queryInt(req, "offset", 0)
	assert.Error(t, err)
}
