package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Dosada05/badminton-doubles/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func aiServer(t *testing.T, status int, text string) (*httptest.Server, *aiRequest) {
	t.Helper()
	var captured aiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/models/test-model:generateContent", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("x-goog-api-key"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"message":"quota exceeded"}}`))
			return
		}
		resp := map[string]interface{}{
			"candidates": []map[string]interface{}{
				{"content": map[string]interface{}{"role": "model", "parts": []map[string]string{{"text": text}}}},
			},
		}
		assert.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	t.Cleanup(srv.Close)
	return srv, &captured
}

func newTestAISplitter(baseURL string) *AITeamSplitter {
	return NewAITeamSplitter(AITeamSplitterConfig{APIKey: "secret", Model: "test-model", BaseURL: baseURL + "/", Timeout: time.Second})
}

func TestAITeamSplitter(t *testing.T) {
	players := seedPlayers(5)
	srv, captured := aiServer(t, http.StatusOK, "```json\n{\"teamA\": [1, 4, 5], \"teamB\": [2, 3]}\n```")

	split, err := newTestAISplitter(srv.URL).SplitIntoTeams(context.Background(), players)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 4, 5}, split.TeamA)
	assert.Equal(t, []int{2, 3}, split.TeamB)
	assert.Equal(t, models.SplitMethodAI, split.Method)

	require.Len(t, captured.Contents, 1)
	require.Len(t, captured.Contents[0].Parts, 1)
	prompt := captured.Contents[0].Parts[0].Text
	assert.Contains(t, prompt, "- 3, Player 03, 3")
	assert.Equal(t, "application/json", captured.GenerationConfig.ResponseMIMEType)
}

func TestAITeamSplitterErrors(t *testing.T) {
	players := seedPlayers(4)

	t.Run("api error status", func(t *testing.T) {
		srv, _ := aiServer(t, http.StatusTooManyRequests, "")
		_, err := newTestAISplitter(srv.URL).SplitIntoTeams(context.Background(), players)
		require.ErrorIs(t, err, ErrTeamSplitFailed)
		assert.Contains(t, err.Error(), "429")
	})

	t.Run("not json", func(t *testing.T) {
		srv, _ := aiServer(t, http.StatusOK, "I cannot help with that")
		_, err := newTestAISplitter(srv.URL).SplitIntoTeams(context.Background(), players)
		require.ErrorIs(t, err, ErrTeamSplitFailed)
	})

	t.Run("player left out", func(t *testing.T) {
		srv, _ := aiServer(t, http.StatusOK, `{"teamA":[1,2],"teamB":[3,5]}`)
		_, err := newTestAISplitter(srv.URL).SplitIntoTeams(context.Background(), players)
		require.ErrorIs(t, err, ErrInvalidTeamSplit)
	})

	t.Run("too few players", func(t *testing.T) {
		_, err := newTestAISplitter("http://127.0.0.1:1").SplitIntoTeams(context.Background(), seedPlayers(3))
		require.ErrorIs(t, err, ErrNotEnoughPlayers)
	})
}

func TestParseAITeams(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		teamA []int
		ok    bool
	}{
		{name: "plain", text: `{"teamA":[1,2],"teamB":[3,4]}`, teamA: []int{1, 2}, ok: true},
		{name: "fenced", text: "```json\n{\"teamA\":[2,1],\"teamB\":[3,4]}\n```", teamA: []int{2, 1}, ok: true},
		{name: "with chatter", text: "Here you go: {\"teamA\":[4,1],\"teamB\":[2,3]} enjoy", teamA: []int{4, 1}, ok: true},
		{name: "no object", text: "[1,2,3,4]"},
		{name: "wrong types", text: `{"teamA":"x","teamB":[3,4]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			teams, err := parseAITeams(tt.text)
			if !tt.ok {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.teamA, teams.TeamA)
		})
	}

	assert.True(t, strings.HasPrefix(buildSplitPrompt(seedPlayers(4)), "Split these badminton players"))
}
