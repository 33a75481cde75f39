package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Dosada05/badminton-doubles/models"
)

var errEmptyAIResponse = errors.New("ai response contains no text")

type AITeamSplitterConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// AITeamSplitter asks a generateContent-compatible model to balance the two teams by skill.
type AITeamSplitter struct {
	cfg        AITeamSplitterConfig
	httpClient *http.Client
}

func NewAITeamSplitter(cfg AITeamSplitterConfig) *AITeamSplitter {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &AITeamSplitter{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type aiPart struct {
	Text string `json:"text"`
}

type aiContent struct {
	Role  string   `json:"role,omitempty"`
	Parts []aiPart `json:"parts"`
}

type aiGenerationConfig struct {
	Temperature      float64 `json:"temperature"`
	ResponseMIMEType string  `json:"responseMimeType"`
}

type aiRequest struct {
	Contents         []aiContent        `json:"contents"`
	GenerationConfig aiGenerationConfig `json:"generationConfig"`
}

type aiResponse struct {
	Candidates []struct {
		Content aiContent `json:"content"`
	} `json:"candidates"`
}

type aiTeams struct {
	TeamA []int `json:"teamA"`
	TeamB []int `json:"teamB"`
}

func buildSplitPrompt(players []models.Player) string {
	var sb strings.Builder
	sb.WriteString("Split these badminton players into two teams for a doubles tournament. ")
	sb.WriteString("Balance the total skill of the teams. Team sizes may differ by at most one. ")
	sb.WriteString("Every player must be in exactly one team. ")
	sb.WriteString(`Answer with JSON only: {"teamA": [ids], "teamB": [ids]}.`)
	sb.WriteString("\n\nPlayers (id, name, skill 1-10):\n")
	for _, p := range players {
		fmt.Fprintf(&sb, "- %d, %s, %d\n", p.ID, p.Name, p.SkillLevel)
	}
	return sb.String()
}

func (s *AITeamSplitter) SplitIntoTeams(ctx context.Context, players []models.Player) (*TeamSplit, error) {
	if len(players) < 4 {
		return nil, ErrNotEnoughPlayers
	}

	text, err := s.generate(ctx, buildSplitPrompt(players))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTeamSplitFailed, err)
	}

	teams, err := parseAITeams(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTeamSplitFailed, err)
	}

	split := &TeamSplit{TeamA: teams.TeamA, TeamB: teams.TeamB, Method: models.SplitMethodAI}
	if err := ValidateSplit(players, split); err != nil {
		return nil, err
	}
	return split, nil
}

func (s *AITeamSplitter) generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(aiRequest{
		Contents:         []aiContent{{Role: "user", Parts: []aiPart{{Text: prompt}}}},
		GenerationConfig: aiGenerationConfig{Temperature: 0.2, ResponseMIMEType: "application/json"},
	})
	if err != nil {
		return "", err
	}

	endpoint := strings.TrimRight(s.cfg.BaseURL, "/") + "/models/" + url.PathEscape(s.cfg.Model) + ":generateContent"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", s.cfg.APIKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("ai api status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var out aiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode ai response: %w", err)
	}
	for _, c := range out.Candidates {
		for _, part := range c.Content.Parts {
			if strings.TrimSpace(part.Text) != "" {
				return part.Text, nil
			}
		}
	}
	return "", errEmptyAIResponse
}

// parseAITeams extracts the teams object, tolerating markdown code fences around it.
func parseAITeams(text string) (*aiTeams, error) {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start < 0 || end < start {
		return nil, fmt.Errorf("no JSON object in ai response")
	}

	var teams aiTeams
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &teams); err != nil {
		return nil, fmt.Errorf("parse ai teams: %w", err)
	}
	return &teams, nil
}
