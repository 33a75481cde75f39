package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/Dosada05/badminton-doubles/brackets"
	"github.com/Dosada05/badminton-doubles/models"
	"github.com/Dosada05/badminton-doubles/repositories"
	"github.com/Dosada05/badminton-doubles/storage"
)

// In-memory doubles of the repository interfaces used by the service tests.

type fakePlayerRepo struct {
	mu      sync.Mutex
	players map[int]*models.Player
	nextID  int
	inUse   map[int]bool
	listErr error
}

func newFakePlayerRepo(players ...models.Player) *fakePlayerRepo {
	r := &fakePlayerRepo{players: map[int]*models.Player{}, inUse: map[int]bool{}}
	for _, p := range players {
		p := p
		r.players[p.ID] = &p
		if p.ID > r.nextID {
			r.nextID = p.ID
		}
	}
	return r
}

func seedPlayers(n int) []models.Player {
	players := make([]models.Player, n)
	for i := range players {
		players[i] = models.Player{ID: i + 1, Name: fmt.Sprintf("Player %02d", i+1), SkillLevel: 1 + i%10}
	}
	return players
}

func (r *fakePlayerRepo) nameTaken(name string, exceptID int) bool {
	for id, p := range r.players {
		if id != exceptID && p.Name == name {
			return true
		}
	}
	return false
}

func (r *fakePlayerRepo) Create(ctx context.Context, player *models.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.nameTaken(player.Name, 0) {
		return repositories.ErrPlayerNameConflict
	}
	r.nextID++
	player.ID = r.nextID
	player.CreatedAt = time.Now()
	cp := *player
	r.players[player.ID] = &cp
	return nil
}

func (r *fakePlayerRepo) GetByID(ctx context.Context, id int) (*models.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[id]
	if !ok {
		return nil, repositories.ErrPlayerNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakePlayerRepo) GetByIDs(ctx context.Context, ids []int) ([]models.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Player, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.players[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakePlayerRepo) List(ctx context.Context) ([]models.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]models.Player, 0, len(r.players))
	for _, p := range r.players {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakePlayerRepo) Update(ctx context.Context, player *models.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.players[player.ID]; !ok {
		return repositories.ErrPlayerNotFound
	}
	if r.nameTaken(player.Name, player.ID) {
		return repositories.ErrPlayerNameConflict
	}
	cp := *player
	r.players[player.ID] = &cp
	return nil
}

func (r *fakePlayerRepo) UpdateAvatarKey(ctx context.Context, id int, avatarKey *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[id]
	if !ok {
		return repositories.ErrPlayerNotFound
	}
	p.AvatarKey = avatarKey
	return nil
}

func (r *fakePlayerRepo) Delete(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.players[id]; !ok {
		return repositories.ErrPlayerNotFound
	}
	if r.inUse[id] {
		return repositories.ErrPlayerInUse
	}
	delete(r.players, id)
	return nil
}

func (r *fakePlayerRepo) Count(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players), nil
}

type fakeTournamentRepo struct {
	mu          sync.Mutex
	tournaments map[int]*models.Tournament
	nextID      int
	createErr   error
}

func newFakeTournamentRepo() *fakeTournamentRepo {
	return &fakeTournamentRepo{tournaments: map[int]*models.Tournament{}}
}

func (r *fakeTournamentRepo) Create(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.nextID++
	t.ID = r.nextID
	t.CreatedAt = time.Now()
	cp := *t
	r.tournaments[t.ID] = &cp
	return nil
}

func (r *fakeTournamentRepo) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	cp := *t
	cp.Matches = nil
	return &cp, nil
}

func (r *fakeTournamentRepo) List(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Tournament, 0, len(r.tournaments))
	for _, t := range r.tournaments {
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if filter.Offset >= len(out) {
		return []models.Tournament{}, nil
	}
	out = out[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *fakeTournamentRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, id int, status models.TournamentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Status = status
	return nil
}

func (r *fakeTournamentRepo) UpdateSeed(ctx context.Context, exec repositories.SQLExecutor, id int, seed int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Seed = seed
	return nil
}

func (r *fakeTournamentRepo) Delete(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tournaments[id]; !ok {
		return repositories.ErrTournamentNotFound
	}
	delete(r.tournaments, id)
	return nil
}

func (r *fakeTournamentRepo) Count(ctx context.Context, status *models.TournamentStatus) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, t := range r.tournaments {
		if status == nil || t.Status == *status {
			n++
		}
	}
	return n, nil
}

func (r *fakeTournamentRepo) status(id int) models.TournamentStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tournaments[id].Status
}

type fakeMatchRepo struct {
	mu      sync.Mutex
	matches map[string]*models.Match
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{matches: map[string]*models.Match{}}
}

func (r *fakeMatchRepo) CreateBatch(ctx context.Context, exec repositories.SQLExecutor, matches []*models.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range matches {
		cp := *m
		r.matches[m.ID] = &cp
	}
	return nil
}

func (r *fakeMatchRepo) GetByID(ctx context.Context, id string) (*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *fakeMatchRepo) collect(keep func(m *models.Match) bool) []*models.Match {
	out := make([]*models.Match, 0)
	for _, m := range r.matches {
		if keep(m) {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TournamentID != out[j].TournamentID {
			return out[i].TournamentID < out[j].TournamentID
		}
		return out[i].Position < out[j].Position
	})
	return out
}

func (r *fakeMatchRepo) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.collect(func(m *models.Match) bool { return m.TournamentID == tournamentID }), nil
}

func (r *fakeMatchRepo) ListCompleted(ctx context.Context) ([]*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.collect(func(m *models.Match) bool { return m.IsCompleted() }), nil
}

func (r *fakeMatchRepo) UpdateScore(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.matches[match.ID]; !ok {
		return repositories.ErrMatchNotFound
	}
	cp := *match
	r.matches[match.ID] = &cp
	return nil
}

func (r *fakeMatchRepo) DeleteByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, m := range r.matches {
		if m.TournamentID == tournamentID {
			delete(r.matches, id)
		}
	}
	return nil
}

func (r *fakeMatchRepo) CountPending(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, m := range r.matches {
		if m.TournamentID == tournamentID && !m.IsCompleted() {
			n++
		}
	}
	return n, nil
}

func (r *fakeMatchRepo) Count(ctx context.Context, status *models.MatchStatus) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, m := range r.matches {
		if status == nil || m.Status == *status {
			n++
		}
	}
	return n, nil
}

type fakeTransactor struct {
	calls int
}

func (t *fakeTransactor) WithinTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	t.calls++
	return fn(nil)
}

type sentMessage struct {
	room string
	msg  brackets.WebSocketMessage
}

type fakeBroadcaster struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (b *fakeBroadcaster) BroadcastToRoom(roomID string, message interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	msg, _ := message.(brackets.WebSocketMessage)
	b.sent = append(b.sent, sentMessage{room: roomID, msg: msg})
}

func (b *fakeBroadcaster) types(room string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []string
	for _, s := range b.sent {
		if s.room == room {
			out = append(out, s.msg.Type)
		}
	}
	return out
}

type fakeUploader struct {
	mu        sync.Mutex
	objects   map[string][]byte
	deleted   []string
	uploadErr error
}

func newFakeUploader() *fakeUploader {
	return &fakeUploader{objects: map[string][]byte{}}
}

func (u *fakeUploader) Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	if u.uploadErr != nil {
		return nil, u.uploadErr
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.objects[key] = data
	return &storage.UploadResult{Key: key, Location: u.GetPublicURL(key)}, nil
}

func (u *fakeUploader) Delete(ctx context.Context, key string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.objects, key)
	u.deleted = append(u.deleted, key)
	return nil
}

func (u *fakeUploader) GetPublicURL(key string) string {
	return "https://cdn.test/" + key
}

// fixedSplitter returns a predetermined split or error.
type fixedSplitter struct {
	split *TeamSplit
	err   error
	calls int
}

func (s *fixedSplitter) SplitIntoTeams(ctx context.Context, players []models.Player) (*TeamSplit, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.split, nil
}

// halvesSplitter puts the first half of the roster (rounded up) in team A.
type halvesSplitter struct{}

func (halvesSplitter) SplitIntoTeams(ctx context.Context, players []models.Player) (*TeamSplit, error) {
	ids := playerIDs(players)
	half := (len(ids) + 1) / 2
	return &TeamSplit{TeamA: ids[:half], TeamB: ids[half:], Method: models.SplitMethodRandom}, nil
}

type emptyGenerator struct{}

func (emptyGenerator) GenerateFixtures(ctx context.Context, params brackets.GenerateFixturesParams) ([]*brackets.Fixture, error) {
	return []*brackets.Fixture{}, nil
}

func (emptyGenerator) GetName() string { return "Empty" }

var errFakeBackend = errors.New("backend unavailable")

func intPtr(v int) *int { return &v }

func int64Ptr(v int64) *int64 { return &v }

func strPtr(v string) *string { return &v }
