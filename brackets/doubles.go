package brackets

import (
	"context"
	"math/rand"
	"sort"

	"github.com/Dosada05/badminton-doubles/models"
	"github.com/google/uuid"
)

const maxRepairAttempts = 100

type DoublesGenerator struct{}

func NewDoublesGenerator() FixtureGenerator {
	return &DoublesGenerator{}
}

func (g *DoublesGenerator) GetName() string {
	return "Doubles"
}

// GenerateFixtures builds a doubles schedule where each player plays about
// MatchesPerPlayer times and no pair-vs-pair match-up repeats.
// An empty result is not an error: callers decide what to do with it.
func (g *DoublesGenerator) GenerateFixtures(ctx context.Context, params GenerateFixturesParams) ([]*Fixture, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(params.Seed))
	return ScheduleDoubles(params.TeamA, params.TeamB, params.MatchesPerPlayer, rng), nil
}

// ScheduleDoubles runs the greedy fill, the minimum-participation backfill and
// the balance repair passes over a fresh state. rng drives the candidate
// shuffle and the backfill choice only, so a fixed seed gives the same pairings.
func ScheduleDoubles(teamA, teamB []int, matchesPerPlayer int, rng *rand.Rand) []*Fixture {
	if len(teamA) < 2 || len(teamB) < 2 || matchesPerPlayer < 1 {
		return []*Fixture{}
	}

	s := newDoublesScheduler(teamA, teamB, matchesPerPlayer, rng)
	s.greedyFill()
	s.backfill()
	s.repairBalance()
	return s.fixtures
}

type doublesScheduler struct {
	rng *rand.Rand

	teamA, teamB   []int
	inTeamA        map[int]bool
	position       map[int]int
	pairsA, pairsB []Pair

	target   int
	hardCap  int
	maxTotal int

	counts   map[int]int
	used     map[comboKey]struct{}
	fixtures []*Fixture
}

func newDoublesScheduler(teamA, teamB []int, matchesPerPlayer int, rng *rand.Rand) *doublesScheduler {
	s := &doublesScheduler{
		rng:      rng,
		teamA:    append([]int(nil), teamA...),
		teamB:    append([]int(nil), teamB...),
		inTeamA:  make(map[int]bool, len(teamA)),
		position: make(map[int]int, len(teamA)+len(teamB)),
		counts:   make(map[int]int, len(teamA)+len(teamB)),
		used:     make(map[comboKey]struct{}),
		fixtures: make([]*Fixture, 0),
	}
	for i, p := range s.roster() {
		s.position[p] = i
		s.counts[p] = 0
	}
	for _, p := range s.teamA {
		s.inTeamA[p] = true
	}
	s.pairsA = pairsOf(s.teamA)
	s.pairsB = pairsOf(s.teamB)

	players := len(s.teamA) + len(s.teamB)
	s.target = min(matchesPerPlayer, 2*players)
	s.hardCap = s.target + 1
	s.maxTotal = min(len(s.pairsA)*len(s.pairsB), s.target*players/2)
	return s
}

func pairsOf(team []int) []Pair {
	pairs := make([]Pair, 0, len(team)*(len(team)-1)/2)
	for i := 0; i < len(team); i++ {
		for j := i + 1; j < len(team); j++ {
			pairs = append(pairs, Pair{team[i], team[j]})
		}
	}
	return pairs
}

// roster is team A followed by team B. It fixes the iteration order of the
// backfill and repair passes.
func (s *doublesScheduler) roster() []int {
	all := make([]int, 0, len(s.teamA)+len(s.teamB))
	all = append(all, s.teamA...)
	return append(all, s.teamB...)
}

type candidate struct {
	pairA, pairB Pair
	key          comboKey
	minCount     int
	sumCount     int
}

func (s *doublesScheduler) greedyFill() {
	pool := make([]*candidate, 0, len(s.pairsA)*len(s.pairsB))
	for _, a := range s.pairsA {
		for _, b := range s.pairsB {
			pool = append(pool, &candidate{pairA: a, pairB: b, key: newComboKey(a, b)})
		}
	}
	s.rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})

	for len(s.fixtures) < s.maxTotal {
		for _, c := range pool {
			c.minCount, c.sumCount = s.rank(c.pairA, c.pairB)
		}
		sort.SliceStable(pool, func(i, j int) bool {
			if pool[i].minCount != pool[j].minCount {
				return pool[i].minCount < pool[j].minCount
			}
			return pool[i].sumCount < pool[j].sumCount
		})

		picked := -1
		for i, c := range pool {
			if s.belowCap(c.pairA, s.hardCap) && s.belowCap(c.pairB, s.hardCap) && !s.isUsed(c.key) {
				picked = i
				break
			}
		}
		if picked < 0 {
			return
		}
		s.commit(pool[picked].pairA, pool[picked].pairB)
		pool = append(pool[:picked], pool[picked+1:]...)
	}
}

func (s *doublesScheduler) rank(a, b Pair) (lo, sum int) {
	lo = s.counts[a[0]]
	for _, p := range [4]int{a[0], a[1], b[0], b[1]} {
		c := s.counts[p]
		lo = min(lo, c)
		sum += c
	}
	return lo, sum
}

// backfill gives every under-served player one more match if an opposing
// pair without maxed-out players and with an unused match-up exists.
func (s *doublesScheduler) backfill() {
	threshold := max(1, s.target-1)
	for _, p := range s.roster() {
		if s.counts[p] >= threshold {
			continue
		}
		ownPair, ok := s.backfillPair(p)
		if !ok {
			continue
		}

		eligible := make([]Pair, 0)
		for _, opp := range s.opposingPairs(p) {
			if !s.belowCap(opp, s.hardCap) {
				continue
			}
			if s.isUsed(s.keyFor(p, ownPair, opp)) {
				continue
			}
			eligible = append(eligible, opp)
		}
		if len(eligible) == 0 {
			continue
		}
		s.commitFor(p, ownPair, eligible[s.rng.Intn(len(eligible))])
	}
}

// backfillPair picks the pair of p with the least-played partner still under the hard cap.
func (s *doublesScheduler) backfillPair(p int) (Pair, bool) {
	var best Pair
	found := false
	for _, pair := range s.ownPairs(p) {
		if !pair.Has(p) {
			continue
		}
		partner := partnerOf(pair, p)
		if s.counts[partner] >= s.hardCap {
			continue
		}
		if !found || s.counts[partner] < s.counts[partnerOf(best, p)] {
			best = pair
			found = true
		}
	}
	return best, found
}

func partnerOf(pair Pair, p int) int {
	if pair[0] == p {
		return pair[1]
	}
	return pair[0]
}

// repairBalance narrows the participation spread to at most one. Opponents at
// the current max are allowed so the pass can make progress, but nobody is
// ever pushed past the hard cap.
func (s *doublesScheduler) repairBalance() {
	for attempt := 0; attempt < maxRepairAttempts; attempt++ {
		lo, hi := ParticipationSpread(s.counts, s.roster())
		if hi-lo <= 1 {
			return
		}
		if !s.repairOnce(lo, hi) {
			return
		}
	}
}

func (s *doublesScheduler) repairOnce(lo, hi int) bool {
	for _, p := range s.roster() {
		if s.counts[p] != lo {
			continue
		}
		partner, ok := s.lowestTeammate(p, hi)
		if !ok {
			continue
		}
		own := s.pairOf(p, partner)

		opponents := make([]Pair, 0)
		for _, opp := range s.opposingPairs(p) {
			if s.counts[opp[0]] > hi || s.counts[opp[1]] > hi {
				continue
			}
			if !s.belowCap(opp, s.hardCap) {
				continue
			}
			opponents = append(opponents, opp)
		}
		sort.SliceStable(opponents, func(i, j int) bool {
			return s.counts[opponents[i][0]]+s.counts[opponents[i][1]] <
				s.counts[opponents[j][0]]+s.counts[opponents[j][1]]
		})

		for _, opp := range opponents {
			if s.isUsed(s.keyFor(p, own, opp)) {
				continue
			}
			s.commitFor(p, own, opp)
			return true
		}
	}
	return false
}

func (s *doublesScheduler) lowestTeammate(p, hi int) (int, bool) {
	team := s.teamB
	if s.inTeamA[p] {
		team = s.teamA
	}
	best, found := 0, false
	for _, q := range team {
		if q == p || s.counts[q] >= hi || s.counts[q] >= s.hardCap {
			continue
		}
		if !found || s.counts[q] < s.counts[best] {
			best = q
			found = true
		}
	}
	return best, found
}

// pairOf orders the two members the same way pairsOf does.
func (s *doublesScheduler) pairOf(x, y int) Pair {
	if s.position[x] > s.position[y] {
		return Pair{y, x}
	}
	return Pair{x, y}
}

func (s *doublesScheduler) ownPairs(p int) []Pair {
	if s.inTeamA[p] {
		return s.pairsA
	}
	return s.pairsB
}

func (s *doublesScheduler) opposingPairs(p int) []Pair {
	if s.inTeamA[p] {
		return s.pairsB
	}
	return s.pairsA
}

func (s *doublesScheduler) belowCap(pair Pair, limit int) bool {
	return s.counts[pair[0]] < limit && s.counts[pair[1]] < limit
}

func (s *doublesScheduler) isUsed(key comboKey) bool {
	_, ok := s.used[key]
	return ok
}

// keyFor and commitFor take p's own pair first and put it on the correct side.
func (s *doublesScheduler) keyFor(p int, own, opp Pair) comboKey {
	if s.inTeamA[p] {
		return newComboKey(own, opp)
	}
	return newComboKey(opp, own)
}

func (s *doublesScheduler) commitFor(p int, own, opp Pair) {
	if s.inTeamA[p] {
		s.commit(own, opp)
		return
	}
	s.commit(opp, own)
}

func (s *doublesScheduler) commit(pairA, pairB Pair) {
	s.used[newComboKey(pairA, pairB)] = struct{}{}
	for _, p := range [4]int{pairA[0], pairA[1], pairB[0], pairB[1]} {
		s.counts[p]++
	}
	s.fixtures = append(s.fixtures, &Fixture{
		ID:     uuid.NewString(),
		TeamA:  pairA,
		TeamB:  pairB,
		Status: models.MatchStatusPending,
	})
}
