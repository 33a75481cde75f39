package brackets

import (
	"context"
)

type GenerateFixturesParams struct {
	TeamA            []int
	TeamB            []int
	MatchesPerPlayer int
	Seed             int64
}

// FixtureGenerator строит расписание матчей для двух уже разделённых команд.
type FixtureGenerator interface {
	GenerateFixtures(ctx context.Context, params GenerateFixturesParams) ([]*Fixture, error)

	GetName() string
}
