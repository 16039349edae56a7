package logic

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/owlcentral/forecast-api/internal/models"
	"github.com/owlcentral/forecast-api/internal/predict"
	"github.com/owlcentral/forecast-api/internal/rating"
	"github.com/owlcentral/forecast-api/internal/worker"
)

type MockSource struct {
	Games    []*models.Game
	Matches  []*models.Match
	GamesErr error
}

func (m *MockSource) CompletedGames(ctx context.Context) ([]*models.Game, error) {
	return m.Games, m.GamesErr
}

func (m *MockSource) UpcomingMatches(ctx context.Context) ([]*models.Match, error) {
	return m.Matches, nil
}

type MockRedis struct {
	mu     sync.Mutex
	store  map[string]string
	hits   int
	misses int
	sets   int
}

func NewMockRedis() *MockRedis {
	return &MockRedis{store: make(map[string]string)}
}

func (m *MockRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if val, ok := m.store[key]; ok {
		m.hits++
		return redis.NewStringResult(val, nil)
	}
	m.misses++
	return redis.NewStringResult("", redis.Nil)
}

func (m *MockRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		m.store[key] = string(v)
	case string:
		m.store[key] = v
	}
	m.sets++
	return redis.NewStatusResult("OK", nil)
}

type MockHistoryQueue struct {
	Rows []worker.Row
}

func (m *MockHistoryQueue) Enqueue(row worker.Row) bool {
	m.Rows = append(m.Rows, row)
	return true
}

func (m *MockHistoryQueue) QueueDepth() int { return len(m.Rows) }

func stageGames() []*models.Game {
	return []*models.Game{
		{
			Stage: "Stage 1", MatchID: 1, Format: models.FormatRegular,
			Teams: [2]string{"SEO", "DAL"}, Score: [2]int{1, 0},
		},
		{
			Stage: "Stage 1", MatchID: 2, Format: models.FormatRegular,
			Teams: [2]string{"BOS", "FLA"}, Score: [2]int{0, 1},
		},
	}
}

func stageSchedule() []*models.Match {
	league := models.DefaultLeague()
	teams := league.Teams()
	matches := make([]*models.Match, 0, len(teams)/2)
	for i := 0; i < len(teams); i += 2 {
		matches = append(matches, &models.Match{
			Stage:  "Stage 1",
			Format: models.FormatRegular,
			Teams:  [2]string{teams[i], teams[i+1]},
		})
	}
	return matches
}

func newTestService(source *MockSource, cache RedisClient, history HistoryQueue, engine *predict.Engine) ForecastService {
	return NewForecastService(Config{
		Source:     source,
		Engine:     engine,
		Redis:      cache,
		History:    history,
		Logger:     zap.NewNop(),
		Iterations: 200,
		Shards:     2,
		Seed:       5,
		CacheTTL:   time.Minute,
	})
}

func simpleService(cache RedisClient) ForecastService {
	source := &MockSource{Games: stageGames(), Matches: stageSchedule()}
	engine := predict.NewSimple(models.DefaultLeague(), 0.1, 0.05)
	return newTestService(source, cache, nil, engine)
}

func TestForecastService_NotTrained(t *testing.T) {
	svc := simpleService(nil)
	ctx := context.Background()

	if _, err := svc.StageForecast(ctx); !errors.Is(err, ErrNotTrained) {
		t.Errorf("StageForecast err = %v, want ErrNotTrained", err)
	}
	if _, err := svc.MatchOdds(ctx, "SEO", "DAL", models.FormatRegular); !errors.Is(err, ErrNotTrained) {
		t.Errorf("MatchOdds err = %v, want ErrNotTrained", err)
	}
	if _, err := svc.StageStandings(ctx); !errors.Is(err, ErrNotTrained) {
		t.Errorf("StageStandings err = %v, want ErrNotTrained", err)
	}
	if _, err := svc.TeamRating(ctx, "SEO"); !errors.Is(err, ErrNotTrained) {
		t.Errorf("TeamRating err = %v, want ErrNotTrained", err)
	}
}

func TestForecastService_TrainError(t *testing.T) {
	source := &MockSource{GamesErr: errors.New("clickhouse down")}
	engine := predict.NewSimple(models.DefaultLeague(), 0.1, 0.05)
	svc := newTestService(source, nil, nil, engine)

	if err := svc.Train(context.Background()); err == nil {
		t.Error("expected training error to propagate")
	}
}

func TestForecastService_StageForecastCaching(t *testing.T) {
	cache := NewMockRedis()
	svc := simpleService(cache)
	ctx := context.Background()

	if err := svc.Train(ctx); err != nil {
		t.Fatal(err)
	}
	if svc.Stage() != "Stage 1" {
		t.Errorf("Stage = %q, want Stage 1", svc.Stage())
	}

	first, err := svc.StageForecast(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if first.Iterations != 200 || len(first.Teams) != 12 {
		t.Errorf("forecast = %d iterations, %d teams", first.Iterations, len(first.Teams))
	}
	if cache.sets != 1 || cache.misses != 1 {
		t.Errorf("after first call: sets = %d misses = %d, want 1/1", cache.sets, cache.misses)
	}

	second, err := svc.StageForecast(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if cache.hits != 1 || cache.sets != 1 {
		t.Errorf("after second call: hits = %d sets = %d, want 1/1", cache.hits, cache.sets)
	}
	if second.Iterations != first.Iterations || len(second.Teams) != len(first.Teams) {
		t.Error("cached forecast differs from the simulated one")
	}
}

func TestForecastService_MatchOdds(t *testing.T) {
	svc := simpleService(nil)
	ctx := context.Background()
	if err := svc.Train(ctx); err != nil {
		t.Fatal(err)
	}

	odds, err := svc.MatchOdds(ctx, "SEO", "DAL", models.FormatRegular)
	if err != nil {
		t.Fatal(err)
	}
	if odds.PWin <= 0.5 {
		t.Errorf("PWin = %f, want > 0.5 with SEO ahead on map diff", odds.PWin)
	}

	var mass float64
	for i, sp := range odds.Scores {
		mass += sp.P
		if i > 0 {
			prev := odds.Scores[i-1].Score
			if prev.A > sp.Score.A || (prev.A == sp.Score.A && prev.B >= sp.Score.B) {
				t.Errorf("scores not sorted at %d: %v after %v", i, sp.Score, prev)
			}
		}
	}
	if math.Abs(mass-1.0) > 1e-9 {
		t.Errorf("score mass = %f, want 1", mass)
	}

	if _, err := svc.MatchOdds(ctx, "SEO", "XYZ", models.FormatRegular); err == nil {
		t.Error("expected error for an unknown team")
	}
	if _, err := svc.MatchOdds(ctx, "SEO", "DAL", models.FormatPlayoff); !errors.Is(err, predict.ErrUnsupportedFormat) {
		t.Errorf("err = %v, want ErrUnsupportedFormat", err)
	}
}

func TestForecastService_Standings(t *testing.T) {
	svc := simpleService(nil)
	ctx := context.Background()
	if err := svc.Train(ctx); err != nil {
		t.Fatal(err)
	}

	rows, err := svc.StageStandings(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 12 {
		t.Fatalf("rows = %d, want 12", len(rows))
	}

	season, err := svc.SeasonStandings(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(season) != 12 {
		t.Fatalf("season rows = %d, want 12", len(season))
	}
}

func TestForecastService_TeamRating(t *testing.T) {
	svc := simpleService(nil)
	ctx := context.Background()
	if err := svc.Train(ctx); err != nil {
		t.Fatal(err)
	}

	info, err := svc.TeamRating(ctx, "SEO")
	if err != nil {
		t.Fatal(err)
	}
	if info.Team != "SEO" {
		t.Errorf("Team = %q, want SEO", info.Team)
	}

	if _, err := svc.TeamRating(ctx, "XYZ"); err == nil {
		t.Error("expected error for an unknown team")
	}
}

func TestForecastService_PersistHistory(t *testing.T) {
	games := make([]*models.Game, 0, 2)
	for id := int64(1); id <= 2; id++ {
		fullA := make(models.FullRoster, 7)
		fullB := make(models.FullRoster, 7)
		for i := range fullA {
			fullA[i] = fmt.Sprintf("SEO_p%d", i+1)
			fullB[i] = fmt.Sprintf("DAL_p%d", i+1)
		}
		games = append(games, &models.Game{
			Stage: "Stage 1", MatchID: id, Format: models.FormatRegular,
			Teams:       [2]string{"SEO", "DAL"},
			Score:       [2]int{1, 0},
			Rosters:     [2]models.Roster{models.Roster(fullA[:6]), models.Roster(fullB[:6])},
			FullRosters: [2]models.FullRoster{fullA, fullB},
		})
	}

	source := &MockSource{Games: games, Matches: stageSchedule()}
	engine := predict.NewPlayerTrueSkill(models.DefaultLeague(), rating.DefaultParams(), nil)
	history := &MockHistoryQueue{}
	svc := newTestService(source, nil, history, engine)

	ctx := context.Background()
	if err := svc.Train(ctx); err != nil {
		t.Fatal(err)
	}

	runID, err := svc.PersistHistory(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if runID == uuid.Nil {
		t.Error("run id should not be nil")
	}
	if len(history.Rows) == 0 {
		t.Fatal("no history rows enqueued")
	}
	for _, row := range history.Rows {
		if row.RunID != runID {
			t.Errorf("row run id %s, want %s", row.RunID, runID)
		}
		if row.EnvMu != rating.DefaultParams().Mu {
			t.Errorf("row env mu = %f, want %f", row.EnvMu, rating.DefaultParams().Mu)
		}
	}
}

func TestForecastService_PersistHistoryUnsupportedModel(t *testing.T) {
	source := &MockSource{Games: stageGames(), Matches: stageSchedule()}
	engine := predict.NewSimple(models.DefaultLeague(), 0.1, 0.05)
	svc := newTestService(source, nil, &MockHistoryQueue{}, engine)

	ctx := context.Background()
	if err := svc.Train(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.PersistHistory(ctx); err == nil {
		t.Error("expected error for a model without ratings history")
	}
}
