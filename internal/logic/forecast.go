package logic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/owlcentral/forecast-api/internal/models"
	"github.com/owlcentral/forecast-api/internal/predict"
	"github.com/owlcentral/forecast-api/internal/store"
	"github.com/owlcentral/forecast-api/internal/worker"
)

// Prometheus metrics
var (
	gamesTrained = promauto.NewCounter(prometheus.CounterOpts{
		Name: "forecast_games_trained_total",
		Help: "Total number of completed games folded into the model",
	})

	simulationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "forecast_stage_simulation_duration_seconds",
		Help:    "Duration of stage Monte Carlo simulations",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	})

	forecastCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "forecast_cache_hits_total",
		Help: "Stage forecasts served from cache",
	})
)

// ErrNotTrained is returned when a forecast is requested before the
// engine has been trained on the game history.
var ErrNotTrained = errors.New("model not trained")

// ForecastService is the train-then-predict orchestration surface.
type ForecastService interface {
	// Train streams the completed game history through the engine once,
	// in chronological order, and loads the upcoming schedule.
	Train(ctx context.Context) error

	// StageForecast simulates the rest of the current stage.
	StageForecast(ctx context.Context) (*models.StageForecast, error)

	// MatchOdds predicts one upcoming match between two teams.
	MatchOdds(ctx context.Context, team1, team2 string, format models.MatchFormat) (*models.MatchOdds, error)

	StageStandings(ctx context.Context) ([]models.StandingsRow, error)
	SeasonStandings(ctx context.Context) ([]models.StandingsRow, error)
	TeamRating(ctx context.Context, team string) (*models.TeamRatingInfo, error)

	// PersistHistory enqueues the ratings history for persistence and
	// returns the run id.
	PersistHistory(ctx context.Context) (uuid.UUID, error)

	Stage() string
}

// Config configures the forecast service.
type Config struct {
	Source     store.GameSource
	Engine     *predict.Engine
	Redis      RedisClient
	History    HistoryQueue
	Logger     *zap.Logger
	Iterations int
	Shards     int
	Seed       int64
	CacheTTL   time.Duration
}

type forecastService struct {
	source     store.GameSource
	engine     *predict.Engine
	redis      RedisClient
	history    HistoryQueue
	logger     *zap.SugaredLogger
	iterations int
	shards     int
	seed       int64
	cacheTTL   time.Duration

	// The engine is single-writer: Train holds the write lock, all
	// forecasts only read.
	mu       sync.RWMutex
	trained  bool
	upcoming []*models.Match
}

// NewForecastService wires the engine to its collaborators.
func NewForecastService(cfg Config) ForecastService {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 10 * time.Minute
	}
	return &forecastService{
		source:     cfg.Source,
		engine:     cfg.Engine,
		redis:      cfg.Redis,
		history:    cfg.History,
		logger:     cfg.Logger.Sugar(),
		iterations: cfg.Iterations,
		shards:     cfg.Shards,
		seed:       cfg.Seed,
		cacheTTL:   cfg.CacheTTL,
	}
}

func (s *forecastService) Train(ctx context.Context) error {
	games, err := s.source.CompletedGames(ctx)
	if err != nil {
		return fmt.Errorf("load games: %w", err)
	}
	upcoming, err := s.source.UpcomingMatches(ctx)
	if err != nil {
		return fmt.Errorf("load schedule: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	totalPoint, err := s.engine.TrainGames(games)
	if err != nil {
		return fmt.Errorf("train: %w", err)
	}
	gamesTrained.Add(float64(len(games)))

	s.upcoming = upcoming
	s.trained = true

	avgPoint := 0.0
	if len(games) > 0 {
		avgPoint = totalPoint / float64(len(games))
	}
	s.logger.Infow("Training complete",
		"games", len(games),
		"upcoming", len(upcoming),
		"stage", s.engine.Stage(),
		"avgPoint", avgPoint,
		"accuracy", s.engine.Accuracy(),
		"duration", time.Since(start),
	)
	return nil
}

func (s *forecastService) Stage() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine.BaseStage()
}

func (s *forecastService) StageForecast(ctx context.Context) (*models.StageForecast, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.trained {
		return nil, ErrNotTrained
	}

	cacheKey := "forecast:stage:" + s.engine.Stage()
	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, cacheKey).Result(); err == nil {
			var forecast models.StageForecast
			if err := json.Unmarshal([]byte(cached), &forecast); err == nil {
				forecastCacheHits.Inc()
				return &forecast, nil
			}
		}
	}

	seed := s.seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	start := time.Now()
	forecast, err := s.engine.SimulateStage(s.upcoming, predict.SimOptions{
		Iterations: s.iterations,
		Shards:     s.shards,
		Seed:       seed,
	})
	if err != nil {
		return nil, fmt.Errorf("simulate stage: %w", err)
	}
	simulationDuration.Observe(time.Since(start).Seconds())

	if s.redis != nil {
		if payload, err := json.Marshal(forecast); err == nil {
			if err := s.redis.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warnw("Failed to cache stage forecast", "error", err)
			}
		}
	}
	return forecast, nil
}

func (s *forecastService) MatchOdds(ctx context.Context, team1, team2 string, format models.MatchFormat) (*models.MatchOdds, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.trained {
		return nil, ErrNotTrained
	}
	if !s.engine.League().Contains(team1) || !s.engine.League().Contains(team2) {
		return nil, fmt.Errorf("unknown team in pairing %s vs %s", team1, team2)
	}

	m := &models.Match{
		Format: format,
		Teams:  [2]string{team1, team2},
	}
	pScores, err := s.engine.MatchScores(m)
	if err != nil {
		return nil, err
	}

	odds := &models.MatchOdds{
		Teams:  m.Teams,
		Format: format,
	}
	for sc, p := range pScores {
		if sc.A > sc.B {
			odds.PWin += p
		}
		odds.ExpectedDiff += p * float64(sc.A-sc.B)
		odds.Scores = append(odds.Scores, models.ScoreProb{Score: sc, P: p})
	}
	sort.Slice(odds.Scores, func(i, j int) bool {
		if odds.Scores[i].Score.A != odds.Scores[j].Score.A {
			return odds.Scores[i].Score.A < odds.Scores[j].Score.A
		}
		return odds.Scores[i].Score.B < odds.Scores[j].Score.B
	})
	return odds, nil
}

func (s *forecastService) StageStandings(ctx context.Context) ([]models.StandingsRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.trained {
		return nil, ErrNotTrained
	}
	return s.engine.StageStandings(), nil
}

func (s *forecastService) SeasonStandings(ctx context.Context) ([]models.StandingsRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.trained {
		return nil, ErrNotTrained
	}
	return s.engine.SeasonStandings(), nil
}

func (s *forecastService) TeamRating(ctx context.Context, team string) (*models.TeamRatingInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.trained {
		return nil, ErrNotTrained
	}
	if !s.engine.League().Contains(team) {
		return nil, fmt.Errorf("unknown team %q", team)
	}

	r := s.engine.TeamRating(team)
	info := &models.TeamRatingInfo{
		Team:         team,
		Mu:           r.Mu,
		Sigma:        r.Sigma,
		Conservative: r.Conservative(),
	}
	if rosters := s.engine.BestRosters(); rosters != nil {
		info.BestRoster = rosters[team]
	}
	return info, nil
}

func (s *forecastService) PersistHistory(ctx context.Context) (uuid.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.trained {
		return uuid.Nil, ErrNotTrained
	}
	if s.history == nil {
		return uuid.Nil, errors.New("no history writer configured")
	}

	entries, scale, ok := s.engine.History()
	if !ok {
		return uuid.Nil, errors.New("model does not record ratings history")
	}

	runID := uuid.New()
	var queued int
	for _, entry := range entries {
		entities := make([]string, 0, len(entry.Ratings))
		for entity := range entry.Ratings {
			entities = append(entities, entity)
		}
		sort.Strings(entities)

		for _, entity := range entities {
			r := entry.Ratings[entity]
			if s.history.Enqueue(worker.Row{
				RunID:       runID,
				Stage:       entry.Key.Stage,
				MatchNumber: entry.Key.MatchNumber,
				Entity:      entity,
				Mu:          r.Mu,
				Sigma:       r.Sigma,
				EnvMu:       scale.Mu,
				EnvSigma:    scale.Sigma,
			}) {
				queued++
			}
		}
	}

	s.logger.Infow("Ratings history queued", "run", runID, "rows", queued)
	return runID, nil
}
