package handlers

import (
	"context"

	"github.com/google/uuid"

	"github.com/owlcentral/forecast-api/internal/models"
)

// MockForecastService
type MockForecastService struct {
	TrainFunc           func(ctx context.Context) error
	StageForecastFunc   func(ctx context.Context) (*models.StageForecast, error)
	MatchOddsFunc       func(ctx context.Context, team1, team2 string, format models.MatchFormat) (*models.MatchOdds, error)
	StageStandingsFunc  func(ctx context.Context) ([]models.StandingsRow, error)
	SeasonStandingsFunc func(ctx context.Context) ([]models.StandingsRow, error)
	TeamRatingFunc      func(ctx context.Context, team string) (*models.TeamRatingInfo, error)
	PersistHistoryFunc  func(ctx context.Context) (uuid.UUID, error)
	StageFunc           func() string
}

func (m *MockForecastService) Train(ctx context.Context) error {
	if m.TrainFunc != nil {
		return m.TrainFunc(ctx)
	}
	return nil
}

func (m *MockForecastService) StageForecast(ctx context.Context) (*models.StageForecast, error) {
	if m.StageForecastFunc != nil {
		return m.StageForecastFunc(ctx)
	}
	return &models.StageForecast{Stage: "Stage 1"}, nil
}

func (m *MockForecastService) MatchOdds(ctx context.Context, team1, team2 string, format models.MatchFormat) (*models.MatchOdds, error) {
	if m.MatchOddsFunc != nil {
		return m.MatchOddsFunc(ctx, team1, team2, format)
	}
	return &models.MatchOdds{Teams: [2]string{team1, team2}, Format: format}, nil
}

func (m *MockForecastService) StageStandings(ctx context.Context) ([]models.StandingsRow, error) {
	if m.StageStandingsFunc != nil {
		return m.StageStandingsFunc(ctx)
	}
	return nil, nil
}

func (m *MockForecastService) SeasonStandings(ctx context.Context) ([]models.StandingsRow, error) {
	if m.SeasonStandingsFunc != nil {
		return m.SeasonStandingsFunc(ctx)
	}
	return nil, nil
}

func (m *MockForecastService) TeamRating(ctx context.Context, team string) (*models.TeamRatingInfo, error) {
	if m.TeamRatingFunc != nil {
		return m.TeamRatingFunc(ctx, team)
	}
	return &models.TeamRatingInfo{Team: team}, nil
}

func (m *MockForecastService) PersistHistory(ctx context.Context) (uuid.UUID, error) {
	if m.PersistHistoryFunc != nil {
		return m.PersistHistoryFunc(ctx)
	}
	return uuid.New(), nil
}

func (m *MockForecastService) Stage() string {
	if m.StageFunc != nil {
		return m.StageFunc()
	}
	return "Stage 1"
}

// MockPinger
type MockPinger struct {
	Err error
}

func (m *MockPinger) Ping(ctx context.Context) error {
	return m.Err
}
