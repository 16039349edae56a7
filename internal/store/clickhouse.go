package store

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/owlcentral/forecast-api/internal/models"
)

// ClickHouseSource reads game history from the stats warehouse.
type ClickHouseSource struct {
	ch driver.Conn
}

// NewClickHouseSource wraps a ClickHouse connection as a GameSource.
func NewClickHouseSource(ch driver.Conn) *ClickHouseSource {
	return &ClickHouseSource{ch: ch}
}

// CompletedGames returns every recorded game in chronological order.
func (s *ClickHouseSource) CompletedGames(ctx context.Context) ([]*models.Game, error) {
	rows, err := s.ch.Query(ctx, `
		SELECT
			stage, match_id, match_format,
			team1, team2, score1, score2, drawable,
			roster1, roster2, full_roster1, full_roster2
		FROM league_stats.games
		ORDER BY played_at, game_number
	`)
	if err != nil {
		return nil, fmt.Errorf("query completed games: %w", err)
	}
	defer rows.Close()

	var games []*models.Game
	for rows.Next() {
		var (
			g                        models.Game
			format                   string
			score1, score2           int32
			roster1, roster2         []string
			fullRoster1, fullRoster2 []string
		)
		if err := rows.Scan(
			&g.Stage, &g.MatchID, &format,
			&g.Teams[0], &g.Teams[1], &score1, &score2, &g.Drawable,
			&roster1, &roster2, &fullRoster1, &fullRoster2,
		); err != nil {
			return nil, fmt.Errorf("scan game row: %w", err)
		}

		g.Format = models.MatchFormat(format)
		g.Score = [2]int{int(score1), int(score2)}
		g.Rosters = [2]models.Roster{roster1, roster2}
		g.FullRosters = [2]models.FullRoster{fullRoster1, fullRoster2}
		games = append(games, &g)
	}
	return games, rows.Err()
}

// UpcomingMatches returns the scheduled matches in start order.
func (s *ClickHouseSource) UpcomingMatches(ctx context.Context) ([]*models.Match, error) {
	rows, err := s.ch.Query(ctx, `
		SELECT
			stage, match_format, team1, team2,
			full_roster1, full_roster2
		FROM league_stats.schedule
		ORDER BY starts_at
	`)
	if err != nil {
		return nil, fmt.Errorf("query schedule: %w", err)
	}
	defer rows.Close()

	var matches []*models.Match
	for rows.Next() {
		var (
			m                        models.Match
			format                   string
			fullRoster1, fullRoster2 []string
		)
		if err := rows.Scan(
			&m.Stage, &format, &m.Teams[0], &m.Teams[1],
			&fullRoster1, &fullRoster2,
		); err != nil {
			return nil, fmt.Errorf("scan schedule row: %w", err)
		}

		m.Format = models.MatchFormat(format)
		m.FullRosters = [2]models.FullRoster{fullRoster1, fullRoster2}
		matches = append(matches, &m)
	}
	return matches, rows.Err()
}
