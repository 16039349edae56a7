// Package store provides the external data collaborators of the
// forecast core: the game/match history source (ClickHouse) and the
// seed-ratings table (Postgres). The core only sees ordered, fully
// typed feeds; all parsing lives here.
package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/owlcentral/forecast-api/internal/models"
)

// GameSource yields the chronological history of completed games and
// the schedule of upcoming matches.
type GameSource interface {
	CompletedGames(ctx context.Context) ([]*models.Game, error)
	UpcomingMatches(ctx context.Context) ([]*models.Match, error)
}

// PgPool is the subset of the pgx pool the store needs.
type PgPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}
