package store

import (
	"context"
	"fmt"

	"github.com/owlcentral/forecast-api/internal/rating"
)

// LoadInitialRatings reads the seed rating table: skill estimates
// carried over from before the recorded history. Players absent from
// the table start at the environment prior, never an error.
func LoadInitialRatings(ctx context.Context, pg PgPool) (map[string]rating.Rating, error) {
	rows, err := pg.Query(ctx, `
		SELECT entity, mu, sigma
		FROM initial_ratings
	`)
	if err != nil {
		return nil, fmt.Errorf("query initial ratings: %w", err)
	}
	defer rows.Close()

	ratings := make(map[string]rating.Rating)
	for rows.Next() {
		var (
			entity    string
			mu, sigma float64
		)
		if err := rows.Scan(&entity, &mu, &sigma); err != nil {
			return nil, fmt.Errorf("scan initial rating: %w", err)
		}
		ratings[entity] = rating.Rating{Mu: mu, Sigma: sigma}
	}
	return ratings, rows.Err()
}
