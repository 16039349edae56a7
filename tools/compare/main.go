package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"github.com/ClickHouse/clickhouse-go/v2"

	"github.com/owlcentral/forecast-api/internal/models"
	"github.com/owlcentral/forecast-api/internal/predict"
	"github.com/owlcentral/forecast-api/internal/rating"
	"github.com/owlcentral/forecast-api/internal/store"
)

// Trains each rating model on the same game history and prints the
// average prediction point and accuracy side by side.
func main() {
	ctx := context.Background()

	chURL := os.Getenv("CLICKHOUSE_URL")
	if chURL == "" {
		log.Fatal("CLICKHOUSE_URL is required")
	}
	chOpts, err := clickhouse.ParseDSN(chURL)
	if err != nil {
		log.Fatal(err)
	}
	conn, err := clickhouse.Open(chOpts)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	games, err := store.NewClickHouseSource(conn).CompletedGames(ctx)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("comparing on %d games\n\n", len(games))

	league := models.DefaultLeague()
	engines := []struct {
		name   string
		engine *predict.Engine
	}{
		{"simple", predict.NewSimple(league, 0.1, 0.05)},
		{"team trueskill", predict.NewTrueSkill(league, rating.DefaultParams())},
		{"player trueskill", predict.NewPlayerTrueSkill(league, rating.DefaultParams(), nil)},
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "model\tavg point\taccuracy\tdraws expected/real")
	for _, it := range engines {
		total, err := it.engine.TrainGames(games)
		if err != nil {
			log.Fatalf("%s: %v", it.name, err)
		}
		avg := 0.0
		if len(games) > 0 {
			avg = total / float64(len(games))
		}
		expected, real := it.engine.DrawCalibration()
		fmt.Fprintf(w, "%s\t%.4f\t%.1f%%\t%.1f/%.0f\n",
			it.name, avg, 100.0*it.engine.Accuracy(), expected, real)
	}
	w.Flush()
}
