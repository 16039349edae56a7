package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/owlcentral/forecast-api/internal/models"
	"github.com/owlcentral/forecast-api/internal/predict"
	"github.com/owlcentral/forecast-api/internal/rating"
	"github.com/owlcentral/forecast-api/internal/store"
)

// One-shot forecast run: train on the full game history, print the
// standings and the simulated stage forecast to stdout.
func main() {
	var (
		iterations = flag.Int("iterations", 100000, "Monte Carlo iterations")
		shards     = flag.Int("shards", 8, "simulation shards")
		seed       = flag.Int64("seed", 1, "simulation seed")
		model      = flag.String("model", "player", "rating model: simple, team or player")
	)
	flag.Parse()

	ctx := context.Background()

	chURL := os.Getenv("CLICKHOUSE_URL")
	if chURL == "" {
		log.Fatal("CLICKHOUSE_URL is required")
	}
	chOpts, err := clickhouse.ParseDSN(chURL)
	if err != nil {
		log.Fatalf("parse clickhouse url: %v", err)
	}
	conn, err := clickhouse.Open(chOpts)
	if err != nil {
		log.Fatalf("connect clickhouse: %v", err)
	}
	defer conn.Close()

	// Seed ratings are optional for the CLI.
	seedRatings := map[string]rating.Rating{}
	if pgURL := os.Getenv("POSTGRES_URL"); pgURL != "" {
		pg, err := pgxpool.New(ctx, pgURL)
		if err != nil {
			log.Fatalf("connect postgres: %v", err)
		}
		defer pg.Close()
		if seedRatings, err = store.LoadInitialRatings(ctx, pg); err != nil {
			log.Fatalf("load initial ratings: %v", err)
		}
	}

	league := models.DefaultLeague()
	var engine *predict.Engine
	switch *model {
	case "simple":
		engine = predict.NewSimple(league, 0.1, 0.05)
	case "team":
		engine = predict.NewTrueSkill(league, rating.DefaultParams())
	case "player":
		engine = predict.NewPlayerTrueSkill(league, rating.DefaultParams(), seedRatings)
	default:
		log.Fatalf("unknown model %q", *model)
	}

	source := store.NewClickHouseSource(conn)
	games, err := source.CompletedGames(ctx)
	if err != nil {
		log.Fatalf("load games: %v", err)
	}
	upcoming, err := source.UpcomingMatches(ctx)
	if err != nil {
		log.Fatalf("load schedule: %v", err)
	}

	totalPoint, err := engine.TrainGames(games)
	if err != nil {
		log.Fatalf("train: %v", err)
	}
	avgPoint := 0.0
	if len(games) > 0 {
		avgPoint = totalPoint / float64(len(games))
	}
	fmt.Printf("trained on %d games, avg point %.4f, accuracy %.1f%%\n\n",
		len(games), avgPoint, 100.0*engine.Accuracy())

	printStandings(engine)

	forecast, err := engine.SimulateStage(upcoming, predict.SimOptions{
		Iterations: *iterations,
		Shards:     *shards,
		Seed:       *seed,
	})
	if err != nil {
		log.Fatalf("simulate stage: %v", err)
	}
	printForecast(forecast)
}

func printStandings(engine *predict.Engine) {
	rows := engine.StageStandings()
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Wins != rows[j].Wins {
			return rows[i].Wins > rows[j].Wins
		}
		return rows[i].MapDiff > rows[j].MapDiff
	})

	fmt.Printf("standings, %s\n", engine.Stage())
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "team\twins\tlosses\tmap diff")
	for _, row := range rows {
		fmt.Fprintf(w, "%s\t%d\t%d\t%+d\n", row.Team, row.Wins, row.Losses, row.MapDiff)
	}
	w.Flush()
	fmt.Println()
}

func printForecast(forecast *models.StageForecast) {
	teams := append([]models.TeamForecast(nil), forecast.Teams...)
	sort.Slice(teams, func(i, j int) bool {
		a, b := teams[i].TitleBerth.P, teams[j].TitleBerth.P
		if a != b {
			return a > b
		}
		return teams[i].Title.P > teams[j].Title.P
	})

	fmt.Printf("forecast, %s (%d iterations)\n", forecast.Stage, forecast.Iterations)
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "team\ttitle berth\ttitle")
	for _, t := range teams {
		fmt.Fprintf(w, "%s\t%s\t%s\n", t.Team, chance(t.TitleBerth), chance(t.Title))
	}
	w.Flush()
}

func chance(c models.Chance) string {
	if c.Decided {
		if c.Certain() {
			return "clinched"
		}
		return "eliminated"
	}
	return fmt.Sprintf("%.1f%%", 100.0*c.P)
}
