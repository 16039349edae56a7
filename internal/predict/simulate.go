package predict

import (
	"math/rand"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/owlcentral/forecast-api/internal/models"
)

// SimOptions configure a stage simulation run.
type SimOptions struct {
	// Iterations is the number of Monte Carlo trials. Default 100000.
	Iterations int
	// Seed is the base RNG seed; each shard derives its own child seed
	// from it, so a fixed seed and shard count reproduce the run.
	Seed int64
	// Shards is how many goroutines share the trial loop. Trials are
	// independent and only read copied state. Default 8.
	Shards int
}

const (
	defaultIterations = 100000
	defaultShards     = 8
	playoffSeeds      = 8
)

func (o SimOptions) withDefaults() SimOptions {
	if o.Iterations <= 0 {
		o.Iterations = defaultIterations
	}
	if o.Shards <= 0 {
		o.Shards = defaultShards
	}
	return o
}

// sampler draws final scores for one remaining match from its score
// distribution.
type sampler struct {
	teamA, teamB int
	scores       []models.Score
	cum          []float64
}

func (s *sampler) draw(rng *rand.Rand) models.Score {
	r := rng.Float64() * s.cum[len(s.cum)-1]
	i := sort.SearchFloat64s(s.cum, r)
	if i >= len(s.scores) {
		i = len(s.scores) - 1
	}
	return s.scores[i]
}

// simCounts accumulates per-team outcome counters for one shard.
type simCounts struct {
	titleBerth []int
	title      []int
}

// SimulateStage estimates, for every team, the probability of reaching
// the stage title playoffs and of winning the stage, by sampling the
// remaining regular matches of the current stage many times.
//
// Each trial copies the stage standings, draws one final score per
// remaining match, ranks all teams by the tie-break comparator (wins,
// map diff, pairwise head-to-head map diff, then a coin flip weighted by
// the pair's single-game win probability), selects eight seeds (seed 2
// is the best team from the other division — a documented approximation
// of the real seeding rule) and resolves a single-elimination bracket:
// best-of-5 quarterfinals 1v8 2v7 3v6 4v5, best-of-7 semifinals and
// final. Afterwards, teams that are mathematically eliminated or have
// clinched get their probabilities forced to decided booleans.
func (e *Engine) SimulateStage(matches []*models.Match, opts SimOptions) (*models.StageForecast, error) {
	opts = opts.withDefaults()

	remaining := make([]*models.Match, 0, len(matches))
	for _, m := range matches {
		if m.Stage == e.standings.stage && m.Format == models.FormatRegular {
			remaining = append(remaining, m)
		}
	}

	teams := e.league.Teams()
	n := len(teams)
	teamIdx := make(map[string]int, n)
	for i, t := range teams {
		teamIdx[t] = i
	}
	divisions := make([]string, n)
	for i, t := range teams {
		divisions[i] = e.league.Division(t)
	}

	// Full rosters for pairings that have no scheduled match: last seen
	// in training, overridden by the schedule where available.
	fullRosters := make(map[string]models.FullRoster, n)
	for _, t := range teams {
		fullRosters[t] = e.rosters.fullRoster(t)
	}
	for _, m := range remaining {
		for i, t := range m.Teams {
			fullRosters[t] = m.FullRosters[i]
		}
	}

	samplers := make([]*sampler, 0, len(remaining))
	for _, m := range remaining {
		pScores, err := e.MatchScores(m)
		if err != nil {
			return nil, err
		}

		s := &sampler{teamA: teamIdx[m.Teams[0]], teamB: teamIdx[m.Teams[1]]}
		for sc := range pScores {
			s.scores = append(s.scores, sc)
		}
		// Deterministic score order keeps sampling reproducible.
		sort.Slice(s.scores, func(i, j int) bool {
			if s.scores[i].A != s.scores[j].A {
				return s.scores[i].A < s.scores[j].A
			}
			return s.scores[i].B < s.scores[j].B
		})
		var cum float64
		s.cum = make([]float64, len(s.scores))
		for i, sc := range s.scores {
			cum += pScores[sc]
			s.cum[i] = cum
		}
		samplers = append(samplers, s)
	}

	pWinsRegular, err := e.pairwiseMatchWins(teams, fullRosters, models.FormatRegular)
	if err != nil {
		return nil, err
	}
	pWinsBo5, err := e.pairwiseMatchWins(teams, fullRosters, models.FormatBestOf5)
	if err != nil {
		return nil, err
	}
	pWinsBo7, err := e.pairwiseMatchWins(teams, fullRosters, models.FormatBestOf7)
	if err != nil {
		return nil, err
	}

	baseWins := make([]int, n)
	baseMapDiffs := make([]int, n)
	baseH2H := make([][]int, n)
	for i, t := range teams {
		baseWins[i] = e.standings.stageWins[t]
		baseMapDiffs[i] = e.standings.stageMapDiffs[t]
		baseH2H[i] = make([]int, n)
		for j, u := range teams {
			baseH2H[i][j] = e.standings.stageHeadToHeadMapDiffs[pair{t, u}]
		}
	}

	shardCounts := make([]simCounts, opts.Shards)
	perShard := opts.Iterations / opts.Shards
	extra := opts.Iterations % opts.Shards

	var g errgroup.Group
	for shard := 0; shard < opts.Shards; shard++ {
		shard := shard
		iters := perShard
		if shard < extra {
			iters++
		}
		g.Go(func() error {
			rng := rand.New(rand.NewSource(opts.Seed + int64(shard) + 1))
			shardCounts[shard] = e.runTrials(rng, iters, n, samplers,
				baseWins, baseMapDiffs, baseH2H,
				divisions, pWinsRegular, pWinsBo5, pWinsBo7)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	titleBerth := make([]int, n)
	title := make([]int, n)
	for _, c := range shardCounts {
		for i := 0; i < n; i++ {
			titleBerth[i] += c.titleBerth[i]
			title[i] += c.title[i]
		}
	}

	forecast := &models.StageForecast{
		Stage:      e.standings.baseStage,
		Iterations: opts.Iterations,
		Teams:      make([]models.TeamForecast, n),
	}
	for i, t := range teams {
		forecast.Teams[i] = models.TeamForecast{
			Team:       t,
			TitleBerth: models.Probability(float64(titleBerth[i]) / float64(opts.Iterations)),
			Title:      models.Probability(float64(title[i]) / float64(opts.Iterations)),
		}
	}

	e.forceDecidedOutcomes(forecast, teams, remaining)
	return forecast, nil
}

func (e *Engine) runTrials(rng *rand.Rand, iters, n int, samplers []*sampler,
	baseWins, baseMapDiffs []int, baseH2H [][]int,
	divisions []string, pWinsRegular, pWinsBo5, pWinsBo7 [][]float64) simCounts {

	counts := simCounts{titleBerth: make([]int, n), title: make([]int, n)}

	wins := make([]int, n)
	mapDiffs := make([]int, n)
	h2h := make([][]int, n)
	for i := range h2h {
		h2h[i] = make([]int, n)
	}
	order := make([]int, n)

	for iter := 0; iter < iters; iter++ {
		copy(wins, baseWins)
		copy(mapDiffs, baseMapDiffs)
		for i := range h2h {
			copy(h2h[i], baseH2H[i])
		}

		for _, s := range samplers {
			sc := s.draw(rng)
			if sc.A > sc.B {
				wins[s.teamA]++
			} else if sc.A < sc.B {
				wins[s.teamB]++
			}

			diff := sc.A - sc.B
			mapDiffs[s.teamA] += diff
			mapDiffs[s.teamB] -= diff
			h2h[s.teamA][s.teamB] += diff
			h2h[s.teamB][s.teamA] -= diff
		}

		// Rank by the tie-break comparator, best first.
		cmp := func(i, j int) int {
			switch {
			case wins[i] != wins[j]:
				return wins[i] - wins[j]
			case mapDiffs[i] != mapDiffs[j]:
				return mapDiffs[i] - mapDiffs[j]
			case h2h[i][j] != 0:
				return h2h[i][j]
			case rng.Float64() < pWinsRegular[i][j]:
				return 1
			default:
				return -1
			}
		}
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(x, y int) bool {
			return cmp(order[x], order[y]) > 0
		})

		seeds := e.selectSeeds(order, divisions)
		for _, s := range seeds {
			counts.titleBerth[s]++
		}

		champion := runBracket(rng, seeds, pWinsBo5, pWinsBo7)
		counts.title[champion]++
	}
	return counts
}

// selectSeeds picks the eight stage-playoff seeds from the ranked order.
// Seed 1 is the top team; seed 2 the best remaining team from the other
// division; seeds 3-8 follow rank. This approximates the full seeding
// rule deliberately.
func (e *Engine) selectSeeds(order []int, divisions []string) []int {
	seeds := make([]int, 0, playoffSeeds)
	seeds = append(seeds, order[0])

	rest := make([]int, 0, len(order)-1)
	rest = append(rest, order[1:]...)

	for i, t := range rest {
		if divisions[t] != divisions[seeds[0]] {
			seeds = append(seeds, t)
			rest = append(rest[:i], rest[i+1:]...)
			break
		}
	}

	seeds = append(seeds, rest[:playoffSeeds-len(seeds)]...)
	return seeds
}

// runBracket resolves the single-elimination bracket: best-of-5
// quarterfinals (1v8, 2v7, 3v6, 4v5), then best-of-7 semifinals and
// final, each pairing decided by one weighted coin flip. Survivors keep
// their seed-slot order between rounds.
func runBracket(rng *rand.Rand, seeds []int, pWinsBo5, pWinsBo7 [][]float64) int {
	alive := make([]int, len(seeds))
	copy(alive, seeds)

	beat := func(p [][]float64, a, b int) bool {
		return rng.Float64() < p[a][b]
	}

	eliminated := make([]bool, len(alive))
	quarterfinals := [][2]int{{0, 7}, {1, 6}, {2, 5}, {3, 4}}
	for _, qf := range quarterfinals {
		if beat(pWinsBo5, alive[qf[0]], alive[qf[1]]) {
			eliminated[qf[1]] = true
		} else {
			eliminated[qf[0]] = true
		}
	}
	alive = compact(alive, eliminated)

	eliminated = make([]bool, len(alive))
	semifinals := [][2]int{{0, 3}, {1, 2}}
	for _, sf := range semifinals {
		if beat(pWinsBo7, alive[sf[0]], alive[sf[1]]) {
			eliminated[sf[1]] = true
		} else {
			eliminated[sf[0]] = true
		}
	}
	alive = compact(alive, eliminated)

	if beat(pWinsBo7, alive[0], alive[1]) {
		return alive[0]
	}
	return alive[1]
}

func compact(teams []int, eliminated []bool) []int {
	out := teams[:0]
	for i, t := range teams {
		if !eliminated[i] {
			out = append(out, t)
		}
	}
	return out
}

// pairwiseMatchWins precomputes the match win probability for every
// ordered team pair under one format.
func (e *Engine) pairwiseMatchWins(teams []string, fullRosters map[string]models.FullRoster,
	format models.MatchFormat) ([][]float64, error) {

	n := len(teams)
	p := make([][]float64, n)
	for i := range p {
		p[i] = make([]float64, n)
	}

	for i, t1 := range teams {
		for j, t2 := range teams {
			if i == j {
				continue
			}
			m := &models.Match{
				Format:      format,
				Teams:       [2]string{t1, t2},
				FullRosters: [2]models.FullRoster{fullRosters[t1], fullRosters[t2]},
			}
			pWin, _, err := e.PredictMatch(m)
			if err != nil {
				return nil, err
			}
			p[i][j] = pWin
		}
	}
	return p, nil
}

// winRecord orders best/worst-case standings: wins first, map
// differential second.
type winRecord struct {
	wins    int
	mapDiff int
}

func (r winRecord) less(o winRecord) bool {
	if r.wins != o.wins {
		return r.wins < o.wins
	}
	return r.mapDiff < o.mapDiff
}

// forceDecidedOutcomes replaces Monte Carlo estimates with decided
// booleans for teams whose fate no remaining result can change: a team
// whose best possible record stays below the guaranteed 8th record is
// out; one whose worst possible record beats the best possible 9th
// record is in. For a clinched team, the title chance collapses once it
// has taken a title loss, or to certainty once the title matches are
// exhausted.
func (e *Engine) forceDecidedOutcomes(forecast *models.StageForecast, teams []string, remaining []*models.Match) {
	n := len(teams)
	if n < playoffSeeds+1 {
		return
	}

	minRec := make(map[string]winRecord, n)
	maxRec := make(map[string]winRecord, n)
	for _, t := range teams {
		rec := winRecord{wins: e.standings.stageWins[t], mapDiff: e.standings.stageMapDiffs[t]}
		minRec[t] = rec
		maxRec[t] = rec
	}

	for _, m := range remaining {
		for _, t := range m.Teams {
			lo := minRec[t]
			lo.mapDiff -= 4
			minRec[t] = lo

			hi := maxRec[t]
			hi.wins++
			hi.mapDiff += 4
			maxRec[t] = hi
		}
	}

	sortedMin := make([]winRecord, 0, n)
	sortedMax := make([]winRecord, 0, n)
	for _, t := range teams {
		sortedMin = append(sortedMin, minRec[t])
		sortedMax = append(sortedMax, maxRec[t])
	}
	sort.Slice(sortedMin, func(i, j int) bool { return sortedMin[i].less(sortedMin[j]) })
	sort.Slice(sortedMax, func(i, j int) bool { return sortedMax[i].less(sortedMax[j]) })

	guaranteed8th := sortedMin[n-playoffSeeds]
	possible9th := sortedMax[n-playoffSeeds-1]

	for i := range forecast.Teams {
		t := forecast.Teams[i].Team
		switch {
		case maxRec[t].less(guaranteed8th):
			forecast.Teams[i].TitleBerth = models.DecidedChance(false)
			forecast.Teams[i].Title = models.DecidedChance(false)
		case possible9th.less(minRec[t]):
			forecast.Teams[i].TitleBerth = models.DecidedChance(true)
			if e.standings.stageTitleLosses[t] > 0 {
				forecast.Teams[i].Title = models.DecidedChance(false)
			} else if e.standings.stageFinished() {
				forecast.Teams[i].Title = models.DecidedChance(true)
			}
		}
	}
}
