package predict

import (
	"strings"

	"github.com/owlcentral/forecast-api/internal/models"
)

// pair keys head-to-head counters by ordered team pair.
type pair struct {
	a, b string
}

// standings tracks season and stage counters from a completed game
// stream. Games arrive one at a time, so a match's outcome is credited
// the moment one side pulls ahead and reversed again if the other side
// later draws level; the final counters depend only on the match's
// final tally.
type standings struct {
	// Season counters.
	wins               map[string]int
	losses             map[string]int
	mapDiffs           map[string]int
	headToHeadDiffs    map[pair]int
	headToHeadMapDiffs map[pair]int

	// Stage counters. A title sub-phase keeps these; a new stage resets.
	stage                   string
	baseStage               string
	stageWins               map[string]int
	stageLosses             map[string]int
	stageMapDiffs           map[string]int
	stageHeadToHeadMapDiffs map[pair]int
	stageTitleWins          map[string]int
	stageTitleLosses        map[string]int
	playoffWins             map[string]int
	playoffLosses           map[string]int

	// Per-match running tally of the match currently open.
	matchID   int64
	haveMatch bool
	score     map[string]int
	scores    map[int64]map[string]int

	// stage -> team -> match ids, in order of appearance.
	matchHistory map[string]map[string][]int64
}

func newStandings() *standings {
	return &standings{
		wins:                    make(map[string]int),
		losses:                  make(map[string]int),
		mapDiffs:                make(map[string]int),
		headToHeadDiffs:         make(map[pair]int),
		headToHeadMapDiffs:      make(map[pair]int),
		stageWins:               make(map[string]int),
		stageLosses:             make(map[string]int),
		stageMapDiffs:           make(map[string]int),
		stageHeadToHeadMapDiffs: make(map[pair]int),
		stageTitleWins:          make(map[string]int),
		stageTitleLosses:        make(map[string]int),
		playoffWins:             make(map[string]int),
		playoffLosses:           make(map[string]int),
		scores:                  make(map[int64]map[string]int),
		matchHistory:            make(map[string]map[string][]int64),
	}
}

// stageFinished reports whether the stage title matches are over: a
// title bracket hands out exactly three losses.
func (s *standings) stageFinished() bool {
	var total int
	for _, l := range s.stageTitleLosses {
		total += l
	}
	return total == 3
}

func (s *standings) updateStage(stage string) {
	if stage == s.stage {
		return
	}

	if s.stage != "" && strings.HasPrefix(stage, s.stage) {
		// Entering the title matches of the same stage.
		s.baseStage = s.stage
		s.stage = stage
		return
	}

	// Entering a genuinely new stage.
	s.baseStage = stage
	s.stage = stage

	s.stageWins = make(map[string]int)
	s.stageLosses = make(map[string]int)
	s.stageMapDiffs = make(map[string]int)
	s.stageHeadToHeadMapDiffs = make(map[pair]int)
	s.stageTitleWins = make(map[string]int)
	s.stageTitleLosses = make(map[string]int)
}

func (s *standings) updateMatchID(matchID int64, teams [2]string) {
	if s.haveMatch && matchID == s.matchID {
		return
	}

	s.haveMatch = true
	s.matchID = matchID
	s.score = map[string]int{teams[0]: 0, teams[1]: 0}
	s.scores[matchID] = s.score

	for _, team := range teams {
		if s.matchHistory[s.stage] == nil {
			s.matchHistory[s.stage] = make(map[string][]int64)
		}
		s.matchHistory[s.stage][team] = append(s.matchHistory[s.stage][team], matchID)
	}
}

// matchNumber returns how many matches the team has opened in the stage.
func (s *standings) matchNumber(stage, team string) int {
	if s.matchHistory[stage] == nil {
		return 0
	}
	return len(s.matchHistory[stage][team])
}

func (s *standings) update(g *models.Game) {
	s.updateStage(g.Stage)
	s.updateMatchID(g.MatchID, g.Teams)

	if g.Draw() {
		return
	}

	isRegular := g.Format == models.FormatRegular
	isTitle := models.TitleStage(g.Stage)
	isPlayoff := g.Format == models.FormatPlayoff

	winner, loser := g.Winner()

	// Map differentials count per game, regular season only.
	if isRegular {
		s.mapDiffs[winner]++
		s.mapDiffs[loser]--
		s.headToHeadMapDiffs[pair{winner, loser}]++
		s.headToHeadMapDiffs[pair{loser, winner}]--

		s.stageMapDiffs[winner]++
		s.stageMapDiffs[loser]--
		s.stageHeadToHeadMapDiffs[pair{winner, loser}]++
		s.stageHeadToHeadMapDiffs[pair{loser, winner}]--
	}

	switch {
	case s.score[winner] == s.score[loser]:
		// The winner pulls ahead: the match flips to them. If the match
		// ends here this credit stands; otherwise a later game reverses
		// it below.
		switch {
		case isRegular:
			s.wins[winner]++
			s.losses[loser]++
			s.headToHeadDiffs[pair{winner, loser}]++
			s.headToHeadDiffs[pair{loser, winner}]--

			s.stageWins[winner]++
			s.stageLosses[loser]++
		case isTitle:
			s.stageTitleWins[winner]++
			s.stageTitleLosses[loser]++
		case isPlayoff:
			s.playoffWins[winner]++
			s.playoffLosses[loser]++
		}
	case s.score[winner] == s.score[loser]-1:
		// The winner draws level: the result credited to the other side
		// was premature, undo it.
		switch {
		case isRegular:
			s.wins[loser]--
			s.losses[winner]--
			s.headToHeadDiffs[pair{winner, loser}]++
			s.headToHeadDiffs[pair{loser, winner}]--

			s.stageWins[loser]--
			s.stageLosses[winner]--
		case isTitle:
			s.stageTitleWins[loser]--
			s.stageTitleLosses[winner]--
		case isPlayoff:
			s.playoffWins[loser]--
			s.playoffLosses[winner]--
		}
	}

	s.score[winner]++
}
