package predict

import "github.com/owlcentral/forecast-api/internal/models"

// rosterBook tracks, per team, a bounded most-recent-first queue of
// lineups actually fielded and the last full roster seen.
type rosterBook struct {
	queueSize int
	queues    map[string][]models.Roster
	lastFull  map[string]models.FullRoster
}

func newRosterBook(queueSize int) *rosterBook {
	return &rosterBook{
		queueSize: queueSize,
		queues:    make(map[string][]models.Roster),
		lastFull:  make(map[string]models.FullRoster),
	}
}

func (b *rosterBook) record(g *models.Game) {
	for i, team := range g.Teams {
		q := make([]models.Roster, 0, len(b.queues[team])+1)
		q = append(q, g.Rosters[i])
		q = append(q, b.queues[team]...)
		if len(q) > b.queueSize {
			q = q[:b.queueSize]
		}
		b.queues[team] = q
		b.lastFull[team] = g.FullRosters[i]
	}
}

// queue returns the recorded lineups for a team, most recent first.
func (b *rosterBook) queue(team string) []models.Roster {
	return b.queues[team]
}

// fullRoster returns the last full roster seen for a team.
func (b *rosterBook) fullRoster(team string) models.FullRoster {
	return b.lastFull[team]
}
