package predict

import "github.com/owlcentral/forecast-api/internal/rating"

// HistoryKey identifies a point in the season: a team's n-th match
// within a stage.
type HistoryKey struct {
	Stage       string `json:"stage"`
	MatchNumber int    `json:"match_number"`
}

// HistoryEntry holds the ratings of every entity (players by name, teams
// by team key) recorded at one history key.
type HistoryEntry struct {
	Key     HistoryKey
	Ratings map[string]rating.Rating
}

// History is the append-only ratings log, ordered by insertion. It is
// written once per training run and handed to an external sink; nothing
// is ever evicted.
type History struct {
	entries []*HistoryEntry
	index   map[HistoryKey]*HistoryEntry
}

func newHistory() *History {
	return &History{index: make(map[HistoryKey]*HistoryEntry)}
}

// at returns the entry for a key, appending a fresh one on first use.
func (h *History) at(key HistoryKey) *HistoryEntry {
	if entry, ok := h.index[key]; ok {
		return entry
	}
	entry := &HistoryEntry{Key: key, Ratings: make(map[string]rating.Rating)}
	h.entries = append(h.entries, entry)
	h.index[key] = entry
	return entry
}

// Entries returns all entries in insertion order.
func (h *History) Entries() []*HistoryEntry {
	return h.entries
}
