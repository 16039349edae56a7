package store

import (
	"context"
	"reflect"
	"testing"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/owlcentral/forecast-api/internal/models"
)

type MockConn struct {
	driver.Conn
	Rows       *MockRows
	LastQuery  string
	QueryCalls int
}

func (m *MockConn) Query(ctx context.Context, query string, args ...interface{}) (driver.Rows, error) {
	m.QueryCalls++
	m.LastQuery = query
	return m.Rows, nil
}

type MockRows struct {
	driver.Rows
	data     [][]interface{}
	rowIndex int
}

func (m *MockRows) Next() bool {
	m.rowIndex++
	return m.rowIndex <= len(m.data)
}

func (m *MockRows) Scan(dest ...interface{}) error {
	row := m.data[m.rowIndex-1]
	for i, val := range row {
		assign(dest[i], val)
	}
	return nil
}

func (m *MockRows) Close() error { return nil }
func (m *MockRows) Err() error   { return nil }

func assign(dest interface{}, val interface{}) {
	v := reflect.ValueOf(dest).Elem()
	v.Set(reflect.ValueOf(val))
}

func TestCompletedGames(t *testing.T) {
	conn := &MockConn{Rows: &MockRows{data: [][]interface{}{
		{
			"Stage 1", int64(101), "regular",
			"SEO", "DAL", int32(3), int32(2), true,
			[]string{"s1", "s2", "s3", "s4", "s5", "s6"},
			[]string{"d1", "d2", "d3", "d4", "d5", "d6"},
			[]string{"s1", "s2", "s3", "s4", "s5", "s6", "s7"},
			[]string{"d1", "d2", "d3", "d4", "d5", "d6", "d7"},
		},
		{
			"Stage 1", int64(102), "best-of-5",
			"FLA", "BOS", int32(0), int32(1), false,
			[]string{}, []string{}, []string{}, []string{},
		},
	}}}

	games, err := NewClickHouseSource(conn).CompletedGames(context.Background())
	if err != nil {
		t.Fatalf("CompletedGames failed: %v", err)
	}
	if len(games) != 2 {
		t.Fatalf("games = %d, want 2", len(games))
	}

	g := games[0]
	if g.Stage != "Stage 1" || g.MatchID != 101 {
		t.Errorf("game 1 identity = %s/%d, want Stage 1/101", g.Stage, g.MatchID)
	}
	if g.Format != models.FormatRegular {
		t.Errorf("format = %q, want regular", g.Format)
	}
	if g.Teams != [2]string{"SEO", "DAL"} {
		t.Errorf("teams = %v", g.Teams)
	}
	if g.Score != [2]int{3, 2} {
		t.Errorf("score = %v, want 3-2", g.Score)
	}
	if !g.Drawable {
		t.Error("drawable flag lost")
	}
	if len(g.Rosters[0]) != 6 || g.Rosters[0][0] != "s1" {
		t.Errorf("roster 1 = %v", g.Rosters[0])
	}
	if len(g.FullRosters[1]) != 7 {
		t.Errorf("full roster 2 = %v", g.FullRosters[1])
	}

	if games[1].Format != models.FormatBestOf5 {
		t.Errorf("game 2 format = %q, want best-of-5", games[1].Format)
	}
}

func TestUpcomingMatches(t *testing.T) {
	conn := &MockConn{Rows: &MockRows{data: [][]interface{}{
		{
			"Stage 2", "regular", "GLA", "VAL",
			[]string{"g1", "g2", "g3", "g4", "g5", "g6", "g7"},
			[]string{"v1", "v2", "v3", "v4", "v5", "v6"},
		},
	}}}

	matches, err := NewClickHouseSource(conn).UpcomingMatches(context.Background())
	if err != nil {
		t.Fatalf("UpcomingMatches failed: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("matches = %d, want 1", len(matches))
	}

	m := matches[0]
	if m.Stage != "Stage 2" || m.Format != models.FormatRegular {
		t.Errorf("match = %+v", m)
	}
	if m.Teams != [2]string{"GLA", "VAL"} {
		t.Errorf("teams = %v", m.Teams)
	}
	if len(m.FullRosters[0]) != 7 || len(m.FullRosters[1]) != 6 {
		t.Errorf("full rosters = %v", m.FullRosters)
	}
}
