package models

import "testing"

func TestDefaultLeague(t *testing.T) {
	l := DefaultLeague()

	if l.Size() != 12 {
		t.Fatalf("Size = %d, want 12", l.Size())
	}

	var atl, pac int
	for _, team := range l.Teams() {
		switch l.Division(team) {
		case DivisionAtlantic:
			atl++
		case DivisionPacific:
			pac++
		default:
			t.Errorf("team %s has no division", team)
		}
	}
	if atl != 6 || pac != 6 {
		t.Errorf("divisions = %d/%d, want 6/6", atl, pac)
	}

	if !l.Contains("SEO") {
		t.Error("Contains(SEO) = false, want true")
	}
	if l.Contains("XYZ") {
		t.Error("Contains(XYZ) = true, want false")
	}
	if l.Division("XYZ") != "" {
		t.Error("Division(XYZ) should be empty")
	}
}

func TestLeagueTeamOrderIsDeterministic(t *testing.T) {
	a := DefaultLeague().Teams()
	b := DefaultLeague().Teams()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("team order differs at %d: %s vs %s", i, a[i], b[i])
		}
	}
	for i := 1; i < len(a); i++ {
		if a[i-1] >= a[i] {
			t.Fatalf("teams not sorted: %s >= %s", a[i-1], a[i])
		}
	}
}

func TestFullRosterContainsAll(t *testing.T) {
	full := FullRoster{"a", "b", "c", "d", "e", "f", "g"}

	if !full.ContainsAll(Roster{"a", "c", "g"}) {
		t.Error("ContainsAll should accept a subset")
	}
	if full.ContainsAll(Roster{"a", "z"}) {
		t.Error("ContainsAll should reject an ineligible player")
	}
	if !full.ContainsAll(nil) {
		t.Error("ContainsAll of an empty roster should be true")
	}
}

func TestGameWinnerAndDraw(t *testing.T) {
	g := &Game{Teams: [2]string{"SEO", "DAL"}, Score: [2]int{3, 2}}
	if g.Draw() {
		t.Error("Draw = true for 3-2")
	}
	w, l := g.Winner()
	if w != "SEO" || l != "DAL" {
		t.Errorf("Winner = %s/%s, want SEO/DAL", w, l)
	}

	g.Score = [2]int{2, 3}
	w, l = g.Winner()
	if w != "DAL" || l != "SEO" {
		t.Errorf("Winner = %s/%s, want DAL/SEO", w, l)
	}

	g.Score = [2]int{2, 2}
	if !g.Draw() {
		t.Error("Draw = false for 2-2")
	}
}

func TestTitleStage(t *testing.T) {
	if !TitleStage("Stage 1 Title Matches") {
		t.Error("Title Matches should be a title stage")
	}
	if TitleStage("Stage 1") {
		t.Error("Stage 1 should not be a title stage")
	}
}
