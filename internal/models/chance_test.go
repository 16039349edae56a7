package models

import (
	"encoding/json"
	"testing"
)

func TestChanceMarshal_Probability(t *testing.T) {
	data, err := json.Marshal(Probability(0.731))
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}
	if string(data) != "0.731" {
		t.Errorf("Marshaled = %s, want 0.731", data)
	}
}

func TestChanceMarshal_Decided(t *testing.T) {
	data, err := json.Marshal(DecidedChance(true))
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}
	if string(data) != "true" {
		t.Errorf("Marshaled = %s, want true", data)
	}

	data, err = json.Marshal(DecidedChance(false))
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}
	if string(data) != "false" {
		t.Errorf("Marshaled = %s, want false", data)
	}
}

func TestChanceUnmarshal_Number(t *testing.T) {
	var c Chance
	if err := json.Unmarshal([]byte("0.25"), &c); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}
	if c.Decided || c.P != 0.25 {
		t.Errorf("Chance = %+v, want undecided 0.25", c)
	}
}

func TestChanceUnmarshal_Boolean(t *testing.T) {
	var c Chance
	if err := json.Unmarshal([]byte("true"), &c); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}
	if !c.Certain() {
		t.Errorf("Chance = %+v, want certain", c)
	}

	if err := json.Unmarshal([]byte("false"), &c); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}
	if !c.Decided || c.P != 0 {
		t.Errorf("Chance = %+v, want decided false", c)
	}
}

func TestChanceUnmarshal_Garbage(t *testing.T) {
	var c Chance
	if err := json.Unmarshal([]byte(`"maybe"`), &c); err == nil {
		t.Error("Expected error for non-numeric chance")
	}
}

func TestChanceRoundTripInsideForecast(t *testing.T) {
	in := StageForecast{
		Stage:      "Stage 1",
		Iterations: 1000,
		Teams: []TeamForecast{
			{Team: "SEO", TitleBerth: DecidedChance(true), Title: Probability(0.4)},
			{Team: "VAL", TitleBerth: DecidedChance(false), Title: DecidedChance(false)},
		},
	}

	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}

	var out StageForecast
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}
	if len(out.Teams) != 2 {
		t.Fatalf("Teams = %d, want 2", len(out.Teams))
	}
	if !out.Teams[0].TitleBerth.Certain() {
		t.Errorf("SEO title berth = %+v, want certain", out.Teams[0].TitleBerth)
	}
	if out.Teams[0].Title.Decided || out.Teams[0].Title.P != 0.4 {
		t.Errorf("SEO title = %+v, want undecided 0.4", out.Teams[0].Title)
	}
	if !out.Teams[1].TitleBerth.Decided || out.Teams[1].TitleBerth.P != 0 {
		t.Errorf("VAL title berth = %+v, want decided false", out.Teams[1].TitleBerth)
	}
}
