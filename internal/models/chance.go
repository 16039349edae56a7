package models

import (
	"fmt"
	"strconv"
)

// Chance is a probability that may have collapsed to a certainty. Once a
// team is mathematically eliminated or has clinched, the simulator forces
// the value to a decided boolean instead of a Monte Carlo estimate.
//
// JSON form is either a number (0.731) or a bare boolean (true/false),
// matching what consumers of the forecast expect.
type Chance struct {
	P       float64
	Decided bool
}

// Probability wraps an undecided Monte Carlo estimate.
func Probability(p float64) Chance {
	return Chance{P: p}
}

// DecidedChance returns a Chance forced to a certainty.
func DecidedChance(outcome bool) Chance {
	if outcome {
		return Chance{P: 1.0, Decided: true}
	}
	return Chance{P: 0.0, Decided: true}
}

// Certain reports whether the chance is a decided true.
func (c Chance) Certain() bool {
	return c.Decided && c.P == 1.0
}

// MarshalJSON emits a boolean once decided, a number otherwise.
func (c Chance) MarshalJSON() ([]byte, error) {
	if c.Decided {
		if c.P == 1.0 {
			return []byte("true"), nil
		}
		return []byte("false"), nil
	}
	return []byte(strconv.FormatFloat(c.P, 'g', -1, 64)), nil
}

// UnmarshalJSON accepts either a boolean or a number.
func (c *Chance) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case "true":
		*c = DecidedChance(true)
		return nil
	case "false":
		*c = DecidedChance(false)
		return nil
	}

	p, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("chance: cannot parse %q", data)
	}
	*c = Probability(p)
	return nil
}

func (c Chance) String() string {
	if c.Decided {
		return strconv.FormatBool(c.P == 1.0)
	}
	return fmt.Sprintf("%.0f%%", c.P*100)
}
