// Package domain defines pairing engine types and ports
package domain

// Pair is one committed pairing, SE1 selected first
type Pair struct {
	SE1 string `json:"se1"`
	SE2 string `json:"se2"`
}

// TestCSVPath is the sentinel returned in test mode instead of a real file
const TestCSVPath = "NA"

// Outcome is the result of one engine run
type Outcome interface{ isOutcome() }

// Success carries the pair list and the written CSV path.
// In test mode CSVPath is TestCSVPath and nothing was persisted
type Success struct {
	CSVPath string
	Pairs   []Pair
	Resets  int
}

func (Success) isOutcome() {}

// Infeasible is returned when the reset budget is exhausted
type Infeasible struct {
	Resets int
}

func (Infeasible) isOutcome() {}
