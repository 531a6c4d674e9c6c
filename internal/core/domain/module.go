package domain

import (
	"fmt"
	"time"
)

// Difficulty labels a training module.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "Beginner"
	DifficultyIntermediate Difficulty = "Intermediate"
	DifficultyAdvanced     Difficulty = "Advanced"
	DifficultyEasy         Difficulty = "Easy"
	DifficultyMedium       Difficulty = "Medium"
	DifficultyHard         Difficulty = "Hard"
)

// ParseDifficulty accepts the six known labels; empty input yields Beginner.
func ParseDifficulty(s string) (Difficulty, error) {
	switch d := Difficulty(s); d {
	case "":
		return DifficultyBeginner, nil
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced,
		DifficultyEasy, DifficultyMedium, DifficultyHard:
		return d, nil
	}
	return "", fmt.Errorf("%w: unknown difficulty %q", ErrValidation, s)
}

// Module is a training-catalog entry.
type Module struct {
	ID          string     `json:"id"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Duration    string     `json:"duration"`
	Difficulty  Difficulty `json:"difficulty"`
	Topics      []string   `json:"topics"`
	Points      int        `json:"points"`
	Path        string     `json:"path"`
	Published   bool       `json:"published"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}
