package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Question is a trivia question. CorrectIndex points into Answers.
type Question struct {
	ID           uuid.UUID `json:"id"`
	Category     string    `json:"category"`
	Difficulty   *string   `json:"difficulty,omitempty"`
	Prompt       string    `json:"prompt"`
	Answers      []string  `json:"answers"`
	CorrectIndex int       `json:"correctIndex"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Reward amounts in cents for a correct answer.
const (
	RewardEasy    int64 = 1000
	RewardMedium  int64 = 2000
	RewardHard    int64 = 5000
	RewardUnset   int64 = 1000
	RewardUnknown int64 = 1500
)

// RewardForDifficulty maps a difficulty tag to its reward. Matching is
// case-insensitive; whitespace is significant.
func RewardForDifficulty(difficulty *string) int64 {
	if difficulty == nil || *difficulty == "" {
		return RewardUnset
	}
	switch strings.ToLower(*difficulty) {
	case "leicht", "easy":
		return RewardEasy
	case "mittel", "medium":
		return RewardMedium
	case "schwer", "hard":
		return RewardHard
	default:
		return RewardUnknown
	}
}
