package domain

import (
	"time"

	"github.com/google/uuid"
)

// dayLayout is the UTC calendar-day key format.
const dayLayout = "2006-01-02"

// DailyTask is the once-per-UTC-day quiz record of a user. Completed is terminal.
type DailyTask struct {
	ID        uuid.UUID        `json:"id"`
	UserID    uuid.UUID        `json:"userId"`
	Day       string           `json:"day"`
	Date      time.Time        `json:"date"`
	Completed bool             `json:"completed"`
	Reward    int64            `json:"reward"`
	Results   []QuestionResult `json:"questions"`
}

// QuestionResult is the graded outcome of one submitted answer. CorrectIndex is
// nil when the question does not exist.
type QuestionResult struct {
	QuestionID   string `json:"questionId"`
	CorrectIndex *int   `json:"correctIndex"`
	ChosenIndex  int    `json:"chosenIndex"`
	Correct      bool   `json:"correct"`
	RewardCents  int64  `json:"rewardCents"`
}

// DayKey returns the UTC calendar day of t as YYYY-MM-DD.
func DayKey(t time.Time) string {
	return t.UTC().Format(dayLayout)
}

// DayBounds returns the first and last millisecond of the UTC day named by key.
func DayBounds(key string) (time.Time, time.Time, error) {
	start, err := time.ParseInLocation(dayLayout, key, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, start.Add(24*time.Hour - time.Millisecond), nil
}
