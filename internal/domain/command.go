package domain

import "github.com/google/uuid"

// PurchaseInput is a request to buy Quantity units of a catalog item.
// Identity is the verified email of the caller.
type PurchaseInput struct {
	Identity string
	ItemID   string
	Quantity int
}

// PurchaseResult is returned by a committed purchase.
type PurchaseResult struct {
	Item                AssetCatalogItem `json:"item"`
	Quantity            int              `json:"quantity"`
	TotalPrice          int64            `json:"totalPrice"`
	NewBalance          int64            `json:"newBalance"`
	CreatedInventoryIDs []uuid.UUID      `json:"createdInventoryIds"`
	TransactionID       *uuid.UUID       `json:"transactionId"`
}

// DailyAnswer is one submitted quiz answer. QuestionID is kept as a string so
// malformed ids can be graded instead of rejected.
type DailyAnswer struct {
	QuestionID  string `json:"questionId"`
	ChosenIndex int    `json:"chosenIndex"`
}

// DailyAnswersInput is a daily quiz submission.
type DailyAnswersInput struct {
	Identity string
	Answers  []DailyAnswer
}

// DailyRewardResult is returned by a committed daily settlement.
type DailyRewardResult struct {
	CorrectCount  int              `json:"correctCount"`
	TotalReward   int64            `json:"totalReward"`
	Results       []QuestionResult `json:"perQuestionResults"`
	NewBalance    int64            `json:"newBalance"`
	TransactionID *uuid.UUID       `json:"transactionId"`
}
