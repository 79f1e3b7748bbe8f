package handler

import (
	"encoding/json"
	"net/http"

	"github.com/hamstergame/platform/internal/domain"
	"github.com/hamstergame/platform/internal/ledger"
	"github.com/hamstergame/platform/internal/service"
)

// DailyHandler serves the daily quiz.
type DailyHandler struct {
	catalog *service.CatalogService
	engine  *ledger.Engine
}

// NewDailyHandler creates a new DailyHandler.
func NewDailyHandler(catalog *service.CatalogService, engine *ledger.Engine) *DailyHandler {
	return &DailyHandler{catalog: catalog, engine: engine}
}

// Questions handles GET /daily/questions.
func (h *DailyHandler) Questions(w http.ResponseWriter, r *http.Request) {
	questions, err := h.catalog.DailyQuestions(r.Context())
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{"questions": questions})
}

type answerRequest struct {
	QuestionID  string       `json:"questionId"`
	ChosenIndex *json.Number `json:"chosenIndex"`
}

type dailyAnswerRequest struct {
	Identity string          `json:"identity"`
	Answers  []answerRequest `json:"answers"`
}

type dailyAnswerResponse struct {
	OK                 bool                    `json:"ok"`
	CorrectCount       int                     `json:"correctCount"`
	TotalReward        int64                   `json:"totalReward"`
	PerQuestionResults []domain.QuestionResult `json:"perQuestionResults"`
	NewBalance         int64                   `json:"newBalance"`
}

// Answer handles POST /daily/answer.
func (h *DailyHandler) Answer(w http.ResponseWriter, r *http.Request) {
	var req dailyAnswerRequest
	if err := DecodeJSON(r, &req); err != nil {
		invalidBody(w)
		return
	}

	identity, err := callerIdentity(r, req.Identity)
	if err != nil {
		RespondError(w, err)
		return
	}

	answers := make([]domain.DailyAnswer, 0, len(req.Answers))
	for _, a := range req.Answers {
		if a.QuestionID == "" {
			RespondError(w, domain.ErrValidation("questionId is required"))
			return
		}
		if a.ChosenIndex == nil {
			RespondError(w, domain.ErrValidation("chosenIndex is required"))
			return
		}
		idx, err := integerField("chosenIndex", *a.ChosenIndex)
		if err != nil {
			RespondError(w, err)
			return
		}
		answers = append(answers, domain.DailyAnswer{QuestionID: a.QuestionID, ChosenIndex: idx})
	}

	result, err := h.engine.ExecuteDailyReward(r.Context(), domain.DailyAnswersInput{
		Identity: identity,
		Answers:  answers,
	})
	if err != nil {
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusOK, dailyAnswerResponse{
		OK:                 true,
		CorrectCount:       result.CorrectCount,
		TotalReward:        result.TotalReward,
		PerQuestionResults: result.Results,
		NewBalance:         result.NewBalance,
	})
}
