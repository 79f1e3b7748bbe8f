package service

import (
	"context"

	"github.com/hamstergame/platform/internal/domain"
	"github.com/hamstergame/platform/internal/repository"
	"github.com/google/uuid"
)

// DefaultDailyQuestionCount is how many questions a daily quiz offers.
const DefaultDailyQuestionCount = 3

// CatalogService serves the shop catalog and the daily question sample.
type CatalogService struct {
	store         repository.Store
	questionCount int
}

// NewCatalogService creates a CatalogService.
func NewCatalogService(store repository.Store, questionCount int) *CatalogService {
	if questionCount <= 0 {
		questionCount = DefaultDailyQuestionCount
	}
	return &CatalogService{store: store, questionCount: questionCount}
}

// Items returns the whole catalog ordered by category, then name.
func (s *CatalogService) Items(ctx context.Context) ([]domain.AssetCatalogItem, error) {
	items, err := s.store.Catalog().ListAll(ctx)
	if err != nil {
		return nil, domain.ErrInternal("list catalog", err)
	}
	return items, nil
}

// PublicQuestion is what a player sees of a question: no answer key and no
// difficulty, which would give away the reward tier.
type PublicQuestion struct {
	ID      uuid.UUID `json:"id"`
	Prompt  string    `json:"prompt"`
	Answers []string  `json:"answers"`
}

// DailyQuestions returns a random sample of questions for today's quiz.
func (s *CatalogService) DailyQuestions(ctx context.Context) ([]PublicQuestion, error) {
	questions, err := s.store.Questions().Sample(ctx, s.questionCount)
	if err != nil {
		return nil, domain.ErrInternal("sample questions", err)
	}
	out := make([]PublicQuestion, 0, len(questions))
	for _, q := range questions {
		out = append(out, PublicQuestion{
			ID:      q.ID,
			Prompt:  q.Prompt,
			Answers: q.Answers,
		})
	}
	return out, nil
}
