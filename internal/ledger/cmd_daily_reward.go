package ledger

import (
	"context"
	"fmt"

	"github.com/hamstergame/platform/internal/domain"
	"github.com/hamstergame/platform/internal/metrics"
	"github.com/google/uuid"
)

// ExecuteDailyReward grades a quiz submission and settles the reward once per
// user and UTC day.
// Pattern: Validate → Resolve → Grade → Lock → Check today's task → PostLedgerEntry
func (e *Engine) ExecuteDailyReward(ctx context.Context, in domain.DailyAnswersInput) (result *domain.DailyRewardResult, err error) {
	defer func() {
		if err != nil {
			metrics.RecordDailySubmission(outcomeFor(err), 0)
		} else {
			metrics.RecordDailySubmission(metrics.OutcomeSuccess, result.TotalReward)
		}
	}()

	if len(in.Answers) == 0 {
		return nil, domain.ErrValidation("answers must be a non-empty array")
	}
	seen := make(map[string]bool, len(in.Answers))
	for _, a := range in.Answers {
		key := questionKey(a.QuestionID)
		if seen[key] {
			return nil, domain.ErrValidation(fmt.Sprintf("duplicate answer for question %q", a.QuestionID))
		}
		seen[key] = true
	}

	user, player, err := e.resolvePlayer(ctx, in.Identity)
	if err != nil {
		return nil, e.fail("daily reward", err)
	}

	graded, err := e.grade(ctx, in.Answers)
	if err != nil {
		return nil, e.fail("daily reward", err, "user_id", user.ID)
	}

	result, err = e.settleDaily(ctx, user.ID, player.ID, graded)
	if err != nil {
		return nil, e.fail("daily reward", err, "user_id", user.ID, "player_id", player.ID)
	}

	e.logger.Info("daily reward committed",
		"user_id", user.ID,
		"player_id", player.ID,
		"correct", result.CorrectCount,
		"reward_cents", result.TotalReward,
	)
	return result, nil
}

// questionKey folds every spelling uuid.Parse accepts (upper case, braces,
// urn prefix) onto the canonical form. Unparseable ids are compared verbatim.
func questionKey(raw string) string {
	if id, err := uuid.Parse(raw); err == nil {
		return id.String()
	}
	return raw
}

// grade scores each answer. Unknown or malformed question ids are incorrect
// with no reward and a nil correct index.
func (e *Engine) grade(ctx context.Context, answers []domain.DailyAnswer) (*domain.DailyRewardResult, error) {
	ids := make([]uuid.UUID, 0, len(answers))
	for _, a := range answers {
		if id, err := uuid.Parse(a.QuestionID); err == nil {
			ids = append(ids, id)
		}
	}

	questions, err := e.store.Questions().FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	byID := make(map[uuid.UUID]domain.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	out := &domain.DailyRewardResult{Results: make([]domain.QuestionResult, 0, len(answers))}
	for _, a := range answers {
		res := domain.QuestionResult{QuestionID: a.QuestionID, ChosenIndex: a.ChosenIndex}
		var q domain.Question
		found := false
		if id, err := uuid.Parse(a.QuestionID); err == nil {
			q, found = byID[id]
		}
		if found {
			correctIndex := q.CorrectIndex
			res.CorrectIndex = &correctIndex
			res.Correct = a.ChosenIndex == q.CorrectIndex
			if res.Correct {
				res.RewardCents = domain.RewardForDifficulty(q.Difficulty)
				out.CorrectCount++
				out.TotalReward += res.RewardCents
			}
		}
		out.Results = append(out.Results, res)
	}
	return out, nil
}

// settleDaily is the critical section. The player lock serializes concurrent
// submissions of the same user; the loser sees the completed task.
func (e *Engine) settleDaily(ctx context.Context, userID, playerID uuid.UUID, graded *domain.DailyRewardResult) (*domain.DailyRewardResult, error) {
	uow, err := e.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer uow.Rollback(ctx)

	player, err := e.LockPlayerForUpdate(ctx, uow, playerID)
	if err != nil {
		return nil, err
	}

	now := e.now().UTC()
	today := domain.DayKey(now)

	existing, err := uow.DailyTasks().LockForDay(ctx, userID, today)
	if err != nil {
		return nil, fmt.Errorf("load daily task: %w", err)
	}
	if existing != nil && existing.Completed {
		return nil, domain.ErrAlreadyCompleted(existing.Reward)
	}

	task := &domain.DailyTask{
		UserID:    userID,
		Day:       today,
		Date:      now,
		Completed: true,
		Reward:    graded.TotalReward,
		Results:   graded.Results,
	}
	if existing != nil {
		task.ID = existing.ID
	}
	if err := uow.DailyTasks().Upsert(ctx, task); err != nil {
		return nil, err
	}

	result := *graded
	result.NewBalance = player.CashCents
	if graded.TotalReward > 0 {
		entry, updated, err := e.PostLedgerEntry(ctx, uow, domain.PostLedgerEntryParams{
			PlayerID:    player.ID,
			Type:        domain.TxDailyReward,
			AmountCents: graded.TotalReward,
			Update:      domain.PlayerUpdate{CashDelta: graded.TotalReward, LastDailyAt: &now},
			Meta:        domain.DailyRewardMeta{CorrectCount: graded.CorrectCount, Date: now},
		})
		if err != nil {
			return nil, fmt.Errorf("daily reward post: %w", err)
		}
		result.NewBalance = updated.CashCents
		result.TransactionID = &entry.ID
	} else {
		// No ledger entry for a zero reward, but the day still counts as played.
		if _, err := uow.Players().Apply(ctx, player.ID, domain.PlayerUpdate{LastDailyAt: &now}); err != nil {
			return nil, fmt.Errorf("update player: %w", err)
		}
	}

	if err := uow.Outbox().Insert(ctx, domain.NewDailyTaskCompletedEvent(task, graded.CorrectCount)); err != nil {
		return nil, fmt.Errorf("insert outbox event: %w", err)
	}

	if err := uow.Commit(ctx); err != nil {
		return nil, err
	}
	return &result, nil
}
