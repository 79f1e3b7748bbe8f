package ledger

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hamstergame/platform/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteDailyReward_AllCorrect(t *testing.T) {
	f := newFixture(t, 5_000_000)
	q1 := f.addQuestion(t, "Wie viele Kontinente gibt es?", 2, strp("leicht"))
	q2 := f.addQuestion(t, "Welches Unternehmen produziert den 911?", 1, strp("mittel"))

	res, err := f.engine.ExecuteDailyReward(context.Background(), domain.DailyAnswersInput{
		Identity: f.user.Email,
		Answers: []domain.DailyAnswer{
			{QuestionID: q1.ID.String(), ChosenIndex: 2},
			{QuestionID: q2.ID.String(), ChosenIndex: 1},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, res.CorrectCount)
	assert.Equal(t, int64(3000), res.TotalReward)
	assert.Equal(t, int64(5_003_000), res.NewBalance)
	require.Len(t, res.Results, 2)
	assert.Equal(t, int64(1000), res.Results[0].RewardCents)
	assert.Equal(t, int64(2000), res.Results[1].RewardCents)
	require.NotNil(t, res.Results[0].CorrectIndex)
	assert.Equal(t, 2, *res.Results[0].CorrectIndex)

	assert.Equal(t, int64(5_003_000), f.cash(t))

	txs := f.ledger(t)
	require.Len(t, txs, 1)
	assert.Equal(t, domain.TxDailyReward, txs[0].Type)
	assert.Equal(t, int64(3000), txs[0].AmountCents)
	meta, ok := txs[0].Meta.(domain.DailyRewardMeta)
	require.True(t, ok)
	assert.Equal(t, 2, meta.CorrectCount)

	task, err := f.store.DailyTasks().FindForDay(context.Background(), f.user.ID, "2026-06-04")
	require.NoError(t, err)
	require.NotNil(t, task)
	assert.True(t, task.Completed)
	assert.Equal(t, int64(3000), task.Reward)
	assert.Len(t, task.Results, 2)

	p, _ := f.store.Players().FindByID(context.Background(), f.player.ID)
	require.NotNil(t, p.LastDailyAt)
	assert.True(t, f.clock.Now().Equal(*p.LastDailyAt))

	events := f.outbox(t)
	require.Len(t, events, 2)
	assert.Equal(t, domain.EventTransactionPosted, events[0].EventType)
	assert.Equal(t, domain.EventDailyTaskCompleted, events[1].EventType)

	f.assertAudit(t)
}

func TestExecuteDailyReward_MixedAnswers(t *testing.T) {
	f := newFixture(t, 0)
	hard := f.addQuestion(t, "Hard", 0, strp("SCHWER"))
	odd := f.addQuestion(t, "Odd", 3, strp("extreme"))
	wrong := f.addQuestion(t, "Wrong", 1, nil)

	res, err := f.engine.ExecuteDailyReward(context.Background(), domain.DailyAnswersInput{
		Identity: f.user.Email,
		Answers: []domain.DailyAnswer{
			{QuestionID: hard.ID.String(), ChosenIndex: 0},
			{QuestionID: odd.ID.String(), ChosenIndex: 3},
			{QuestionID: wrong.ID.String(), ChosenIndex: 2},
			{QuestionID: uuid.NewString(), ChosenIndex: 0},
			{QuestionID: "not-a-uuid", ChosenIndex: 0},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, res.CorrectCount)
	assert.Equal(t, int64(5000+1500), res.TotalReward)
	require.Len(t, res.Results, 5)

	assert.False(t, res.Results[2].Correct)
	assert.Equal(t, int64(0), res.Results[2].RewardCents)
	require.NotNil(t, res.Results[2].CorrectIndex)
	assert.Equal(t, 1, *res.Results[2].CorrectIndex)

	for _, unknown := range res.Results[3:] {
		assert.False(t, unknown.Correct)
		assert.Nil(t, unknown.CorrectIndex)
		assert.Equal(t, int64(0), unknown.RewardCents)
	}
	assert.Equal(t, "not-a-uuid", res.Results[4].QuestionID)
}

func TestExecuteDailyReward_ZeroReward(t *testing.T) {
	f := newFixture(t, 1000)
	q := f.addQuestion(t, "Q", 0, nil)

	res, err := f.engine.ExecuteDailyReward(context.Background(), domain.DailyAnswersInput{
		Identity: f.user.Email,
		Answers:  []domain.DailyAnswer{{QuestionID: q.ID.String(), ChosenIndex: 3}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.TotalReward)
	assert.Nil(t, res.TransactionID)

	assert.Empty(t, f.ledger(t), "zero-amount entries are never recorded")
	assert.Equal(t, int64(1000), f.cash(t))

	task, _ := f.store.DailyTasks().FindForDay(context.Background(), f.user.ID, "2026-06-04")
	require.NotNil(t, task)
	assert.True(t, task.Completed)

	p, _ := f.store.Players().FindByID(context.Background(), f.player.ID)
	assert.NotNil(t, p.LastDailyAt)

	_, err = f.engine.ExecuteDailyReward(context.Background(), domain.DailyAnswersInput{
		Identity: f.user.Email,
		Answers:  []domain.DailyAnswer{{QuestionID: q.ID.String(), ChosenIndex: 0}},
	})
	appErr := requireCode(t, err, domain.CodeAlreadyCompleted)
	assert.Equal(t, int64(0), appErr.Details["reward"])
}

func TestExecuteDailyReward_SecondSubmissionRejected(t *testing.T) {
	f := newFixture(t, 0)
	q := f.addQuestion(t, "Q", 1, strp("mittel"))
	answers := []domain.DailyAnswer{{QuestionID: q.ID.String(), ChosenIndex: 1}}

	_, err := f.engine.ExecuteDailyReward(context.Background(), domain.DailyAnswersInput{Identity: f.user.Email, Answers: answers})
	require.NoError(t, err)

	f.clock.Set(time.Date(2026, 6, 4, 23, 59, 59, 999_000_000, time.UTC))
	_, err = f.engine.ExecuteDailyReward(context.Background(), domain.DailyAnswersInput{Identity: f.user.Email, Answers: answers})
	appErr := requireCode(t, err, domain.CodeAlreadyCompleted)
	assert.Equal(t, 409, appErr.Status)
	assert.Equal(t, int64(2000), appErr.Details["reward"])

	assert.Equal(t, int64(2000), f.cash(t))
	assert.Len(t, f.ledger(t), 1)
}

func TestExecuteDailyReward_NextUTCDayAllowed(t *testing.T) {
	f := newFixture(t, 0)
	q := f.addQuestion(t, "Q", 0, strp("easy"))
	answers := []domain.DailyAnswer{{QuestionID: q.ID.String(), ChosenIndex: 0}}

	_, err := f.engine.ExecuteDailyReward(context.Background(), domain.DailyAnswersInput{Identity: f.user.Email, Answers: answers})
	require.NoError(t, err)

	f.clock.Set(time.Date(2026, 6, 5, 0, 0, 0, 0, time.UTC))
	res, err := f.engine.ExecuteDailyReward(context.Background(), domain.DailyAnswersInput{Identity: f.user.Email, Answers: answers})
	require.NoError(t, err)
	assert.Equal(t, int64(2000), res.NewBalance)
	f.assertAudit(t)
}

func TestExecuteDailyReward_Validation(t *testing.T) {
	f := newFixture(t, 0)

	_, err := f.engine.ExecuteDailyReward(context.Background(), domain.DailyAnswersInput{Identity: f.user.Email})
	requireCode(t, err, domain.CodeValidation)

	id := uuid.NewString()
	_, err = f.engine.ExecuteDailyReward(context.Background(), domain.DailyAnswersInput{
		Identity: f.user.Email,
		Answers:  []domain.DailyAnswer{{QuestionID: id}, {QuestionID: id, ChosenIndex: 1}},
	})
	requireCode(t, err, domain.CodeValidation)

	_, err = f.engine.ExecuteDailyReward(context.Background(), domain.DailyAnswersInput{
		Identity: "ghost@local",
		Answers:  []domain.DailyAnswer{{QuestionID: id}},
	})
	requireCode(t, err, domain.CodeNotFound)
}

func TestExecuteDailyReward_DuplicateSpellingsRejected(t *testing.T) {
	f := newFixture(t, 0)
	q := f.addQuestion(t, "Q", 0, strp("schwer"))
	id := q.ID.String()

	spellings := map[string]string{
		"upper case": strings.ToUpper(id),
		"braces":     "{" + id + "}",
		"urn":        "urn:uuid:" + id,
	}
	for name, alt := range spellings {
		t.Run(name, func(t *testing.T) {
			_, err := f.engine.ExecuteDailyReward(context.Background(), domain.DailyAnswersInput{
				Identity: f.user.Email,
				Answers:  []domain.DailyAnswer{{QuestionID: id}, {QuestionID: alt}},
			})
			requireCode(t, err, domain.CodeValidation)
		})
	}

	assert.Equal(t, int64(0), f.cash(t))
	assert.Empty(t, f.ledger(t))

	res, err := f.engine.ExecuteDailyReward(context.Background(), domain.DailyAnswersInput{
		Identity: f.user.Email,
		Answers:  []domain.DailyAnswer{{QuestionID: strings.ToUpper(id)}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.CorrectCount)
	assert.Equal(t, int64(5000), res.TotalReward)
}

func TestExecuteDailyReward_ConcurrentSubmissionsSettleOnce(t *testing.T) {
	f := newFixture(t, 0)
	q := f.addQuestion(t, "Q", 0, strp("schwer"))

	const attempts = 10
	var wg sync.WaitGroup
	var mu sync.Mutex
	var succeeded, completed int

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.engine.ExecuteDailyReward(context.Background(), domain.DailyAnswersInput{
				Identity: f.user.Email,
				Answers:  []domain.DailyAnswer{{QuestionID: q.ID.String(), ChosenIndex: 0}},
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
			} else if domain.IsCode(err, domain.CodeAlreadyCompleted) {
				completed++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, completed)
	assert.Equal(t, int64(5000), f.cash(t))
	assert.Len(t, f.ledger(t), 1)
}

func TestDailyAndPurchase_Interleaved(t *testing.T) {
	f := newFixture(t, 1_000)
	q := f.addQuestion(t, "Q", 0, strp("hard"))
	item := f.addItem(t, "Kaffee", 4_000)

	_, err := f.engine.ExecutePurchase(context.Background(), domain.PurchaseInput{Identity: f.user.Email, ItemID: item.ID.String()})
	requireCode(t, err, domain.CodeInsufficientFund)

	_, err = f.engine.ExecuteDailyReward(context.Background(), domain.DailyAnswersInput{
		Identity: f.user.Email,
		Answers:  []domain.DailyAnswer{{QuestionID: q.ID.String(), ChosenIndex: 0}},
	})
	require.NoError(t, err)

	res, err := f.engine.ExecutePurchase(context.Background(), domain.PurchaseInput{Identity: f.user.Email, ItemID: item.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, int64(2_000), res.NewBalance)

	audit, err := f.engine.AuditPlayer(context.Background(), f.player.ID)
	require.NoError(t, err)
	assert.True(t, audit.AllPassed)
	assert.Equal(t, 2, audit.TransactionCount)
}
