package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hamstergame/platform/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const dailyTaskColumns = `id, user_id, to_char(day, 'YYYY-MM-DD'), date, completed, reward, questions`

type dailyTaskRepo struct {
	db DBTX
}

func (r *dailyTaskRepo) FindForDay(ctx context.Context, userID uuid.UUID, day string) (*domain.DailyTask, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+dailyTaskColumns+`
		FROM daily_tasks WHERE user_id = $1 AND day = $2::date`, userID, day)
	return scanDailyTask(row)
}

func (r *dailyTaskRepo) LockForDay(ctx context.Context, userID uuid.UUID, day string) (*domain.DailyTask, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+dailyTaskColumns+`
		FROM daily_tasks WHERE user_id = $1 AND day = $2::date
		FOR UPDATE`, userID, day)
	return scanDailyTask(row)
}

// Upsert relies on UNIQUE (user_id, day); an existing row keeps its id.
func (r *dailyTaskRepo) Upsert(ctx context.Context, task *domain.DailyTask) error {
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	results := task.Results
	if results == nil {
		results = []domain.QuestionResult{}
	}
	body, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("marshal daily results: %w", err)
	}

	err = r.db.QueryRow(ctx, `
		INSERT INTO daily_tasks (id, user_id, day, date, completed, reward, questions)
		VALUES ($1, $2, $3::date, $4, $5, $6, $7)
		ON CONFLICT (user_id, day) DO UPDATE
		SET date = EXCLUDED.date,
		    completed = EXCLUDED.completed,
		    reward = EXCLUDED.reward,
		    questions = EXCLUDED.questions
		RETURNING id`,
		task.ID, task.UserID, task.Day, task.Date, task.Completed, task.Reward, body,
	).Scan(&task.ID)
	if err != nil {
		return fmt.Errorf("upsert daily task: %w", err)
	}
	return nil
}

func scanDailyTask(row pgx.Row) (*domain.DailyTask, error) {
	var t domain.DailyTask
	var body []byte
	err := row.Scan(&t.ID, &t.UserID, &t.Day, &t.Date, &t.Completed, &t.Reward, &body)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan daily task: %w", err)
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &t.Results); err != nil {
			return nil, fmt.Errorf("decode daily results: %w", err)
		}
	}
	return &t, nil
}
