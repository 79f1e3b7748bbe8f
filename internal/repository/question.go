package repository

import (
	"context"
	"fmt"

	"github.com/hamstergame/platform/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const questionColumns = `id, category, difficulty, prompt, answers, correct_index, created_at`

type questionRepo struct {
	db DBTX
}

func (r *questionRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Question, error) {
	if len(ids) == 0 {
		return []domain.Question{}, nil
	}
	rows, err := r.db.Query(ctx, `SELECT `+questionColumns+` FROM questions WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()
	return collectQuestions(rows)
}

func (r *questionRepo) Sample(ctx context.Context, n int) ([]domain.Question, error) {
	rows, err := r.db.Query(ctx, `SELECT `+questionColumns+` FROM questions ORDER BY random() LIMIT $1`, n)
	if err != nil {
		return nil, fmt.Errorf("sample questions: %w", err)
	}
	defer rows.Close()
	return collectQuestions(rows)
}

func (r *questionRepo) InsertIfAbsent(ctx context.Context, q *domain.Question) (bool, error) {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	tag, err := r.db.Exec(ctx, `
		INSERT INTO questions (id, category, difficulty, prompt, answers, correct_index)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (prompt) DO NOTHING`,
		q.ID, q.Category, q.Difficulty, q.Prompt, q.Answers, q.CorrectIndex)
	if err != nil {
		return false, fmt.Errorf("insert question: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func collectQuestions(rows pgx.Rows) ([]domain.Question, error) {
	questions := []domain.Question{}
	for rows.Next() {
		var q domain.Question
		if err := rows.Scan(&q.ID, &q.Category, &q.Difficulty, &q.Prompt, &q.Answers, &q.CorrectIndex, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan question row: %w", err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}
