package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgallion1/essaygest/internal/scoring"
)

const selectColumns = `SELECT
    id, user_id, title, memo, question_text, answer_text, score, max_score,
    strengths, weaknesses, improvements, categories, detailed_analysis,
    created_at, updated_at
FROM analysis_history`

type rowScanner interface {
	Scan(dest ...any) error
}

type jsonColumns struct {
	strengths    string
	weaknesses   string
	improvements string
	categories   string
	detailed     string
}

func encodeColumns(a scoring.Analysis) (jsonColumns, error) {
	var cols jsonColumns
	for _, f := range []struct {
		dst *string
		v   any
	}{
		{&cols.strengths, a.Strengths},
		{&cols.weaknesses, a.Weaknesses},
		{&cols.improvements, a.Improvements},
		{&cols.categories, a.Categories},
		{&cols.detailed, a.DetailedAnalysis},
	} {
		b, err := json.Marshal(f.v)
		if err != nil {
			return jsonColumns{}, fmt.Errorf("encode history column: %w", err)
		}
		*f.dst = string(b)
	}
	return cols, nil
}

func scanRecord(row rowScanner) (Record, error) {
	var (
		rec                Record
		memo               sql.NullString
		cols               jsonColumns
		createdAt, updated string
	)
	err := row.Scan(
		&rec.ID, &rec.UserID, &rec.Title, &memo, &rec.QuestionText, &rec.AnswerText,
		&rec.Score, &rec.MaxScore,
		&cols.strengths, &cols.weaknesses, &cols.improvements, &cols.categories, &cols.detailed,
		&createdAt, &updated,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return Record{}, err
		}
		return Record{}, fmt.Errorf("scan history record: %w", err)
	}
	rec.Memo = memo.String

	for _, f := range []struct {
		src string
		dst any
	}{
		{cols.strengths, &rec.Strengths},
		{cols.weaknesses, &rec.Weaknesses},
		{cols.improvements, &rec.Improvements},
		{cols.categories, &rec.Categories},
		{cols.detailed, &rec.DetailedAnalysis},
	} {
		if err := json.Unmarshal([]byte(f.src), f.dst); err != nil {
			return Record{}, fmt.Errorf("decode history record %s: %w", rec.ID, err)
		}
	}

	if rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return Record{}, fmt.Errorf("parse created_at: %w", err)
	}
	if rec.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated); err != nil {
		return Record{}, fmt.Errorf("parse updated_at: %w", err)
	}
	return rec, nil
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
