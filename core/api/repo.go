package api

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// PostgresRepository implements Repository on the migrated schema.
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository wraps an open connection pool.
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// translationColumn maps a language code to its words column. Codes are
// validated against a fixed set before reaching SQL text.
func translationColumn(code string) (string, error) {
	if !validTranslationCode(code) {
		return "", fmt.Errorf("api: invalid language code %q", code)
	}
	return code, nil
}

func (r *PostgresRepository) LevelExists(ctx context.Context, levelID string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM level WHERE level_id = $1)`, levelID)
	if err != nil {
		return false, fmt.Errorf("level exists %s: %w", levelID, err)
	}
	return exists, nil
}

func (r *PostgresRepository) CreateUser(ctx context.Context, u User) error {
	_, err := r.db.NamedExecContext(ctx,
		`INSERT INTO users (user_id, user_name, level_id, from_code2, to_code2)
		 VALUES (:user_id, :user_name, :level_id, :from_code2, :to_code2)
		 ON CONFLICT (user_id) DO UPDATE
		 SET user_name = EXCLUDED.user_name,
		     level_id = EXCLUDED.level_id,
		     from_code2 = EXCLUDED.from_code2,
		     to_code2 = EXCLUDED.to_code2`, u)
	if err != nil {
		return fmt.Errorf("create user %s: %w", u.UserID, err)
	}
	return nil
}

func (r *PostgresRepository) GetUser(ctx context.Context, userID string) (User, error) {
	var u User
	err := r.db.GetContext(ctx, &u,
		`SELECT user_id, COALESCE(user_name, '') AS user_name, level_id, from_code2, to_code2
		 FROM users WHERE user_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, fmt.Errorf("get user %s: %w", userID, ErrNotFound)
	}
	if err != nil {
		return User{}, fmt.Errorf("get user %s: %w", userID, err)
	}
	return u, nil
}

func (r *PostgresRepository) CreateWord(ctx context.Context, w Word) (Word, error) {
	rows, err := r.db.NamedQueryContext(ctx,
		`INSERT INTO words (level_id, de, en, es, ua, ru)
		 VALUES (:level_id, :de, :en, :es, :ua, :ru)
		 ON CONFLICT (de) DO UPDATE
		 SET level_id = EXCLUDED.level_id,
		     en = COALESCE(EXCLUDED.en, words.en),
		     es = COALESCE(EXCLUDED.es, words.es),
		     ua = COALESCE(EXCLUDED.ua, words.ua),
		     ru = COALESCE(EXCLUDED.ru, words.ru)
		 RETURNING word_id, level_id, de, en, es, ua, ru`, w)
	if err != nil {
		return Word{}, fmt.Errorf("create word %q: %w", w.DE, err)
	}
	defer rows.Close()
	if !rows.Next() {
		return Word{}, fmt.Errorf("create word %q: no row returned", w.DE)
	}
	var out Word
	if err := rows.StructScan(&out); err != nil {
		return Word{}, fmt.Errorf("create word %q: scan: %w", w.DE, err)
	}
	return out, nil
}

func (r *PostgresRepository) CountWords(ctx context.Context, levelID string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM words WHERE level_id = $1`, levelID)
	if err != nil {
		return 0, fmt.Errorf("count words %s: %w", levelID, err)
	}
	return count, nil
}

func (r *PostgresRepository) HasTranslation(ctx context.Context, levelID, code string) (bool, error) {
	col, err := translationColumn(code)
	if err != nil {
		return false, err
	}
	var has bool
	query := fmt.Sprintf(
		`SELECT EXISTS (
		   SELECT 1 FROM words
		   WHERE level_id = $1 AND %s IS NOT NULL AND btrim(%s) <> ''
		 )`, col, col)
	if err := r.db.GetContext(ctx, &has, query, levelID); err != nil {
		return false, fmt.Errorf("has translation %s/%s: %w", levelID, code, err)
	}
	return has, nil
}

func (r *PostgresRepository) RandomWord(ctx context.Context, code string) (RandomWord, error) {
	col, err := translationColumn(code)
	if err != nil {
		return RandomWord{}, err
	}
	var w RandomWord
	query := fmt.Sprintf(
		`SELECT word_id, de, %s AS translation
		 FROM words
		 WHERE %s IS NOT NULL AND btrim(%s) <> ''
		 ORDER BY random()
		 LIMIT 1`, col, col, col)
	qerr := r.db.GetContext(ctx, &w, query)
	if errors.Is(qerr, sql.ErrNoRows) {
		return RandomWord{}, fmt.Errorf("random word %s: %w", code, ErrNotFound)
	}
	if qerr != nil {
		return RandomWord{}, fmt.Errorf("random word %s: %w", code, qerr)
	}
	return w, nil
}

func (r *PostgresRepository) IncrementCorrectCount(ctx context.Context, userID string, wordID int64) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`INSERT INTO users_words (user_id, word_id, correct_count)
		 VALUES ($1, $2, 1)
		 ON CONFLICT (user_id, word_id) DO UPDATE
		 SET correct_count = users_words.correct_count + 1
		 RETURNING correct_count`, userID, wordID)
	if err != nil {
		return 0, fmt.Errorf("increment %s/%d: %w", userID, wordID, err)
	}
	return count, nil
}
