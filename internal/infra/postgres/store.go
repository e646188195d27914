package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"ramadan-quiz-service/internal/domain"
)

// The document lives in a single JSONB row; id is fixed so saves are
// upserts of the whole state.
const stateRowID = 1

// Store persists the application document as one JSONB row in Postgres.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Load fetches and parses the stored document. A missing row, query
// failure, or malformed value falls back to the built-in default.
func (s *Store) Load(ctx context.Context) domain.State {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM quiz_state WHERE id=$1`, stateRowID).Scan(&raw)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			log.Printf("could not read quiz_state, starting from the default document: %v", err)
		}
		return domain.DefaultState()
	}

	var state domain.State
	if err := json.Unmarshal(raw, &state); err != nil {
		log.Printf("could not parse quiz_state, starting from the default document: %v", err)
		return domain.DefaultState()
	}
	return state
}

func (s *Store) Save(ctx context.Context, state domain.State) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO quiz_state (id, data) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data
	`, stateRowID, data)
	return err
}
