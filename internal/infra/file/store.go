package file

import (
	"context"
	"encoding/json"
	"log"
	"os"

	"ramadan-quiz-service/internal/domain"
)

// Store persists the application document as a single pretty-printed JSON
// file, rewritten wholesale on every save. It is the default backend and the
// sole durability mechanism when no external store is configured.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads and parses the backing file. A missing file, unreadable file,
// or malformed document all fall back to the built-in default; load never
// fails.
func (s *Store) Load(_ context.Context) domain.State {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("could not read %s, starting from the default document: %v", s.path, err)
		}
		return domain.DefaultState()
	}

	var state domain.State
	if err := json.Unmarshal(data, &state); err != nil {
		log.Printf("could not parse %s, starting from the default document: %v", s.path, err)
		return domain.DefaultState()
	}
	return state
}

// Save overwrites the backing file with the whole document. No retry, no
// atomic rename; last write wins.
func (s *Store) Save(_ context.Context, state domain.State) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o644)
}
