package redis

import (
	"context"
	"encoding/json"
	"log"

	"github.com/redis/go-redis/v9"

	"ramadan-quiz-service/internal/domain"
)

const defaultKey = "quiz:state"

// Store keeps the whole application document under a single Redis key, as
// durable storage rather than a cache: the value carries no TTL and is
// replaced wholesale on every save.
type Store struct {
	client *redis.Client
	key    string
}

func NewStore(client *redis.Client) *Store {
	return &Store{client: client, key: defaultKey}
}

// Load fetches and parses the stored document. A missing key, connection
// problem, or malformed value falls back to the built-in default.
func (s *Store) Load(ctx context.Context) domain.State {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("could not read %s, starting from the default document: %v", s.key, err)
		}
		return domain.DefaultState()
	}

	var state domain.State
	if err := json.Unmarshal(data, &state); err != nil {
		log.Printf("could not parse %s, starting from the default document: %v", s.key, err)
		return domain.DefaultState()
	}
	return state
}

func (s *Store) Save(ctx context.Context, state domain.State) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key, data, 0).Err()
}
