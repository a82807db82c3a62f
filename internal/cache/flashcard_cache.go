package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"studydeck/internal/model"
)

const defaultFlashcardTTL = 5 * time.Minute

// FlashcardCache keeps each session's flashcard listing in Redis. Writers
// invalidate after saving; readers repopulate on miss.
type FlashcardCache struct {
	client *redisv9.Client
	ttl    time.Duration
}

func NewFlashcardCache(client *redisv9.Client, ttl time.Duration) *FlashcardCache {
	if ttl <= 0 {
		ttl = defaultFlashcardTTL
	}
	return &FlashcardCache{client: client, ttl: ttl}
}

func (c *FlashcardCache) Get(ctx context.Context, sessionID uint) ([]model.Flashcard, bool, error) {
	raw, err := c.client.Get(ctx, c.key(sessionID)).Bytes()
	if errors.Is(err, redisv9.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get flashcards failed: %w", err)
	}

	var cards []model.Flashcard
	if err := json.Unmarshal(raw, &cards); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached flashcards failed: %w", err)
	}
	return cards, true, nil
}

func (c *FlashcardCache) Set(ctx context.Context, sessionID uint, cards []model.Flashcard) error {
	if cards == nil {
		cards = []model.Flashcard{}
	}
	payload, err := json.Marshal(cards)
	if err != nil {
		return fmt.Errorf("marshal flashcards cache failed: %w", err)
	}
	if err := c.client.Set(ctx, c.key(sessionID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set flashcards failed: %w", err)
	}
	return nil
}

func (c *FlashcardCache) Invalidate(ctx context.Context, sessionID uint) error {
	if err := c.client.Del(ctx, c.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis delete flashcards failed: %w", err)
	}
	return nil
}

func (c *FlashcardCache) key(sessionID uint) string {
	return fmt.Sprintf("studydeck:flashcards:%d", sessionID)
}
