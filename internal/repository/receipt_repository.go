package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/atelier-nord/intake-api/internal/models"
)

const receiptKeyPrefix = "intake:receipt:"

// ReceiptRepository caches submission receipts in Redis so a restarted
// process can still confirm that a session was delivered.
type ReceiptRepository struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewReceiptRepository constructs a receipt repository.
func NewReceiptRepository(client *redis.Client, ttl time.Duration, logger *zap.Logger) *ReceiptRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReceiptRepository{client: client, ttl: ttl, logger: logger}
}

// Save stores the receipt under the session's key.
func (r *ReceiptRepository) Save(ctx context.Context, receipt models.SubmissionReceipt) error {
	if r == nil || r.client == nil {
		return nil
	}
	payload, err := json.Marshal(receipt)
	if err != nil {
		return fmt.Errorf("marshal receipt %s: %w", receipt.SessionID, err)
	}
	key := receiptKeyPrefix + receipt.SessionID
	if err := r.client.Set(ctx, key, payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Get returns the cached receipt, or nil when none exists.
func (r *ReceiptRepository) Get(ctx context.Context, sessionID string) (*models.SubmissionReceipt, error) {
	if r == nil || r.client == nil {
		return nil, nil
	}
	key := receiptKeyPrefix + sessionID
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	var receipt models.SubmissionReceipt
	if err := json.Unmarshal(raw, &receipt); err != nil {
		return nil, fmt.Errorf("unmarshal receipt %s: %w", sessionID, err)
	}
	return &receipt, nil
}

// Close releases the underlying Redis connection if present.
func (r *ReceiptRepository) Close() error {
	if r == nil || r.client == nil {
		return nil
	}
	return r.client.Close()
}
