package events

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Checkpointer remembers the last sequence a consumer applied per partition.
type Checkpointer interface {
	GetLastSequence(ctx context.Context, consumerName, partitionKey string) (int64, bool, error)
	UpsertLastSequence(ctx context.Context, consumerName, partitionKey string, seq int64) error
}

// Executor is the subset of pgx used for checkpoints; a pool or a tx.
type Executor interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type CheckpointRepository struct {
	executor Executor
}

func NewCheckpointRepository(exec Executor) *CheckpointRepository {
	return &CheckpointRepository{executor: exec}
}

// GetLastSequence reports whether a checkpoint existed alongside its value.
func (r *CheckpointRepository) GetLastSequence(ctx context.Context, consumerName, partitionKey string) (int64, bool, error) {
	var last int64
	if err := r.executor.QueryRow(ctx, `
		SELECT last_sequence
		FROM event_dedup_checkpoint
		WHERE consumer_name=$1 AND partition_key=$2
	`, consumerName, partitionKey).Scan(&last); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("select checkpoint: %w", err)
	}
	return last, true, nil
}

// UpsertLastSequence only ever moves a checkpoint forward.
func (r *CheckpointRepository) UpsertLastSequence(ctx context.Context, consumerName, partitionKey string, seq int64) error {
	_, err := r.executor.Exec(ctx, `
		INSERT INTO event_dedup_checkpoint (consumer_name, partition_key, last_sequence)
		VALUES ($1, $2, $3)
		ON CONFLICT (consumer_name, partition_key)
		DO UPDATE SET
			last_sequence = GREATEST(event_dedup_checkpoint.last_sequence, EXCLUDED.last_sequence),
			updated_at = now()
	`, consumerName, partitionKey, seq)
	if err != nil {
		return fmt.Errorf("upsert checkpoint: %w", err)
	}
	return nil
}

type MemoryCheckpoints struct {
	mu   sync.Mutex
	last map[string]int64
}

func NewMemoryCheckpoints() *MemoryCheckpoints {
	return &MemoryCheckpoints{last: make(map[string]int64)}
}

func (m *MemoryCheckpoints) GetLastSequence(_ context.Context, consumerName, partitionKey string) (int64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.last[consumerName+"/"+partitionKey]
	return v, ok, nil
}

func (m *MemoryCheckpoints) UpsertLastSequence(_ context.Context, consumerName, partitionKey string, seq int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := consumerName + "/" + partitionKey
	if seq > m.last[k] {
		m.last[k] = seq
	}
	return nil
}
