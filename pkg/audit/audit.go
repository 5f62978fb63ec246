// Package audit implements the append-only decision audit sink described in
// SPEC_FULL's supplemented features: a redacted record of every HIGH or
// review-required verdict, kept for post-hoc compliance review. The original
// request text is never stored, only its hash and the verdict itself (§3
// Lifecycle already drops the in-memory DecisionOutput at response emission;
// this sink is a separate, explicit persistence path, not a retention of
// that in-memory value).
package audit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vigilcore/sentry/pkg/types"
)

// Sink writes redacted decision records to a Postgres table. A nil *Sink is
// valid and every method on it is a no-op, so callers can wire it
// unconditionally and skip the nil check.
type Sink struct {
	pool *pgxpool.Pool
}

// NewSink wraps an existing pgx pool. Call EnsureSchema once at startup.
func NewSink(pool *pgxpool.Pool) *Sink {
	return &Sink{pool: pool}
}

// EnsureSchema creates the audit table if it does not already exist.
func (s *Sink) EnsureSchema(ctx context.Context) error {
	if s == nil || s.pool == nil {
		return nil
	}
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS decision_audit (
			id          BIGSERIAL PRIMARY KEY,
			request_hash TEXT NOT NULL,
			risk        TEXT NOT NULL,
			score       DOUBLE PRECISION NOT NULL,
			review_required BOOLEAN NOT NULL,
			score_breakdown JSONB NOT NULL,
			recorded_at TIMESTAMPTZ NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("audit: ensuring schema: %w", err)
	}
	return nil
}

// RequestHash derives the stored identifier for a request: a sha256 digest
// of its text, never the text itself.
func RequestHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Record appends an entry for decision if it is HIGH risk or flagged for
// review; any other verdict is not audit-worthy and is skipped silently.
func (s *Sink) Record(ctx context.Context, requestText string, decision types.DecisionOutput, at time.Time) error {
	if s == nil || s.pool == nil {
		return nil
	}
	if decision.Risk != types.RiskHigh && !decision.ReviewRequired {
		return nil
	}

	breakdown, err := json.Marshal(decision.Details)
	if err != nil {
		return fmt.Errorf("audit: marshaling score breakdown: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO decision_audit (request_hash, risk, score, review_required, score_breakdown, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		RequestHash(requestText), string(decision.Risk), decision.Score, decision.ReviewRequired, breakdown, at)
	if err != nil {
		return fmt.Errorf("audit: inserting record: %w", err)
	}
	return nil
}
