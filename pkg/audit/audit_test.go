package audit

import (
	"context"
	"testing"
	"time"

	"github.com/vigilcore/sentry/pkg/types"
)

func TestNilBackedSinkIsNoOp(t *testing.T) {
	var sink *Sink
	if err := sink.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema on nil sink returned error: %v", err)
	}

	decision := types.DecisionOutput{Risk: types.RiskHigh, Score: 0.9}
	if err := sink.Record(context.Background(), "some narrative", decision, time.Now()); err != nil {
		t.Fatalf("Record on nil sink returned error: %v", err)
	}

	unconnected := NewSink(nil)
	if err := unconnected.Record(context.Background(), "some narrative", decision, time.Now()); err != nil {
		t.Fatalf("Record on unconnected sink returned error: %v", err)
	}
}

func TestRequestHashIsStableAndDoesNotLeakText(t *testing.T) {
	a := RequestHash("Иванов Иван Иванович")
	b := RequestHash("Иванов Иван Иванович")
	if a != b {
		t.Error("expected identical input to hash identically")
	}
	if a == "Иванов Иван Иванович" {
		t.Error("hash must not equal the raw text")
	}

	c := RequestHash("ООО Вектор")
	if a == c {
		t.Error("expected different input to produce a different hash")
	}
}
