package pipeline

import (
	"context"
	"testing"

	"github.com/vigilcore/sentry/pkg/config"
	"github.com/vigilcore/sentry/pkg/types"
)

func TestProcessRejectsOversizedText(t *testing.T) {
	p := NewPipeline(config.NewDefaultConfig())
	huge := make([]byte, MaxTextLength+1)
	for i := range huge {
		huge[i] = 'a'
	}
	resp := p.Process(context.Background(), Request{Text: string(huge)})
	if resp.Success {
		t.Fatal("expected oversized text to fail validation")
	}
	if len(resp.Errors) != 1 || resp.Errors[0] != string(ErrInputInvalid) {
		t.Errorf("expected input_invalid error, got %v", resp.Errors)
	}
}

func TestProcessSkipsWhenSmartFilterRejects(t *testing.T) {
	p := NewPipeline(config.NewDefaultConfig())
	resp := p.Process(context.Background(), Request{Text: "asdf"})
	if !resp.Success {
		t.Fatal("expected success even on smart-filter skip")
	}
	if resp.Decision.Risk != types.RiskSkip {
		t.Errorf("expected SKIP risk for low-signal text, got %v", resp.Decision.Risk)
	}
	if resp.NormalizedText != "" {
		t.Error("expected normalization to be skipped entirely")
	}
}

func TestProcessRunsFullPipelineForNameLikeText(t *testing.T) {
	p := NewPipeline(config.NewDefaultConfig())
	resp := p.Process(context.Background(), Request{Text: "ООО \"Вектор\" ИНН 7707083893 получатель Иванов Иван Иванович"})
	if !resp.Success {
		t.Fatalf("expected success, got errors %v", resp.Errors)
	}
	if resp.NormalizedText == "" {
		t.Error("expected normalized text to be populated")
	}
	if len(resp.Signals.Organizations) == 0 {
		t.Error("expected at least one organization signal")
	}
	if len(resp.Signals.Persons) == 0 {
		t.Error("expected at least one person signal")
	}
}

func TestProcessGeneratesVariantsWhenRequested(t *testing.T) {
	p := NewPipeline(config.NewDefaultConfig())
	resp := p.Process(context.Background(), Request{
		Text:    "Иванов Иван Иванович",
		Options: Options{GenerateVariants: true},
	})
	if !resp.Success {
		t.Fatalf("expected success, got errors %v", resp.Errors)
	}
	if len(resp.Variants) == 0 {
		t.Error("expected at least one variant when requested")
	}
}
