package pipeline

import "github.com/vigilcore/sentry/pkg/types"

// Response is the full result of running a request through the nine-layer
// pipeline (§6). Variants and Embeddings are nil unless the corresponding
// request option was set.
type Response struct {
	OriginalText       string                     `json:"original_text"`
	Language           types.Language             `json:"language"`
	LanguageConfidence float64                    `json:"language_confidence"`
	NormalizedText     string                     `json:"normalized_text"`
	Tokens             []string                   `json:"tokens"`
	Trace              []types.TokenTrace         `json:"trace"`
	Signals            types.SignalsResult        `json:"signals"`
	Variants           []string                   `json:"variants,omitempty"`
	Embeddings         []float32                  `json:"embeddings,omitempty"`
	Decision           types.DecisionOutput        `json:"decision"`
	ProcessingTimeMs   float64                    `json:"processing_time_ms"`
	Success            bool                       `json:"success"`
	Errors             []string                   `json:"errors,omitempty"`
}
