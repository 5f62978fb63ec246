package pipeline

import "github.com/vigilcore/sentry/pkg/types"

// MaxTextLength is the hard length bound from §1/§6: requests longer than
// this are rejected at layer 1 with ErrInputInvalid.
const MaxTextLength = 10000

// Options carries the per-request feature flags from §6.
type Options struct {
	GenerateVariants   bool            `json:"generate_variants"`
	GenerateEmbeddings bool            `json:"generate_embeddings"`
	Flags              map[string]bool `json:"flags,omitempty"`
	CacheResult        bool            `json:"cache_result"`

	// RequestHasTIN / RequestHasDOB feed the decision engine's TIN+DOB
	// review gate — whether the caller's own record already supplies them.
	RequestHasTIN bool `json:"request_has_tin"`
	RequestHasDOB bool `json:"request_has_dob"`
}

// Request is the entry point to the core pipeline (§6).
type Request struct {
	Text     string          `json:"text"`
	Language types.Language  `json:"language,omitempty"`
	Options  Options         `json:"options,omitempty"`
}

// flagEnabled reads a boolean feature flag, defaulting to def when absent.
func (r Request) flagEnabled(name string, def bool) bool {
	if r.Options.Flags == nil {
		return def
	}
	v, ok := r.Options.Flags[name]
	if !ok {
		return def
	}
	return v
}
