// Package config loads and validates ScreeningConfig, the tunable knobs for
// every layer of the screening pipeline. It follows the same
// defaults-then-overlay construction as the teacher's detection profiles,
// generalized to file and environment overlays.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ScreeningConfig holds every tunable threshold and weight used by the
// pipeline. Construction is defaults -> YAML overlay -> env overlay; the
// resulting value is treated as immutable (§5: hot-reload replaces the whole
// object, it never mutates fields in place).
type ScreeningConfig struct {
	Profile string `yaml:"profile"`

	// Layer 2 smart filter.
	SmartFilterRecommendThreshold float64 `yaml:"smart_filter_recommend_threshold"`
	SmartFilterMaybeThreshold     float64 `yaml:"smart_filter_maybe_threshold"`

	// Layer 3 language detection.
	LanguageMinConfidence float64 `yaml:"language_min_confidence"`

	// Layer 4.1.6 morphology/dictionary cache.
	MorphCacheSize     int `yaml:"morph_cache_size"`
	DictionaryCacheTTL int `yaml:"dictionary_cache_ttl_seconds"`

	// Layer 4.3 hybrid search.
	ACConfidenceThreshold     float64 `yaml:"ac_confidence_threshold"`
	VectorCosineThreshold     float64 `yaml:"vector_cosine_threshold"`
	HighConfT0T1Threshold     float64 `yaml:"high_conf_t0_t1_threshold"`
	HighConfT3Threshold       float64 `yaml:"high_conf_t3_threshold"`

	// Layer 9 decision weights (defaults per the scoring formula).
	WeightSmartFilter float64 `yaml:"weight_smart_filter"`
	WeightPerson      float64 `yaml:"weight_person"`
	WeightOrg         float64 `yaml:"weight_org"`
	WeightSimilarity  float64 `yaml:"weight_similarity"`

	WeightSearchExact  float64 `yaml:"weight_search_exact"`
	WeightSearchPhrase float64 `yaml:"weight_search_phrase"`
	WeightSearchNgram  float64 `yaml:"weight_search_ngram"`
	WeightSearchVector float64 `yaml:"weight_search_vector"`

	ThrSearchExact  float64 `yaml:"thr_search_exact"`
	ThrSearchPhrase float64 `yaml:"thr_search_phrase"`
	ThrSearchNgram  float64 `yaml:"thr_search_ngram"`
	ThrSearchVector float64 `yaml:"thr_search_vector"`

	BonusExactMatch      float64 `yaml:"bonus_exact_match"`
	BonusExactMatchAt     float64 `yaml:"bonus_exact_match_threshold"`
	BonusMultipleMatches  float64 `yaml:"bonus_multiple_matches"`
	BonusHighConfMatches  float64 `yaml:"bonus_high_conf_matches"`
	BonusDateMatch        float64 `yaml:"bonus_date_match"`
	BonusIDMatch          float64 `yaml:"bonus_id_match"`

	ThrHigh   float64 `yaml:"thr_high"`
	ThrMedium float64 `yaml:"thr_medium"`

	RequireTINDOBGate     bool    `yaml:"require_tin_dob_gate"`
	StrongMatchThreshold  float64 `yaml:"strong_match_threshold"`

	MaxLatencyThresholdMs int `yaml:"max_latency_threshold_ms"`

	// Context discount (supplemented feature, §SUPPLEMENTED FEATURES).
	ContextDiscountEnabled bool    `yaml:"context_discount_enabled"`
	EducationalDiscount    float64 `yaml:"educational_discount"`
	ProfessionalDiscount   float64 `yaml:"professional_discount"`
	HistoricalDiscount     float64 `yaml:"historical_discount"`
}

// NewDefaultConfig returns the balanced-profile defaults from §4.4.
func NewDefaultConfig() *ScreeningConfig {
	return &ScreeningConfig{
		Profile: "balanced",

		SmartFilterRecommendThreshold: 0.6,
		SmartFilterMaybeThreshold:     0.3,

		LanguageMinConfidence: 0.5,

		MorphCacheSize:     10000,
		DictionaryCacheTTL: 3600,

		ACConfidenceThreshold: 0.6,
		VectorCosineThreshold: 0.45,
		HighConfT0T1Threshold: 0.80,
		HighConfT3Threshold:   0.90,

		WeightSmartFilter: 0.25,
		WeightPerson:      0.30,
		WeightOrg:         0.15,
		WeightSimilarity:  0.25,

		WeightSearchExact:  0.40,
		WeightSearchPhrase: 0.25,
		WeightSearchNgram:  0.20,
		WeightSearchVector: 0.15,

		ThrSearchExact:  0.80,
		ThrSearchPhrase: 0.70,
		ThrSearchNgram:  0.60,
		ThrSearchVector: 0.50,

		BonusExactMatch:      0.20,
		BonusExactMatchAt:    0.95,
		BonusMultipleMatches: 0.10,
		BonusHighConfMatches: 0.05,
		BonusDateMatch:       0.07,
		BonusIDMatch:         0.15,

		ThrHigh:   0.85,
		ThrMedium: 0.50,

		RequireTINDOBGate:    true,
		StrongMatchThreshold: 0.8,

		MaxLatencyThresholdMs: 2000,

		ContextDiscountEnabled: false,
		EducationalDiscount:    0.15,
		ProfessionalDiscount:   0.20,
		HistoricalDiscount:     0.15,
	}
}

// NewStrictConfig tightens thresholds for high-risk corridors: lower
// bar to reach HIGH, lower bar for what counts as a strong match.
func NewStrictConfig() *ScreeningConfig {
	cfg := NewDefaultConfig()
	cfg.Profile = "strict"
	cfg.ThrHigh = 0.70
	cfg.ThrMedium = 0.40
	cfg.ACConfidenceThreshold = 0.5
	cfg.VectorCosineThreshold = 0.35
	cfg.StrongMatchThreshold = 0.70
	return cfg
}

// NewPermissiveConfig relaxes thresholds for low-risk corridors.
func NewPermissiveConfig() *ScreeningConfig {
	cfg := NewDefaultConfig()
	cfg.Profile = "permissive"
	cfg.ThrHigh = 0.92
	cfg.ThrMedium = 0.60
	cfg.ACConfidenceThreshold = 0.70
	cfg.VectorCosineThreshold = 0.55
	cfg.StrongMatchThreshold = 0.85
	cfg.ContextDiscountEnabled = true
	return cfg
}

// GetProfile returns a named config profile, defaulting to balanced for an
// unknown or empty name.
func GetProfile(name string) *ScreeningConfig {
	switch strings.ToLower(name) {
	case "strict":
		return NewStrictConfig()
	case "balanced", "default", "":
		return NewDefaultConfig()
	case "permissive":
		return NewPermissiveConfig()
	default:
		return NewDefaultConfig()
	}
}

// Load builds a config starting from the named profile, overlays a YAML
// file at path if non-empty, then overlays SCREEN_-prefixed environment
// variables. Any stage may be absent; Load never fails on a missing file.
func Load(profileName string, yamlPath string) (*ScreeningConfig, error) {
	cfg := GetProfile(profileName)

	if yamlPath != "" {
		data, err := os.ReadFile(yamlPath)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("config: reading %s: %w", yamlPath, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parsing %s: %w", yamlPath, err)
		}
	}

	applyEnvOverlay(cfg)
	return cfg, nil
}

func applyEnvOverlay(cfg *ScreeningConfig) {
	if v, ok := os.LookupEnv("SCREEN_PROFILE"); ok && v != "" {
		cfg.Profile = v
	}
	cfg.ThrHigh = getEnvFloat("SCREEN_THR_HIGH", cfg.ThrHigh)
	cfg.ThrMedium = getEnvFloat("SCREEN_THR_MEDIUM", cfg.ThrMedium)
	cfg.MorphCacheSize = clampInt(GetEnvInt("SCREEN_MORPH_CACHE_SIZE", cfg.MorphCacheSize), minMorphCacheSize, maxMorphCacheSize)
	cfg.MaxLatencyThresholdMs = clampInt(GetEnvInt("SCREEN_MAX_LATENCY_MS", cfg.MaxLatencyThresholdMs), minLatencyThresholdMs, maxLatencyThresholdMs)
	if v, ok := os.LookupEnv("SCREEN_REQUIRE_TIN_DOB_GATE"); ok {
		cfg.RequireTINDOBGate = v == "true" || v == "1"
	}
}

// Bounds for env-overridden int knobs: an operator typo (or a malicious
// override) must not be able to set the morphology cache size to zero or
// stretch the latency budget past what the pipeline is sized for.
// MorphCacheSize is carried in the config only; pkg/morph does not read it.
const (
	minMorphCacheSize = 100
	maxMorphCacheSize = 1_000_000

	minLatencyThresholdMs = 50
	maxLatencyThresholdMs = 60_000
)

// GetEnvInt reads an int from an environment variable, falling back to def
// when the variable is unset or not a valid integer.
func GetEnvInt(name string, def int) int {
	v, ok := os.LookupEnv(name)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvFloat(name string, def float64) float64 {
	v, ok := os.LookupEnv(name)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

// clampInt constrains val to the closed interval [min, max].
func clampInt(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
