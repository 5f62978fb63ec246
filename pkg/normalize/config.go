package normalize

// YoStrategy controls how layer 4 treats the Russian letter ё.
type YoStrategy string

const (
	YoPreserve YoStrategy = "preserve"
	YoFold     YoStrategy = "fold"
)

// Config holds every tunable flag for name normalization (layer 5), mirroring
// the enumerated effects list.
type Config struct {
	RemoveStopWords        bool
	PreserveNames          bool
	EnableAdvancedFeatures bool
	ASCIIFastpath          bool

	RuYoStrategy             YoStrategy
	PreserveFeminineSuffixUK bool
	StrictStopwords          bool

	EnableENNicknames        bool
	EnableRUNicknameExpansion bool

	EnableSpacyUKNer bool
	EnableSpacyRUNer bool
	EnableSpacyENNer bool

	EnableNameparserEN         bool
	MorphologyCustomRulesFirst bool
}

// DefaultConfig returns the balanced set of defaults used when the caller
// does not supply an explicit Config.
func DefaultConfig() Config {
	return Config{
		RemoveStopWords:        true,
		PreserveNames:          true,
		EnableAdvancedFeatures: true,
		ASCIIFastpath:          false,

		RuYoStrategy:             YoPreserve,
		PreserveFeminineSuffixUK: true,
		StrictStopwords:          true,

		EnableENNicknames:         true,
		EnableRUNicknameExpansion: true,
	}
}
