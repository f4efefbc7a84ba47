package match

// Config holds the matcher thresholds. Zero values are not usable; start
// from DefaultConfig and override fields as needed.
type Config struct {
	// MinEventLength gates whole paste events: shorter texts never
	// produce candidates.
	MinEventLength int

	// MinSubUnitLength gates individual sentences and phrases.
	MinSubUnitLength int

	// WordEditDistance is the maximum Levenshtein distance at which two
	// words still count as equivalent.
	WordEditDistance int

	// FuzzyThreshold is the minimum word-equivalence ratio for the
	// sliding-window fuzzy matcher.
	FuzzyThreshold float64

	// SentenceThreshold is the minimum word-equivalence ratio for
	// sentence-level similarity.
	SentenceThreshold float64

	// StructuralThreshold is the minimum composite score for the
	// structural matcher.
	StructuralThreshold float64

	// PhraseWords and ChunkWords are the window sizes for literal phrase
	// containment.
	PhraseWords int
	ChunkWords  int

	// PositionalMinHits and PositionalMinRatio gate the function-word
	// position matcher: a window is accepted when at least MinHits slots
	// carry the same function word and the hit ratio exceeds MinRatio.
	PositionalMinHits  int
	PositionalMinRatio float64
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		MinEventLength:      15,
		MinSubUnitLength:    10,
		WordEditDistance:    2,
		FuzzyThreshold:      0.75,
		SentenceThreshold:   0.70,
		StructuralThreshold: 0.60,
		PhraseWords:         3,
		ChunkWords:          6,
		PositionalMinHits:   3,
		PositionalMinRatio:  0.30,
	}
}
