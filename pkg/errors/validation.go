package errors

// MaxVoices is the number of independent voices a rhythm column can hold.
const MaxVoices = 4

// ValidateVoice checks that a voice index addresses one of the column slots.
func ValidateVoice(voice int) error {
	if voice < 0 || voice >= MaxVoices {
		return New(ErrCodeInvalidArg, "voice %d out of range [0, %d)", voice, MaxVoices)
	}
	return nil
}

// ValidatePlayCount checks an end-repeat play count. A repeat plays at least twice.
func ValidatePlayCount(n int) error {
	if n < 2 {
		return New(ErrCodeInvalidArg, "play count must be at least 2, got %d", n)
	}
	return nil
}

// ValidatePassages checks the 1-based pass numbers of an ending.
//
// The list must be non-empty, strictly positive and free of duplicates.
func ValidatePassages(passages []int) error {
	if len(passages) == 0 {
		return New(ErrCodeInvalidArg, "ending needs at least one passage")
	}
	seen := make(map[int]bool, len(passages))
	for _, p := range passages {
		if p < 1 {
			return New(ErrCodeInvalidArg, "passage numbers are 1-based, got %d", p)
		}
		if seen[p] {
			return New(ErrCodeInvalidArg, "duplicate passage %d", p)
		}
		seen[p] = true
	}
	return nil
}

// ValidateSpan checks an explicit tie or slur span. Ties span at least two
// note groups (or use a sentinel, checked by the caller); slurs likewise.
func ValidateSpan(span int) error {
	if span < 2 {
		return New(ErrCodeInvalidArg, "span must be at least 2, got %d", span)
	}
	return nil
}
