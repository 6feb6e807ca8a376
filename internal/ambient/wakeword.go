package ambient

import (
	"regexp"
	"strings"
)

// wakeVariantPatterns cover greeting variants not worth enumerating as
// literal wake words.
var wakeVariantPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(hey|hi|hello)\s+(buddy|ai)\b`),
}

// endPhrasePattern matches phrases that close an active conversation.
var endPhrasePattern = regexp.MustCompile(
	`(?i)\b(goodbye|bye|stop|that's all|go to sleep|thank you,? buddy|thanks,? buddy)\b`)

// commandCutset is trimmed off the extracted command boundary.
const commandCutset = " \t,.!?:;-"

// wakeMatcher scans transcripts for wake words. Literal substring matches
// are checked first in list order, then the regex variants; the first hit
// wins and the command is everything after that first occurrence.
type wakeMatcher struct {
	baseWords []string
}

func newWakeMatcher(words []string) *wakeMatcher {
	lowered := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			lowered = append(lowered, w)
		}
	}
	return &wakeMatcher{baseWords: lowered}
}

// merge returns the base list extended with per-session hint words.
func (m *wakeMatcher) merge(hints []string) []string {
	if len(hints) == 0 {
		return m.baseWords
	}
	merged := make([]string, len(m.baseWords), len(m.baseWords)+len(hints))
	copy(merged, m.baseWords)
	for _, h := range hints {
		h = strings.ToLower(strings.TrimSpace(h))
		if h == "" {
			continue
		}
		duplicate := false
		for _, w := range merged {
			if w == h {
				duplicate = true
				break
			}
		}
		if !duplicate {
			merged = append(merged, h)
		}
	}
	return merged
}

// match scans transcript for any of words. It returns whether a wake word
// was found and the trimmed command remainder after the first occurrence.
func (m *wakeMatcher) match(words []string, transcript string) (bool, string) {
	lower := strings.ToLower(transcript)

	for _, w := range words {
		if idx := strings.Index(lower, w); idx >= 0 {
			return true, extractCommand(transcript, idx+len(w))
		}
	}

	for _, re := range wakeVariantPatterns {
		if loc := re.FindStringIndex(transcript); loc != nil {
			return true, extractCommand(transcript, loc[1])
		}
	}

	return false, ""
}

// isEndPhrase reports whether transcript contains an end-of-conversation
// phrase.
func isEndPhrase(transcript string) bool {
	return endPhrasePattern.MatchString(transcript)
}

// extractCommand takes the transcript remainder past the wake word and
// strips boundary punctuation.
func extractCommand(transcript string, from int) string {
	if from >= len(transcript) {
		return ""
	}
	return strings.TrimRight(strings.TrimLeft(transcript[from:], commandCutset), " \t")
}
