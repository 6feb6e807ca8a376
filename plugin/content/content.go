// Package content serves stories, songs, and jokes for the companion device.
// Requests resolve through three tiers: a curated library, the configured
// language model, and finally built-in templates so the device always has
// something to say.
package content

import (
	"fmt"
	"strings"
)

// Kind enumerates the content types the device can request.
type Kind string

const (
	KindStory Kind = "story"
	KindSong  Kind = "song"
	KindJoke  Kind = "joke"
)

// ParseKind validates a kind from a request path.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(s)) {
	case KindStory:
		return KindStory, nil
	case KindSong:
		return KindSong, nil
	case KindJoke:
		return KindJoke, nil
	default:
		return "", fmt.Errorf("unknown content kind %q", s)
	}
}

// Tier names which layer of the sourcer produced a result.
type Tier string

const (
	TierLibrary  Tier = "library"
	TierLLM      Tier = "llm"
	TierTemplate Tier = "template"
)

// Request describes what content the child asked for.
type Request struct {
	Kind  Kind `json:"kind"`
	Topic string `json:"topic"`

	// ChildName and Age personalize generated content.
	ChildName string `json:"childName"`
	Age       int    `json:"age"`
	// BlockedTopics come from the child's parental controls.
	BlockedTopics []string `json:"-"`
}

// Result is one piece of content along with the tier that produced it.
type Result struct {
	Kind  Kind   `json:"kind"`
	Title string `json:"title"`
	Body  string `json:"body"`
	Tier  Tier   `json:"tier"`
}
