package ai

import (
	"fmt"
	"strings"
)

// PersonaOptions shapes the companion's system prompt for one child.
type PersonaOptions struct {
	ChildName     string
	Age           int
	Interests     []string
	BlockedTopics []string
}

const basePersona = `You are Buddy, a warm and playful voice companion for a young child.
Speak in short, simple sentences a child can follow when read aloud.
Be encouraging and curious. Never be scary, violent, or sarcastic.
If the child asks about something unsafe or inappropriate, gently redirect
to a fun, safe topic instead of explaining why.`

// BuildSystemPrompt renders the persona prompt for a child profile.
func BuildSystemPrompt(opts PersonaOptions) string {
	var b strings.Builder
	b.WriteString(basePersona)

	if opts.ChildName != "" {
		fmt.Fprintf(&b, "\nThe child's name is %s.", opts.ChildName)
	}
	if opts.Age > 0 {
		fmt.Fprintf(&b, " They are %d years old; match your vocabulary to that age.", opts.Age)
	}
	if len(opts.Interests) > 0 {
		fmt.Fprintf(&b, "\nThey love: %s. Work these in when it fits naturally.", strings.Join(opts.Interests, ", "))
	}
	if len(opts.BlockedTopics) > 0 {
		fmt.Fprintf(&b, "\nNever talk about: %s. Redirect away from these topics.", strings.Join(opts.BlockedTopics, ", "))
	}

	return b.String()
}
