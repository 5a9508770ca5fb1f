package router

import (
	"context"
	"fmt"
	"strings"
)

var interestsPattern = "my interests are "

// classifyInterests parses a comma-separated interest list out of "my
// interests are ..." and stores it on the session for the trends tier.
func classifyInterests(_ context.Context, _ *Router, in *Input) *Result {
	idx := strings.Index(in.lower, interestsPattern)
	if idx == -1 {
		return nil
	}

	rest := strings.Trim(in.lower[idx+len(interestsPattern):], " ?.!")
	rest = strings.ReplaceAll(rest, " and ", ", ")

	var interests []string
	for _, part := range strings.Split(rest, ",") {
		if part = strings.TrimSpace(part); part != "" {
			interests = append(interests, part)
		}
	}
	if len(interests) == 0 {
		return reply("I didn't catch any interests there. Try \"my interests are tech, football, music\".")
	}

	in.State.AddInterests(interests)
	return reply(fmt.Sprintf(
		"Got it — I'll remember you're into %s. Ask me for insights any time and I'll pull trends for one of them.",
		strings.Join(in.State.Interests, ", "),
	))
}
