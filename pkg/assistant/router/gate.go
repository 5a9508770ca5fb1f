package router

import (
	"context"
	"fmt"
	"strings"

	"ai-assistant-be/pkg/assistant/fallback"
	"ai-assistant-be/pkg/session"
)

var creatorClaimPhrases = []string{
	"i am your creator",
	"i'm your creator",
	"i am your developer",
	"i made you",
	"i created you",
}

var farewellPhrases = []string{
	"goodbye",
	"bye",
	"farewell",
	"see you later",
}

// classifyPasswordGate consumes EVERY utterance while the gate is open.
// Nothing else can run until the user gets the password right or cancels.
func classifyPasswordGate(_ context.Context, r *Router, in *Input) *Result {
	if in.State.Gate != session.GateAwaitingPassword {
		return nil
	}

	attempt := strings.TrimSpace(in.Utterance)
	if attempt == r.secret {
		in.State.EnterCreatorMode()
		return reply(fmt.Sprintf("Welcome back, %s! Creator mode is on — the special commands are yours.", fallback.CreatorName))
	}

	if strings.Contains(in.lower, "cancel") {
		in.State.Revert()
		return reply("No problem, dropping the creator check. We're back to a normal chat.")
	}

	return reply("That's not the password. Try again, or say \"cancel\" to go back to a normal chat.")
}

// classifyCreatorClaim opens the gate when someone claims to be the
// creator. Already-elevated sessions skip the handshake.
func classifyCreatorClaim(_ context.Context, _ *Router, in *Input) *Result {
	if in.State.CreatorMode {
		return nil
	}
	if !containsAny(in.lower, creatorClaimPhrases) {
		return nil
	}

	in.State.EnterAwaitingPassword()
	return reply("Oh really? If you're my creator you'll know the password. What is it?")
}

// classifyCreatorFarewell drops creator mode on a goodbye.
func classifyCreatorFarewell(_ context.Context, _ *Router, in *Input) *Result {
	if !in.State.CreatorMode {
		return nil
	}
	if !containsAny(in.lower, farewellPhrases) {
		return nil
	}

	in.State.Revert()
	return reply(fmt.Sprintf("Goodbye, %s! Creator mode is off and I'm back to being a regular assistant.", fallback.CreatorName))
}

// classifyCreatorCommands answers the creator-only commands. These sit
// after the identity tier on purpose: identity questions win even in
// creator mode.
func classifyCreatorCommands(_ context.Context, r *Router, in *Input) *Result {
	if !in.State.CreatorMode {
		return nil
	}

	switch {
	case strings.Contains(in.lower, "secret command"):
		return reply("The secret command still works! You left it in before shipping me, remember?")

	case strings.Contains(in.lower, "show me system logs"):
		return reply(formatSystemLogs(in.RecentLogs))

	case strings.Contains(in.lower, "debug explanation"), strings.Contains(in.lower, "how did you process that"):
		return reply("Here's how I work: each message runs through an ordered list of classifiers — password gate first, then identity, creator commands, clock, weather, calculator, translation, facts, search, and so on. The first one that recognizes the message answers it; if none do, I hand the whole conversation to the language model.")

	case strings.Contains(in.lower, "hello boss"):
		return reply(fmt.Sprintf("Hello %s! Everything is running smoothly on my side. What do you need?", fallback.CreatorName))
	}

	return nil
}

func formatSystemLogs(logs []RecentLog) string {
	if len(logs) == 0 {
		return "No recent log entries retained."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Last %d system log entries:\n", len(logs))
	for _, entry := range logs {
		fmt.Fprintf(&b, "[%s] %s: %s\n", entry.Timestamp.Format("15:04:05"), entry.Level, entry.Message)
	}
	return strings.TrimRight(b.String(), "\n")
}
