package router

import (
	"context"
	"fmt"
)

var combinedClockPhrases = []string{
	"date and time",
	"time and date",
	"day and time",
}

var dayPhrases = []string{
	"what day is it",
	"what day is today",
	"which day is it",
	"what's the day",
	"what is the day",
}

var datePhrases = []string{
	"what is the date",
	"what's the date",
	"today's date",
	"current date",
	"what is today's date",
}

var timePhrases = []string{
	"what time is it",
	"what's the time",
	"what is the time",
	"current time",
	"time now",
	"tell me the time",
}

// classifyClock answers date/day/time questions from the wall clock.
// Four variants: combined, day only, date only, time only — checked in
// that order since "date and time" also contains "date".
func classifyClock(_ context.Context, r *Router, in *Input) *Result {
	now := r.now()

	switch {
	case containsAny(in.lower, combinedClockPhrases):
		return reply(fmt.Sprintf("It's %s, %s — %s.",
			now.Format("Monday"), now.Format("January 2, 2006"), now.Format("3:04 PM")))

	case containsAny(in.lower, dayPhrases):
		return reply(fmt.Sprintf("Today is %s.", now.Format("Monday")))

	case containsAny(in.lower, datePhrases):
		return reply(fmt.Sprintf("Today's date is %s.", now.Format("January 2, 2006")))

	case containsAny(in.lower, timePhrases):
		return reply(fmt.Sprintf("It's %s.", now.Format("3:04 PM")))
	}

	return nil
}
