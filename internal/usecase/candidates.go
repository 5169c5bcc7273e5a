package usecase

import (
	"context"
	"fmt"

	"glucose-skill/internal/domain"
)

const (
	IntentBloodSugar = "BloodSugarIntent"
	IntentCancel     = "AMAZON.CancelIntent"
	IntentStop       = "AMAZON.StopIntent"

	welcomeUtterance = "Welcome, you can ask me for a blood sugar reading. What would you like to know?"
	goodbyeUtterance = "Goodbye!"
)

// DefaultCandidates returns the production handler chain. The intent echo
// must stay last so it never shadows a specific intent.
func DefaultCandidates(reporter *GlucoseReporter) []Candidate {
	return []Candidate{
		LaunchCandidate(),
		{
			Name:   "blood_sugar",
			Match:  func(req domain.Request) bool { return req.IsIntent(IntentBloodSugar) },
			Action: reporter.Report,
		},
		CancelOrStopCandidate(),
		SessionEndedCandidate(),
		IntentEchoCandidate(),
	}
}

func LaunchCandidate() Candidate {
	return Candidate{
		Name:  "launch",
		Match: func(req domain.Request) bool { return req.Kind == domain.RequestLaunch },
		Action: func(context.Context, domain.Request) (domain.SpokenResponse, error) {
			return domain.SpokenResponse{Utterance: welcomeUtterance, KeepSessionOpen: true}, nil
		},
	}
}

func CancelOrStopCandidate() Candidate {
	return Candidate{
		Name:  "cancel_or_stop",
		Match: func(req domain.Request) bool { return req.IsIntent(IntentCancel, IntentStop) },
		Action: func(context.Context, domain.Request) (domain.SpokenResponse, error) {
			return domain.SpokenResponse{Utterance: goodbyeUtterance}, nil
		},
	}
}

func SessionEndedCandidate() Candidate {
	return Candidate{
		Name:  "session_ended",
		Match: func(req domain.Request) bool { return req.Kind == domain.RequestSessionEnded },
		Action: func(context.Context, domain.Request) (domain.SpokenResponse, error) {
			return domain.SpokenResponse{}, nil
		},
	}
}

// IntentEchoCandidate repeats back any intent name. Used for interaction
// model debugging.
func IntentEchoCandidate() Candidate {
	return Candidate{
		Name:  "intent_echo",
		Match: func(req domain.Request) bool { return req.Kind == domain.RequestIntent },
		Action: func(_ context.Context, req domain.Request) (domain.SpokenResponse, error) {
			return domain.SpokenResponse{Utterance: fmt.Sprintf("You just triggered %s.", req.IntentName)}, nil
		},
	}
}
