package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"

	"glucose-skill/internal/domain"
	"glucose-skill/internal/logging"
)

const apologyUtterance = "Sorry, I had trouble doing what you asked. Please try again."

// Candidate pairs a match predicate with the action run when it matches.
type Candidate struct {
	Name   string
	Match  func(req domain.Request) bool
	Action func(ctx context.Context, req domain.Request) (domain.SpokenResponse, error)
}

// Router dispatches each request to the first matching candidate.
// Candidates are evaluated in the order given to NewRouter.
type Router struct {
	candidates []Candidate
	logger     *slog.Logger
}

func NewRouter(logger *slog.Logger, candidates ...Candidate) (*Router, error) {
	if len(candidates) == 0 {
		return nil, errors.New("usecase: router needs at least one candidate")
	}
	for i, c := range candidates {
		if c.Match == nil || c.Action == nil {
			return nil, fmt.Errorf("usecase: candidate %d (%q) must have a match and an action", i, c.Name)
		}
		if strings.TrimSpace(c.Name) == "" {
			return nil, fmt.Errorf("usecase: candidate %d must have a name", i)
		}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		candidates: append([]Candidate(nil), candidates...),
		logger:     logger,
	}, nil
}

// Dispatch runs exactly one candidate action for req. Failures never
// propagate: they are logged and answered with an apology that re-asks.
func (r *Router) Dispatch(ctx context.Context, req domain.Request) domain.SpokenResponse {
	logger := logging.FromContext(ctx, r.logger)
	for _, c := range r.candidates {
		if !c.Match(req) {
			continue
		}
		resp, err := r.invoke(ctx, c, req)
		if err != nil {
			logger.ErrorContext(ctx, "handler failed",
				"handler", c.Name,
				"code", err.Code,
				"reason", err.Reason,
				"err", err,
			)
			return apology()
		}
		logger.InfoContext(ctx, "handler responded",
			"handler", c.Name,
			"utterance", resp.Utterance,
			"keep_session_open", resp.KeepSessionOpen,
		)
		return resp
	}

	err := newError(ErrorRouting, "no_candidate_matched", nil)
	logger.ErrorContext(ctx, "no handler matched request",
		"code", err.Code,
		"request_type", req.Kind,
		"intent", req.IntentName,
		"err", err,
	)
	return apology()
}

func (r *Router) invoke(ctx context.Context, c Candidate, req domain.Request) (resp domain.SpokenResponse, err *Error) {
	defer func() {
		if p := recover(); p != nil {
			resp = domain.SpokenResponse{}
			err = newHandlerError(c.Name, "panic", fmt.Errorf("%v\n%s", p, debug.Stack()))
		}
	}()
	resp, actionErr := c.Action(ctx, req)
	if actionErr != nil {
		return domain.SpokenResponse{}, newHandlerError(c.Name, "action_error", actionErr)
	}
	return resp, nil
}

func apology() domain.SpokenResponse {
	return domain.SpokenResponse{Utterance: apologyUtterance, KeepSessionOpen: true}
}
