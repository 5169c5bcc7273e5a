package usecase

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"glucose-skill/internal/domain"
	"glucose-skill/internal/logging"
)

type countingAction struct {
	calls int
	resp  domain.SpokenResponse
	err   error
	panic any
}

func (c *countingAction) run(_ context.Context, _ domain.Request) (domain.SpokenResponse, error) {
	c.calls++
	if c.panic != nil {
		panic(c.panic)
	}
	return c.resp, c.err
}

func candidate(name string, match func(domain.Request) bool, a *countingAction) Candidate {
	return Candidate{Name: name, Match: match, Action: a.run}
}

func always(domain.Request) bool { return true }

func intent(name string) domain.Request {
	return domain.Request{Kind: domain.RequestIntent, IntentName: name}
}

func bufferLogger() (*slog.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return slog.New(slog.NewTextHandler(buf, nil)), buf
}

func TestNewRouter_Validation(t *testing.T) {
	_, err := NewRouter(nil)
	require.Error(t, err)

	_, err = NewRouter(nil, Candidate{Name: "x", Match: always})
	require.Error(t, err)

	_, err = NewRouter(nil, Candidate{Name: "x", Action: (&countingAction{}).run})
	require.Error(t, err)

	_, err = NewRouter(nil, Candidate{Match: always, Action: (&countingAction{}).run})
	require.Error(t, err)

	_, err = NewRouter(nil, candidate("x", always, &countingAction{}))
	require.NoError(t, err)
}

func TestDispatch_FirstMatchWins(t *testing.T) {
	first := &countingAction{resp: domain.SpokenResponse{Utterance: "first"}}
	second := &countingAction{resp: domain.SpokenResponse{Utterance: "second"}}
	fallback := &countingAction{resp: domain.SpokenResponse{Utterance: "fallback"}}

	r, err := NewRouter(nil,
		candidate("first", func(req domain.Request) bool { return req.IsIntent("A") }, first),
		candidate("second", func(req domain.Request) bool { return req.IsIntent("A", "B") }, second),
		candidate("fallback", always, fallback),
	)
	require.NoError(t, err)

	resp := r.Dispatch(context.Background(), intent("A"))
	require.Equal(t, "first", resp.Utterance)
	require.Equal(t, 1, first.calls)
	require.Zero(t, second.calls)
	require.Zero(t, fallback.calls)

	resp = r.Dispatch(context.Background(), intent("B"))
	require.Equal(t, "second", resp.Utterance)
	require.Equal(t, 1, first.calls)
	require.Equal(t, 1, second.calls)
	require.Zero(t, fallback.calls)
}

func TestDispatch_FallsThroughToDefault(t *testing.T) {
	specific := &countingAction{}
	fallback := &countingAction{resp: domain.SpokenResponse{Utterance: "fallback"}}
	r, err := NewRouter(nil,
		candidate("specific", func(req domain.Request) bool { return req.IsIntent("A") }, specific),
		candidate("fallback", always, fallback),
	)
	require.NoError(t, err)

	resp := r.Dispatch(context.Background(), intent("Unknown"))
	require.Equal(t, "fallback", resp.Utterance)
	require.Zero(t, specific.calls)
	require.Equal(t, 1, fallback.calls)
}

func TestDispatch_ActionErrorReturnsApology(t *testing.T) {
	logger, buf := bufferLogger()
	failing := &countingAction{err: errors.New("boom")}
	fallback := &countingAction{}
	r, err := NewRouter(logger, candidate("failing", always, failing), candidate("fallback", always, fallback))
	require.NoError(t, err)

	resp := r.Dispatch(context.Background(), intent("A"))
	require.Equal(t, apologyUtterance, resp.Utterance)
	require.True(t, resp.KeepSessionOpen)
	require.Equal(t, 1, failing.calls)
	require.Zero(t, fallback.calls)
	require.Contains(t, buf.String(), "boom")
	require.Contains(t, buf.String(), string(ErrorHandler))
}

func TestDispatch_ActionPanicIsRecovered(t *testing.T) {
	logger, buf := bufferLogger()
	panicking := &countingAction{panic: "nil map write"}
	r, err := NewRouter(logger, candidate("panicking", always, panicking))
	require.NoError(t, err)

	require.NotPanics(t, func() {
		resp := r.Dispatch(context.Background(), intent("A"))
		require.Equal(t, apologyUtterance, resp.Utterance)
		require.True(t, resp.KeepSessionOpen)
	})
	require.Contains(t, buf.String(), "nil map write")
}

func TestDispatch_NoMatchReturnsApology(t *testing.T) {
	logger, buf := bufferLogger()
	only := &countingAction{}
	r, err := NewRouter(logger, candidate("launch", func(req domain.Request) bool { return req.Kind == domain.RequestLaunch }, only))
	require.NoError(t, err)

	resp := r.Dispatch(context.Background(), intent("A"))
	require.Equal(t, apologyUtterance, resp.Utterance)
	require.True(t, resp.KeepSessionOpen)
	require.Zero(t, only.calls)
	require.Contains(t, buf.String(), string(ErrorRouting))
}

func TestDispatch_LogsSelectedHandler(t *testing.T) {
	logger, buf := bufferLogger()
	r, err := NewRouter(logger, candidate("greeter", always, &countingAction{resp: domain.SpokenResponse{Utterance: "hi"}}))
	require.NoError(t, err)

	r.Dispatch(context.Background(), domain.Request{Kind: domain.RequestLaunch})
	require.Contains(t, buf.String(), "handler=greeter")
	require.Contains(t, buf.String(), "utterance=hi")
}

func TestDispatch_PrefersContextLogger(t *testing.T) {
	fallback, fallbackBuf := bufferLogger()
	scoped, scopedBuf := bufferLogger()
	r, err := NewRouter(fallback, candidate("failing", always, &countingAction{err: errors.New("boom")}))
	require.NoError(t, err)

	ctx := logging.WithLogger(context.Background(), scoped.With("request_id", "req-9"))
	r.Dispatch(ctx, intent("A"))
	require.Empty(t, fallbackBuf.String())
	require.Contains(t, scopedBuf.String(), "request_id=req-9")
	require.Contains(t, scopedBuf.String(), "HANDLER_FAILURE in failing")
}
