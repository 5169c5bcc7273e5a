package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"glucose-skill/internal/domain"
	"glucose-skill/internal/integrations/nightscout"
	"glucose-skill/internal/logging"
)

const (
	SlotSubject = "subject"

	firstPersonMarker  = "my"
	firstPersonSubject = "your"
	thirdPersonSubject = "the monitored person's"

	readingFailedUtterance = "I couldn't get the reading. Please try again!"
)

// ReadingSource returns the most recent glucose reading.
type ReadingSource interface {
	LatestReading(ctx context.Context) (domain.GlucoseReading, error)
}

type httpStatusCoder interface {
	HTTPStatusCode() int
}

// GlucoseReporter answers BloodSugarIntent requests.
type GlucoseReporter struct {
	source ReadingSource
	logger *slog.Logger
}

func NewGlucoseReporter(source ReadingSource, logger *slog.Logger) (*GlucoseReporter, error) {
	if source == nil {
		return nil, errors.New("usecase: reading source must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GlucoseReporter{source: source, logger: logger}, nil
}

// Report fetches the latest reading and phrases it. Data source failures
// are answered with a fixed apology and never returned as errors.
func (g *GlucoseReporter) Report(ctx context.Context, req domain.Request) (domain.SpokenResponse, error) {
	reading, err := g.source.LatestReading(ctx)
	if err != nil {
		g.logFailure(ctx, newError(ErrorDataSource, failureReason(err), err))
		return domain.SpokenResponse{Utterance: readingFailedUtterance}, nil
	}

	subject, _ := req.Slot(SlotSubject)
	return domain.SpokenResponse{
		Utterance: phraseReading(subjectPossessive(subject), reading),
	}, nil
}

func (g *GlucoseReporter) logFailure(ctx context.Context, err *Error) {
	attrs := []any{"code", err.Code, "reason", err.Reason, "err", err.Err}
	var statusErr httpStatusCoder
	if errors.As(err, &statusErr) {
		attrs = append(attrs, "status_code", statusErr.HTTPStatusCode())
	}
	logging.FromContext(ctx, g.logger).ErrorContext(ctx, "glucose reading unavailable", attrs...)
}

func failureReason(err error) string {
	var statusErr httpStatusCoder
	switch {
	case errors.As(err, &statusErr):
		return "upstream_status"
	case errors.Is(err, nightscout.ErrNoReadings):
		return "empty_response"
	case errors.Is(err, nightscout.ErrMalformedResponse):
		return "decode_error"
	case errors.Is(err, nightscout.ErrMissingField):
		return "missing_field"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "upstream_timeout"
	default:
		return "upstream_error"
	}
}

func subjectPossessive(slot string) string {
	if slot == firstPersonMarker {
		return firstPersonSubject
	}
	return thirdPersonSubject
}

func phraseReading(subject string, r domain.GlucoseReading) string {
	return fmt.Sprintf("%s blood sugar is %d and %s.", subject, r.Value, TrendPhrase(r.Trend))
}
