package handler

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"glucose-skill/internal/domain"
	"glucose-skill/internal/logging"
)

const responseVersion = "1.0"

// Dispatcher routes a request to exactly one handler.
type Dispatcher interface {
	Dispatch(ctx context.Context, req domain.Request) domain.SpokenResponse
}

// Handler adapts Alexa envelopes to the dispatcher.
type Handler struct {
	router Dispatcher
	logger *slog.Logger
}

func NewHandler(router Dispatcher, logger *slog.Logger) (*Handler, error) {
	if router == nil {
		return nil, errors.New("handler: dispatcher must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{router: router, logger: logger}, nil
}

// Handle is the Lambda entry point. It never returns an error so the
// platform always receives a speakable envelope.
func (h *Handler) Handle(ctx context.Context, env RequestEnvelope) (ResponseEnvelope, error) {
	requestID := strings.TrimSpace(env.Request.RequestID)
	if requestID == "" {
		requestID = newUUID()
	}
	logger := h.logger.With("request_id", requestID)
	ctx = logging.WithLogger(ctx, logger)

	req := toDomainRequest(env.Request)
	logger.InfoContext(ctx, "request received",
		"type", req.Kind,
		"intent", req.IntentName,
		"locale", env.Request.Locale,
		"reason", env.Request.Reason,
	)

	resp := h.router.Dispatch(ctx, req)
	return render(resp), nil
}

func toDomainRequest(r PlatformRequest) domain.Request {
	req := domain.Request{Kind: domain.RequestKind(strings.TrimSpace(r.Type))}
	if req.Kind != domain.RequestIntent || r.Intent == nil {
		return req
	}
	req.IntentName = r.Intent.Name
	if len(r.Intent.Slots) > 0 {
		req.Slots = make(map[string]string, len(r.Intent.Slots))
		for key, s := range r.Intent.Slots {
			name := s.Name
			if name == "" {
				name = key
			}
			req.Slots[name] = s.Value
		}
	}
	return req
}

func render(resp domain.SpokenResponse) ResponseEnvelope {
	out := ResponseEnvelope{Version: responseVersion}
	if resp.IsEmpty() {
		return out
	}
	speech := ssml(resp.Utterance)
	out.Response.OutputSpeech = &speech
	if resp.KeepSessionOpen {
		out.Response.Reprompt = &Reprompt{OutputSpeech: speech}
	}
	end := !resp.KeepSessionOpen
	out.Response.ShouldEndSession = &end
	return out
}

func ssml(text string) OutputSpeech {
	var buf bytes.Buffer
	buf.WriteString("<speak>")
	// EscapeText only fails when the writer does; bytes.Buffer never does.
	_ = xml.EscapeText(&buf, []byte(text))
	buf.WriteString("</speak>")
	return OutputSpeech{Type: "SSML", SSML: buf.String()}
}

var newUUID = func() string {
	return uuid.NewString()
}
