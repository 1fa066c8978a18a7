package assistant

import (
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/Kmcx/histolocal/internal/api"
)

type AskRequest struct {
	Prompt string `json:"prompt"`
}

type AskResponse struct {
	Response string `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
}

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	AskAI(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	generator Generator
	logger    *slog.Logger
}

func NewHandlerImpl(generator Generator, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		generator: generator,
		logger:    logger,
	}
}

// AskAI handles POST /ask-ai. A generation failure is reported inside a 200
// body so the chat client keeps its conversation flow.
func (h *HandlerImpl) AskAI(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AssistantHandler").Start(r.Context(), "AskAI")
	defer span.End()
	l := h.logger.With(slog.String("HandlerImpl", "AskAI"))

	var req AskRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Invalid ask request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	answer, err := h.generator.Generate(ctx, req.Prompt)
	if err != nil {
		l.ErrorContext(ctx, "AI generation failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "AI generation failed")
		api.WriteJSONResponse(w, r, http.StatusOK, AskResponse{Error: "AI response failed"})
		return
	}

	span.SetStatus(codes.Ok, "AI response generated")
	api.WriteJSONResponse(w, r, http.StatusOK, AskResponse{Response: answer})
}
