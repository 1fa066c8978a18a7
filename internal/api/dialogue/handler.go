package dialogue

import (
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/Kmcx/histolocal/internal/api"
	"github.com/Kmcx/histolocal/internal/types"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	GenerateTurn(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	dialogueService Service
	logger          *slog.Logger
}

func NewHandlerImpl(dialogueService Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		dialogueService: dialogueService,
		logger:          logger,
	}
}

// apologyResponse is the reply for an unexpected internal fault: a generic
// message inside the normal response shape with a cleared context, never a
// transport-level error status.
func apologyResponse() *types.TurnResponse {
	return &types.TurnResponse{
		Response: internalFaultReply,
		Awaiting: nil,
		Context:  types.ConversationContext{},
	}
}

// GenerateTurn handles POST /itinerary/turn.
func (h *HandlerImpl) GenerateTurn(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("DialogueHandler").Start(r.Context(), "GenerateTurn")
	defer span.End()
	l := h.logger.With(slog.String("HandlerImpl", "GenerateTurn"))

	defer func() {
		if rec := recover(); rec != nil {
			l.ErrorContext(ctx, "Panic while processing dialogue turn", slog.Any("panic", rec))
			span.SetStatus(codes.Error, "Panic while processing dialogue turn")
			api.WriteJSONResponse(w, r, http.StatusOK, apologyResponse())
		}
	}()

	var req types.TurnRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Invalid turn request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.dialogueService.Turn(ctx, req.Prompt, req.Context)
	if err != nil {
		l.ErrorContext(ctx, "Dialogue turn failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Dialogue turn failed")
		api.WriteJSONResponse(w, r, http.StatusOK, apologyResponse())
		return
	}

	span.SetStatus(codes.Ok, "Turn processed")
	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}
