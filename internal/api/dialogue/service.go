// Package dialogue implements the slot-filling conversation that collects
// locations, a tour category and a travel date, one turn at a time. The server
// keeps no session: the full conversation context is echoed by the caller, so
// every downstream stage re-validates the slots it depends on before acting.
package dialogue

import (
	"context"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Kmcx/histolocal/app/observability/metrics"
	"github.com/Kmcx/histolocal/internal/api/gazetteer"
	"github.com/Kmcx/histolocal/internal/api/itinerary"
	"github.com/Kmcx/histolocal/internal/api/locations"
	"github.com/Kmcx/histolocal/internal/nlp"
	"github.com/Kmcx/histolocal/internal/types"
)

// resetIntentRe detects a restart request: a reset verb followed anywhere
// later in the prompt by a planning noun ("let's plan a new tour").
var resetIntentRe = regexp.MustCompile(`(?i)(new|reset|again).*?(plan|itinerary|tour)`)

var _ Service = (*ServiceImpl)(nil)

// Service advances the conversation by one turn. Turn never fails for
// domain-level reasons; an error return signals an unexpected internal fault
// that the handler translates into an apology reply.
type Service interface {
	Turn(ctx context.Context, prompt string, prior *types.ConversationContext) (*types.TurnResponse, error)
}

type ServiceImpl struct {
	logger     *slog.Logger
	resolver   locations.Resolver
	assembler  itinerary.Service
	vocabulary map[string]struct{}
}

func NewServiceImpl(resolver locations.Resolver, assembler itinerary.Service, g *gazetteer.Gazetteer, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:     logger,
		resolver:   resolver,
		assembler:  assembler,
		vocabulary: g.Vocabulary(),
	}
}

func awaitingPtr(kind string) *string {
	return &kind
}

func reply(text, awaiting string, cctx types.ConversationContext) *types.TurnResponse {
	resp := &types.TurnResponse{Response: text, Context: cctx}
	if awaiting != "" {
		resp.Awaiting = awaitingPtr(awaiting)
	}
	return resp
}

// Turn runs one step of the state machine. The prior context is copied, never
// mutated in place, so a failed turn leaves the caller's state untouched.
func (s *ServiceImpl) Turn(ctx context.Context, prompt string, prior *types.ConversationContext) (*types.TurnResponse, error) {
	ctx, span := otel.Tracer("DialogueService").Start(ctx, "Turn")
	defer span.End()

	start := time.Now()
	defer func() {
		metrics.Get().TurnRequestsTotal.Add(ctx, 1)
		metrics.Get().TurnDurationSeconds.Record(ctx, time.Since(start).Seconds())
	}()

	// Reset/init wins over every stage, including completed.
	if prior == nil || prior.Stage == types.StageNone || resetIntentRe.MatchString(prompt) {
		span.SetAttributes(attribute.String("dialogue.stage", "init"))
		span.SetStatus(codes.Ok, "Greeting turn")
		return reply(greetingReply, types.AwaitingLocations, types.FreshContext()), nil
	}

	cctx := *prior
	span.SetAttributes(attribute.String("dialogue.stage", cctx.Stage))

	switch cctx.Stage {
	case types.StageAwaitingLocations:
		return s.collectLocations(ctx, prompt, cctx), nil

	case types.StageAwaitingCategory:
		return s.collectCategory(ctx, prompt, cctx), nil

	case types.StageAwaitingDate:
		resp, done := s.collectDate(ctx, prompt, &cctx)
		if !done {
			return resp, nil
		}
		// The date completed the last slot; assemble within the same turn.

	case types.StageCompleted:

	default:
		// An unrecognized stage means the caller sent back a context this
		// server never issued. Treat it like a fresh conversation.
		s.logger.WarnContext(ctx, "Unknown dialogue stage, re-initializing", slog.String("stage", cctx.Stage))
		return reply(greetingReply, types.AwaitingLocations, types.FreshContext()), nil
	}

	return s.complete(ctx, cctx)
}

func (s *ServiceImpl) collectLocations(ctx context.Context, prompt string, cctx types.ConversationContext) *types.TurnResponse {
	exact, fuzzy := s.resolver.Resolve(ctx, prompt)
	if len(fuzzy) > 0 {
		s.logger.DebugContext(ctx, "Fuzzy matches available but not committed", slog.Any("fuzzy", fuzzy))
	}
	if len(exact) == 0 {
		return reply(locationsReprompt, types.AwaitingLocations, cctx)
	}
	cctx.Locations = exact
	cctx.Stage = types.StageAwaitingCategory
	return reply(categoryPrompt, types.AwaitingCategory, cctx)
}

func (s *ServiceImpl) collectCategory(ctx context.Context, prompt string, cctx types.ConversationContext) *types.TurnResponse {
	tokens := nlp.ExtractCategories(prompt, s.vocabulary)
	if len(tokens) == 0 {
		return reply(categoryReprompt, types.AwaitingCategory, cctx)
	}

	unique := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		unique[token] = struct{}{}
	}
	sorted := make([]string, 0, len(unique))
	for token := range unique {
		sorted = append(sorted, token)
	}
	sort.Strings(sorted)

	cctx.Category = strings.Join(sorted, ", ")
	cctx.Stage = types.StageAwaitingDate
	return reply(datePrompt, types.AwaitingDate, cctx)
}

// collectDate re-validates the earlier slots before extracting the date. It
// reports done=true only when the date landed and cctx advanced to completed.
func (s *ServiceImpl) collectDate(ctx context.Context, prompt string, cctx *types.ConversationContext) (*types.TurnResponse, bool) {
	if len(cctx.Locations) == 0 {
		cctx.Stage = types.StageAwaitingLocations
		return reply(startOverReply, types.AwaitingLocations, *cctx), false
	}
	if cctx.Category == "" {
		cctx.Stage = types.StageAwaitingCategory
		return reply(categoryReprompt, types.AwaitingCategory, *cctx), false
	}

	date, ok := nlp.ExtractDate(prompt)
	if !ok {
		return reply(dateReprompt, types.AwaitingDate, *cctx), false
	}
	cctx.TravelDate = date
	cctx.Stage = types.StageCompleted
	return nil, true
}

// complete re-validates the slots once more and assembles the itinerary.
func (s *ServiceImpl) complete(ctx context.Context, cctx types.ConversationContext) (*types.TurnResponse, error) {
	if len(cctx.Locations) == 0 {
		return reply(lostLocationsReply, types.AwaitingLocations, types.FreshContext()), nil
	}
	if cctx.Category == "" {
		cctx.Stage = types.StageAwaitingCategory
		return reply(categoryReprompt, types.AwaitingCategory, cctx), nil
	}

	result, err := s.assembler.Assemble(ctx, cctx.Locations, cctx.Category, cctx.TravelDate)
	if err != nil {
		return nil, err
	}

	return &types.TurnResponse{
		Response:     result.Summary,
		Awaiting:     nil,
		Context:      cctx,
		RouteGeoJSON: result.RouteGeoJSON,
		Locations:    result.Locations,
	}, nil
}
