// Package locations resolves free text to known place names: an exact
// normalized-substring pass over the gazetteer plus a fuzzy nearest-neighbour
// pass over the vector index.
package locations

import (
	"context"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Kmcx/histolocal/app/observability/metrics"
	"github.com/Kmcx/histolocal/internal/api/gazetteer"
	"github.com/Kmcx/histolocal/internal/api/vectorsearch"
	"github.com/Kmcx/histolocal/internal/nlp"
)

// fuzzyTopK is how many nearest documents the fuzzy pass asks for.
const fuzzyTopK = 5

// docSeparator splits a descriptive document into "<name>" and the rest.
const docSeparator = " is "

var _ Resolver = (*ResolverImpl)(nil)

// Resolver finds place names mentioned in a prompt. Exact and fuzzy results
// are disjoint ordered lists of unique gazetteer names.
type Resolver interface {
	Resolve(ctx context.Context, prompt string) (exact []string, fuzzy []string)
}

type ResolverImpl struct {
	logger   *slog.Logger
	searcher vectorsearch.Searcher
	names    [][2]string // (name, normalized name) in gazetteer order
	known    map[string]struct{}
}

func NewResolver(g *gazetteer.Gazetteer, searcher vectorsearch.Searcher, logger *slog.Logger) *ResolverImpl {
	known := make(map[string]struct{}, g.Len())
	for _, name := range g.Names() {
		known[name] = struct{}{}
	}
	return &ResolverImpl{
		logger:   logger,
		searcher: searcher,
		names:    g.NormalizedNames(),
		known:    known,
	}
}

// Resolve runs both passes. The fuzzy pass is fail-open: any vector search
// error is logged and treated as "no fuzzy matches", the exact results are
// returned regardless.
func (r *ResolverImpl) Resolve(ctx context.Context, prompt string) ([]string, []string) {
	ctx, span := otel.Tracer("LocationResolver").Start(ctx, "Resolve")
	defer span.End()

	normalizedPrompt := nlp.Normalize(prompt)

	var exact []string
	seen := make(map[string]struct{})
	for _, pair := range r.names {
		if strings.Contains(normalizedPrompt, pair[1]) {
			exact = append(exact, pair[0])
			seen[pair[0]] = struct{}{}
		}
	}
	span.SetAttributes(attribute.Int("resolver.exact_matches", len(exact)))

	var fuzzy []string
	if r.searcher != nil {
		docs, err := r.searcher.Query(ctx, prompt, fuzzyTopK)
		if err != nil {
			r.logger.WarnContext(ctx, "Fuzzy location pass failed, continuing with exact matches only",
				slog.Any("error", err))
			span.RecordError(err)
			return exact, nil
		}
		for _, doc := range docs {
			name, _, found := strings.Cut(doc, docSeparator)
			if !found {
				continue
			}
			name = strings.TrimSpace(name)
			if _, known := r.known[name]; !known {
				continue
			}
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			fuzzy = append(fuzzy, name)
		}
		if len(fuzzy) > 0 {
			metrics.Get().ResolverFuzzyHitsTotal.Add(ctx, int64(len(fuzzy)))
		}
	}
	span.SetAttributes(attribute.Int("resolver.fuzzy_matches", len(fuzzy)))

	return exact, fuzzy
}
