// Package gazetteer owns the static place corpus: district names, coordinates,
// transport notes and per-category sub-place lists. The corpus is loaded once
// at startup and read-only afterwards, so it can be shared across request
// workers without locking.
package gazetteer

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	_ "embed"

	"github.com/Kmcx/histolocal/internal/nlp"
	"github.com/Kmcx/histolocal/internal/types"
)

//go:embed data/izmir_places.json
var embeddedCorpus []byte

// Gazetteer is an immutable snapshot of the place corpus. Iteration order is
// the order of the source data, which keeps resolver results deterministic.
type Gazetteer struct {
	entries []types.PlaceEntry
	byName  map[string]*types.PlaceEntry
	vocab   map[string]struct{}
}

// New builds a Gazetteer from already-decoded entries. Entries with an empty
// name are dropped; later duplicates of a name are ignored.
func New(entries []types.PlaceEntry) *Gazetteer {
	g := &Gazetteer{
		entries: make([]types.PlaceEntry, 0, len(entries)),
		byName:  make(map[string]*types.PlaceEntry, len(entries)),
		vocab:   make(map[string]struct{}),
	}
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if e.Name == "" {
			continue
		}
		if _, dup := seen[e.Name]; dup {
			continue
		}
		seen[e.Name] = struct{}{}
		g.entries = append(g.entries, e)
		for category := range e.Categories {
			g.vocab[strings.ToLower(category)] = struct{}{}
		}
	}
	// Index after the slice stops growing so the pointers stay valid.
	for i := range g.entries {
		g.byName[g.entries[i].Name] = &g.entries[i]
	}
	return g
}

// FromJSON decodes a corpus document (ordered array of place entries).
// Malformed data yields an empty Gazetteer and an error the caller may choose
// to log and ignore; an empty corpus is never a startup failure.
func FromJSON(data []byte) (*Gazetteer, error) {
	var entries []types.PlaceEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return New(nil), fmt.Errorf("failed to decode place corpus: %w", err)
	}
	return New(entries), nil
}

// FromEmbedded loads the corpus compiled into the binary.
func FromEmbedded(logger *slog.Logger) *Gazetteer {
	g, err := FromJSON(embeddedCorpus)
	if err != nil {
		logger.Error("Embedded place corpus is malformed, starting with an empty gazetteer", slog.Any("error", err))
		return g
	}
	logger.Info("Loaded embedded place corpus", slog.Int("places", g.Len()))
	return g
}

func (g *Gazetteer) Len() int { return len(g.entries) }

// Names returns place names in corpus order. The resolver depends on this
// order for its exact-match results.
func (g *Gazetteer) Names() []string {
	names := make([]string, len(g.entries))
	for i, e := range g.entries {
		names[i] = e.Name
	}
	return names
}

// Lookup returns the entry for name, or nil when unknown. The returned entry
// must be treated as read-only.
func (g *Gazetteer) Lookup(name string) *types.PlaceEntry {
	return g.byName[name]
}

// Vocabulary is the lower-cased union of category labels across all entries.
func (g *Gazetteer) Vocabulary() map[string]struct{} {
	return g.vocab
}

// Documents renders one descriptive sentence per place in the fixed
// "<name> is <description>" shape the vector index is built over.
func (g *Gazetteer) Documents() []string {
	docs := make([]string, 0, len(g.entries))
	for _, e := range g.entries {
		if e.Description == "" {
			continue
		}
		docs = append(docs, fmt.Sprintf("%s is %s", e.Name, e.Description))
	}
	return docs
}

// NormalizedNames returns (name, normalize(name)) pairs in corpus order,
// precomputed so the resolver does not re-normalize on every turn.
func (g *Gazetteer) NormalizedNames() [][2]string {
	out := make([][2]string, len(g.entries))
	for i, e := range g.entries {
		out[i] = [2]string{e.Name, nlp.Normalize(e.Name)}
	}
	return out
}
