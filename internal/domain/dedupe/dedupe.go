// Package dedupe merges spelling variants of riders and teams across race results.
package dedupe

import (
	"context"
	"sort"
	"strings"

	"github.com/eastkentcx/ekcx/internal/domain/model"
	"github.com/eastkentcx/ekcx/internal/domain/names"
	"github.com/eastkentcx/ekcx/pkg/logger"
)

// DefaultTeamAliases maps known team abbreviations to their full names.
var DefaultTeamAliases = map[string]string{
	"LEC": "Limited Edition Cycling",
	"lec": "Limited Edition Cycling",
	"Lec": "Limited Edition Cycling",
}

// Normalizations records every rename applied by Normalize.
type Normalizations struct {
	Riders map[model.Rider]model.Rider
	Teams  map[string]string
}

// Normalizer rewrites rider and team names to one canonical spelling.
type Normalizer struct {
	aliases map[string]string
	logger  logger.Logger
}

// NewNormalizer creates a Normalizer with configuration options.
func NewNormalizer(opts ...Option) *Normalizer {
	n := &Normalizer{
		aliases: DefaultTeamAliases,
		logger:  logger.Get().Named("dedupe"),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize finds duplicate riders and teams in results and rewrites every
// result to the canonical spelling, in four passes:
//  1. riders equal ignoring case
//  2. riders differing by a nickname or typo
//  3. teams with similar names
//  4. predefined team aliases
func (n *Normalizer) Normalize(ctx context.Context, results model.Results) Normalizations {
	riderCounts := make(map[model.Rider]int)
	teamCounts := make(map[string]int)
	results.Each(func(r *model.RaceResult) {
		riderCounts[r.Rider()]++
		if r.Team != "" {
			teamCounts[r.Team]++
		}
	})

	riders := make([]model.Rider, 0, len(riderCounts))
	for r := range riderCounts {
		riders = append(riders, r)
	}
	sort.Slice(riders, func(i, j int) bool { return riders[i].Less(riders[j]) })

	teams := make([]string, 0, len(teamCounts))
	for t := range teamCounts {
		teams = append(teams, t)
	}
	sort.Strings(teams)

	out := Normalizations{
		Riders: make(map[model.Rider]model.Rider),
		Teams:  make(map[string]string),
	}

	// Pass 1: case-insensitive duplicates.
	byUpper := make(map[model.Rider]model.Rider, len(riders))
	for _, r := range riders {
		key := upper(r)
		existing, ok := byUpper[key]
		if !ok {
			byUpper[key] = r
			continue
		}
		target := names.ChooseRider(r, existing, riderCounts)
		byUpper[key] = target
		for _, src := range []model.Rider{r, existing} {
			if src != target {
				out.Riders[src] = target
				n.logger.Info(ctx, "rider normalized (exact match)", riderFields(src, target)...)
			}
		}
	}

	// Pass 2: similar riders.
	for _, p := range names.FindSimilarRiders(riders) {
		if _, done := out.Riders[p.A]; done {
			continue
		}
		if _, done := out.Riders[p.B]; done {
			continue
		}
		target := names.ChooseRider(p.A, p.B, riderCounts)
		for _, src := range []model.Rider{p.A, p.B} {
			if src != target {
				out.Riders[src] = target
				n.logger.Info(ctx, "rider normalized (similar)", riderFields(src, target)...)
			}
		}
	}

	// Pass 3: similar teams.
	for _, p := range names.FindSimilarTeams(teams) {
		if _, done := out.Teams[p.A]; done {
			continue
		}
		if _, done := out.Teams[p.B]; done {
			continue
		}
		target := names.ChooseTeam(p.A, p.B, teamCounts)
		for _, src := range []string{p.A, p.B} {
			if src != target {
				out.Teams[src] = target
				n.logger.Info(ctx, "team normalized", logger.String("from", src), logger.String("to", target))
			}
		}
	}

	// Pass 4: predefined aliases never override a detected normalization.
	aliasKeys := make([]string, 0, len(n.aliases))
	for k := range n.aliases {
		aliasKeys = append(aliasKeys, k)
	}
	sort.Strings(aliasKeys)
	for _, src := range aliasKeys {
		if _, done := out.Teams[src]; done {
			continue
		}
		out.Teams[src] = n.aliases[src]
		n.logger.Info(ctx, "team normalized (predefined)", logger.String("from", src), logger.String("to", n.aliases[src]))
	}

	results.Each(func(r *model.RaceResult) {
		rider := r.Rider()
		canonical := rider
		if first, ok := byUpper[upper(rider)]; ok {
			canonical = names.Resolve(first, out.Riders)
		}
		if canonical == rider {
			if next, ok := out.Riders[rider]; ok {
				canonical = names.Resolve(next, out.Riders)
			}
		}
		r.LastName, r.FirstName = canonical.Last, canonical.First

		// Team names are normalized even when the rider was renamed.
		if r.Team != "" {
			r.Team = names.Resolve(r.Team, out.Teams)
		}
	})

	return out
}

func upper(r model.Rider) model.Rider {
	return model.Rider{Last: strings.ToUpper(r.Last), First: strings.ToUpper(r.First)}
}

func riderFields(from, to model.Rider) []logger.Field {
	return []logger.Field{
		logger.String("from_last", from.Last),
		logger.String("from_first", from.First),
		logger.String("to_last", to.Last),
		logger.String("to_first", to.First),
	}
}
