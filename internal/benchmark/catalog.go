// Package benchmark holds the reference build catalog players are
// graded against. Builds are authored offline and shipped embedded;
// the catalog itself is read-only at runtime.
package benchmark

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"

	"sc2-coach/internal/domain"

	"github.com/rs/zerolog"
)

//go:embed builds.json
var buildsJSON []byte

type Catalog struct {
	builds []domain.ReferenceBuild
	byID   map[string]domain.ReferenceBuild
	logger zerolog.Logger
}

func NewCatalog(logger zerolog.Logger) (*Catalog, error) {
	var builds []domain.ReferenceBuild
	if err := json.Unmarshal(buildsJSON, &builds); err != nil {
		return nil, fmt.Errorf("failed to parse reference builds: %w", err)
	}

	byID := make(map[string]domain.ReferenceBuild, len(builds))
	for _, build := range builds {
		if err := validateBuild(build); err != nil {
			return nil, err
		}
		if _, exists := byID[build.ID]; exists {
			return nil, fmt.Errorf("duplicate reference build id %q", build.ID)
		}
		byID[build.ID] = build
	}

	sort.Slice(builds, func(i, j int) bool { return builds[i].ID < builds[j].ID })

	logger.Info().Int("count", len(builds)).Msg("reference build catalog loaded")
	return &Catalog{builds: builds, byID: byID, logger: logger}, nil
}

func validateBuild(build domain.ReferenceBuild) error {
	if build.ID == "" {
		return fmt.Errorf("reference build with empty id")
	}
	if build.Matchup == "" {
		return fmt.Errorf("reference build %q has no matchup", build.ID)
	}
	for _, phase := range domain.PhaseOrder() {
		if _, ok := build.Phases[phase]; !ok {
			return fmt.Errorf("reference build %q has no %s benchmark", build.ID, phase)
		}
	}
	return nil
}

func (c *Catalog) All() []domain.ReferenceBuild {
	return c.builds
}

// ByID looks a build up by its catalog id. The second return is false
// when no such build exists; callers decide whether absence is a
// problem.
func (c *Catalog) ByID(id string) (domain.ReferenceBuild, bool) {
	build, ok := c.byID[id]
	return build, ok
}

// Filter returns builds matching the given race and matchup. Empty
// arguments match everything.
func (c *Catalog) Filter(race, matchup string) []domain.ReferenceBuild {
	var out []domain.ReferenceBuild
	for _, build := range c.builds {
		if race != "" && build.Race != race {
			continue
		}
		if matchup != "" && build.Matchup != matchup {
			continue
		}
		out = append(out, build)
	}
	return out
}

// DefaultFor picks the build a replay is compared against when the
// caller did not name one: the first catalog build for the matchup.
func (c *Catalog) DefaultFor(matchup string) (domain.ReferenceBuild, bool) {
	for _, build := range c.builds {
		if build.Matchup == matchup {
			return build, true
		}
	}
	return domain.ReferenceBuild{}, false
}
