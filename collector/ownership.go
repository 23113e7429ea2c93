package collector

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/e2e-infra/run-reporter/types"
)

// UnknownTeam is the literal fallback label used when no team can be resolved.
const UnknownTeam = "Unknown"

// Annotation types consulted during ownership resolution.
const (
	annotationTeam  = "team"
	annotationOwner = "owner"
)

// TeamRoster resolves the owning team of a test from a closed, configured set
// of team names. Bracket tags are precomputed once so that a title which
// legitimately contains unrelated bracketed text never matches.
type TeamRoster struct {
	ordered  []string
	tags     map[string]string // "[Frontend]" -> "Frontend"
	names    map[string]bool
	fallback string
}

// NewTeamRoster builds a roster from the known team names and an optional
// fallback team. The fallback only takes effect if it names a known team.
func NewTeamRoster(teams []string, fallback string) *TeamRoster {
	r := &TeamRoster{
		ordered: make([]string, 0, len(teams)),
		tags:    make(map[string]string, len(teams)),
		names:   make(map[string]bool, len(teams)),
	}
	for _, team := range teams {
		team = strings.TrimSpace(team)
		if team == "" || r.names[team] {
			continue
		}
		r.ordered = append(r.ordered, team)
		r.tags["["+team+"]"] = team
		r.names[team] = true
	}
	if r.names[fallback] {
		r.fallback = fallback
	}
	return r
}

// Resolve determines the owning team for a test. Precedence:
// bracket tag in the title, annotation "team", annotation "owner",
// the configured fallback team, then UnknownTeam.
func (r *TeamRoster) Resolve(title string, annotations []types.Annotation) string {
	for _, team := range r.ordered {
		if strings.Contains(title, "["+team+"]") {
			return team
		}
	}
	if team, ok := r.fromAnnotations(annotations, annotationTeam); ok {
		return team
	}
	if team, ok := r.fromAnnotations(annotations, annotationOwner); ok {
		return team
	}
	if r.fallback != "" {
		return r.fallback
	}
	return UnknownTeam
}

func (r *TeamRoster) fromAnnotations(annotations []types.Annotation, annotationType string) (string, bool) {
	for _, a := range annotations {
		if a.Type != annotationType {
			continue
		}
		if r.names[a.Description] {
			return a.Description, true
		}
	}
	return "", false
}

// Teams returns the known team names in configuration order.
func (r *TeamRoster) Teams() []string {
	out := make([]string, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// rosterFile is the YAML shape of a team roster config file.
type rosterFile struct {
	Teams    []string `yaml:"teams"`
	Fallback string   `yaml:"fallback,omitempty"`
}

// LoadTeamRoster reads a roster from a YAML file. An explicit fallback team
// passed by the caller takes precedence over one declared in the file.
func LoadTeamRoster(path string, fallback string) (*TeamRoster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read team config %q: %w", path, err)
	}
	var file rosterFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse team config %q: %w", path, err)
	}
	if fallback == "" {
		fallback = file.Fallback
	}
	return NewTeamRoster(file.Teams, fallback), nil
}
