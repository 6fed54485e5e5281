// Package curation loads the hand-authored season/episode corpus and
// projects it into ordered target playlists.
package curation

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalidCorpus marks a corpus or playlist spec file that cannot be
// parsed.
var ErrInvalidCorpus = errors.New("invalid curation document")

// Type tags an episode entry. Exactly one title field of an Episode is
// set, and that field names its type.
type Type string

const (
	TypeEpisode   Type = "episode"
	TypeSpecial   Type = "special"
	TypeTrailer   Type = "trailer"
	TypeBTS       Type = "bts"
	TypeAnimation Type = "animation"
	TypeExternal  Type = "external"
)

// Season is one hand-authored season: an ordered list of episodes plus
// the attributes playlist predicates filter on.
type Season struct {
	Season string `yaml:"season"`
	From   string `yaml:"from"`
	// SortBy optionally overrides the authored episode order. The only
	// recognized value is "oldest" (sort by published time, ascending).
	SortBy string `yaml:"sort by,omitempty"`
	Debut  string `yaml:"debut,omitempty"`
	Cast   string `yaml:"cast,omitempty"`
	World  string `yaml:"world,omitempty"`

	Videos []*Episode `yaml:"videos"`
}

// Episode is one curated entry. The title lives in whichever field
// matches the entry's type; the video references live in the access-tier
// fields, singular or multi-part.
type Episode struct {
	Trailer   string `yaml:"trailer,omitempty"`
	Episode   string `yaml:"episode,omitempty"`
	Animation string `yaml:"animation,omitempty"`
	BTS       string `yaml:"bts,omitempty"`
	Special   string `yaml:"special,omitempty"`
	External  string `yaml:"external,omitempty"`

	// Access-tier video references. Public and PublicParts are the free
	// tier; Dropout is an off-platform paid reference that can never be
	// placed in a playlist.
	Public      string   `yaml:"public,omitempty"`
	PublicParts []string `yaml:"public parts,omitempty"`
	Members     string   `yaml:"members,omitempty"`
	Dropout     string   `yaml:"dropout,omitempty"`

	Published string `yaml:"published,omitempty"`
	Duration  int64  `yaml:"duration,omitempty"`
}

// Type returns the episode's type tag, or "" if no title field is set.
func (e *Episode) Type() Type {
	switch {
	case e.Episode != "":
		return TypeEpisode
	case e.Special != "":
		return TypeSpecial
	case e.Trailer != "":
		return TypeTrailer
	case e.BTS != "":
		return TypeBTS
	case e.Animation != "":
		return TypeAnimation
	case e.External != "":
		return TypeExternal
	default:
		return ""
	}
}

// Title returns the authored title from whichever type field is set.
func (e *Episode) Title() string {
	for _, t := range []string{e.Episode, e.Special, e.Trailer, e.BTS, e.Animation, e.External} {
		if t != "" {
			return t
		}
	}
	return ""
}

// PlaylistSpec is one target playlist definition: an inclusion predicate
// plus name and description template.
type PlaylistSpec struct {
	Name        string    `yaml:"name"`
	PlaylistID  string    `yaml:"id,omitempty"`
	Description string    `yaml:"description"`
	Include     Predicate `yaml:"include"`
}

// Predicate is a playlist's inclusion filter. Empty list fields match
// everything.
type Predicate struct {
	Shows    []string `yaml:"show,omitempty"`
	Seasons  []string `yaml:"season,omitempty"`
	Casts    []string `yaml:"cast,omitempty"`
	Worlds   []string `yaml:"world,omitempty"`
	Types    []string `yaml:"type,omitempty"`
	FreeOnly bool     `yaml:"free-only,omitempty"`
}

// MatchesSeason reports whether the predicate's season-level filters
// admit the given season.
func (p *Predicate) MatchesSeason(s *Season) bool {
	if len(p.Shows) > 0 && !contains(p.Shows, s.From) {
		return false
	}
	if len(p.Seasons) > 0 && !contains(p.Seasons, s.Season) {
		return false
	}
	if len(p.Casts) > 0 && !contains(p.Casts, s.Cast) {
		return false
	}
	if len(p.Worlds) > 0 && !contains(p.Worlds, s.World) {
		return false
	}
	return true
}

// MatchesType reports whether the predicate admits the episode type.
func (p *Predicate) MatchesType(t Type) bool {
	return len(p.Types) == 0 || contains(p.Types, string(t))
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

// LoadSeasons reads the season corpus from a YAML file.
func LoadSeasons(path string) ([]*Season, error) {
	var seasons []*Season
	if err := loadYAML(path, &seasons); err != nil {
		return nil, err
	}
	return seasons, nil
}

// LoadPlaylistSpecs reads the target playlist definitions from a YAML file.
func LoadPlaylistSpecs(path string) ([]*PlaylistSpec, error) {
	var specs []*PlaylistSpec
	if err := loadYAML(path, &specs); err != nil {
		return nil, err
	}
	return specs, nil
}

func loadYAML(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidCorpus, path, err)
	}
	return nil
}
