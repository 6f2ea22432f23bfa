package walker

import (
	"net/url"
	"strings"
)

// Field is a piece of session context an endpoint can depend on.
type Field int

const (
	LeagueID Field = iota + 1
	MatchID
)

func (f Field) String() string {
	switch f {
	case LeagueID:
		return "league_id"
	case MatchID:
		return "match_id"
	default:
		return "unknown"
	}
}

// placeholder is how the field appears in a path template.
func (f Field) placeholder() string {
	return "{" + f.String() + "}"
}

// resource is the collection the field is discovered from.
func (f Field) resource() string {
	switch f {
	case LeagueID:
		return "leagues"
	case MatchID:
		return "matches"
	default:
		return "unknown"
	}
}

// idFields returns the record fields holding the identifier, in
// preference order.
func (f Field) idFields() (primary, secondary string) {
	switch f {
	case LeagueID:
		return "id", "league_id"
	case MatchID:
		return "id", "match_id"
	default:
		return "id", ""
	}
}

// Session is the context of one iteration. It is created fresh for every
// iteration and never shared between virtual users.
type Session struct {
	values map[Field]string
}

func NewSession() *Session {
	return &Session{values: make(map[Field]string, 2)}
}

func (s *Session) Has(f Field) bool {
	_, ok := s.values[f]
	return ok
}

func (s *Session) Get(f Field) (string, bool) {
	v, ok := s.values[f]
	return v, ok
}

func (s *Session) Set(f Field, value string) {
	s.values[f] = value
}

// Resolve renders the endpoint path from the session. It returns false
// when a field the endpoint requires has not been discovered.
func (s *Session) Resolve(e Endpoint) (string, bool) {
	path, query, _ := strings.Cut(e.Path, "?")
	for _, f := range e.Requires {
		v, ok := s.values[f]
		if !ok {
			return "", false
		}
		path = strings.ReplaceAll(path, f.placeholder(), url.PathEscape(v))
		query = strings.ReplaceAll(query, f.placeholder(), url.QueryEscape(v))
	}
	if query == "" {
		return path, true
	}
	return path + "?" + query, true
}
