package mockapi

import (
	"fmt"
	"time"
)

type League struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Season string `json:"season"`
	Status string `json:"status"`
}

type Match struct {
	ID        string    `json:"id"`
	LeagueID  string    `json:"league_id"`
	HomeTeam  string    `json:"home_team"`
	AwayTeam  string    `json:"away_team"`
	Status    string    `json:"status"`
	StartTime time.Time `json:"start_time"`
}

type Score struct {
	MatchID   string `json:"match_id"`
	HomeScore int    `json:"home_score"`
	AwayScore int    `json:"away_score"`
	Period    string `json:"period"`
}

type Standing struct {
	Position     int    `json:"position"`
	Team         string `json:"team"`
	Played       int    `json:"played"`
	Won          int    `json:"won"`
	Drawn        int    `json:"drawn"`
	Lost         int    `json:"lost"`
	GoalsFor     int    `json:"goals_for"`
	GoalsAgainst int    `json:"goals_against"`
	Points       int    `json:"points"`
}

type Player struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Team     string `json:"team"`
	Position string `json:"position"`
	Category string `json:"category"`
}

// Store is the read-only data set served by the mock API.
type Store struct {
	leagues   []League
	matches   []Match
	scores    map[string]Score
	standings map[string]map[string][]Standing // league -> category -> table
	players   []Player
}

var teams = []string{"Kalinga Lancers", "Soorma Club", "Tamil Nadu Dragons", "Delhi Pipers", "UP Rudras", "Bengal Tigers"}

// NewStore builds a deterministic data set with the given number of
// leagues and matches per league.
func NewStore(leagues, matchesPerLeague int) *Store {
	s := &Store{
		scores:    make(map[string]Score),
		standings: make(map[string]map[string][]Standing),
	}

	kickoff := time.Date(2025, time.January, 4, 14, 0, 0, 0, time.UTC)
	for l := 1; l <= leagues; l++ {
		status := "active"
		if l%4 == 0 {
			status = "archived"
		}
		league := League{
			ID:     fmt.Sprintf("league-%03d", l),
			Name:   fmt.Sprintf("Premier Hockey League %d", l),
			Season: "2025",
			Status: status,
		}
		s.leagues = append(s.leagues, league)

		for m := 1; m <= matchesPerLeague; m++ {
			home := teams[(l+m)%len(teams)]
			away := teams[(l+m+1)%len(teams)]
			match := Match{
				ID:        fmt.Sprintf("match-%03d-%03d", l, m),
				LeagueID:  league.ID,
				HomeTeam:  home,
				AwayTeam:  away,
				Status:    "completed",
				StartTime: kickoff.Add(time.Duration(l*matchesPerLeague+m) * 24 * time.Hour),
			}
			s.matches = append(s.matches, match)
			s.scores[match.ID] = Score{
				MatchID:   match.ID,
				HomeScore: (l + m) % 5,
				AwayScore: (l * m) % 4,
				Period:    "FT",
			}
		}

		s.standings[league.ID] = map[string][]Standing{
			"men":   buildTable(l),
			"women": buildTable(l + 1),
		}
	}

	for i, team := range teams {
		for n := 1; n <= 3; n++ {
			category := "men"
			if n == 3 {
				category = "women"
			}
			s.players = append(s.players, Player{
				ID:       fmt.Sprintf("player-%02d-%d", i+1, n),
				Name:     fmt.Sprintf("%s Player %d", team, n),
				Team:     team,
				Position: []string{"forward", "midfielder", "defender"}[n-1],
				Category: category,
			})
		}
	}

	return s
}

func buildTable(seed int) []Standing {
	table := make([]Standing, 0, len(teams))
	for i := range teams {
		team := teams[(i+seed)%len(teams)]
		won := len(teams) - i
		lost := i
		table = append(table, Standing{
			Position:     i + 1,
			Team:         team,
			Played:       won + lost,
			Won:          won,
			Lost:         lost,
			GoalsFor:     won*3 + seed%3,
			GoalsAgainst: lost * 2,
			Points:       won * 3,
		})
	}
	return table
}

// Leagues returns the leagues with the given status, or all when status
// is empty.
func (s *Store) Leagues(status string) []League {
	out := make([]League, 0, len(s.leagues))
	for _, l := range s.leagues {
		if status == "" || l.Status == status {
			out = append(out, l)
		}
	}
	return out
}

// Matches returns the matches of a league, or all when leagueID is empty.
func (s *Store) Matches(leagueID string) []Match {
	out := make([]Match, 0)
	for _, m := range s.matches {
		if leagueID == "" || m.LeagueID == leagueID {
			out = append(out, m)
		}
	}
	return out
}

func (s *Store) Match(id string) (Match, bool) {
	for _, m := range s.matches {
		if m.ID == id {
			return m, true
		}
	}
	return Match{}, false
}

func (s *Store) Score(matchID string) (Score, bool) {
	sc, ok := s.scores[matchID]
	return sc, ok
}

// PointsTable returns the standings of a league for a category. Unknown
// leagues have an empty table.
func (s *Store) PointsTable(leagueID, category string) []Standing {
	byCategory, ok := s.standings[leagueID]
	if !ok {
		return []Standing{}
	}
	return byCategory[category]
}

func (s *Store) Players() []Player {
	return s.players
}
