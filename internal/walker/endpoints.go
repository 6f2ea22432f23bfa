package walker

// Endpoint describes one request of a walk.
type Endpoint struct {
	Tag      string  // request name reported to the collector
	Path     string  // template, may reference {league_id} and {match_id}
	Requires []Field // context the template needs
	Check    string  // label of the status 200 check
}

var (
	smokeHealth = Endpoint{Tag: "health", Path: "/health", Check: "health status 200"}
	smokeLeague = Endpoint{Tag: "leagues", Path: "/leagues?status=active", Check: "leagues status 200"}
)

var (
	listLeagues = Endpoint{
		Tag:   "list_leagues",
		Path:  "/leagues?status=active",
		Check: "leagues status 200",
	}
	listMatches = Endpoint{
		Tag:      "list_matches",
		Path:     "/matches?league_id={league_id}",
		Requires: []Field{LeagueID},
		Check:    "matches status 200",
	}
	getMatchDetail = Endpoint{
		Tag:      "get_match_detail",
		Path:     "/matches/{match_id}",
		Requires: []Field{MatchID},
		Check:    "match detail status 200",
	}
	getMatchScore = Endpoint{
		Tag:      "get_match_score",
		Path:     "/matches/{match_id}/score",
		Requires: []Field{MatchID},
		Check:    "match score status 200",
	}
	getPointsTableMen = Endpoint{
		Tag:      "get_points_table",
		Path:     "/points-table?league_id={league_id}&category=men",
		Requires: []Field{LeagueID},
		Check:    "points table status 200",
	}
	getPointsTableWomen = Endpoint{
		Tag:      "get_points_table_women",
		Path:     "/points-table?league_id={league_id}&category=women",
		Requires: []Field{LeagueID},
		Check:    "points table women status 200",
	}
	listPlayers = Endpoint{
		Tag:   "list_players",
		Path:  "/players",
		Check: "players status 200",
	}
)

var (
	spikeLeagues = Endpoint{Tag: "spike_leagues", Path: "/leagues?status=active", Check: "leagues status 200"}
	spikeMatches = Endpoint{
		Tag:      "spike_matches",
		Path:     "/matches?league_id={league_id}",
		Requires: []Field{LeagueID},
		Check:    "matches status 200",
	}
	spikePoints = Endpoint{
		Tag:      "spike_points",
		Path:     "/points-table?league_id={league_id}&category=men",
		Requires: []Field{LeagueID},
		Check:    "points status 200",
	}
	spikeHealth = Endpoint{Tag: "spike_health", Path: "/health", Check: "health status 200"}
)
