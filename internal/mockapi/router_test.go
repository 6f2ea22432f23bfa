package mockapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/proleague/league-loadtest/internal/walker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(t *testing.T, r http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	r := NewRouter(NewStore(2, 2), Options{})

	w := serve(t, r, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestListShapesAreExtractable(t *testing.T) {
	for _, shape := range []Shape{ShapePlain, ShapeData, ShapeItems} {
		t.Run(string(shape), func(t *testing.T) {
			r := NewRouter(NewStore(3, 2), Options{Shape: shape})

			w := serve(t, r, "/leagues?status=active")
			require.Equal(t, http.StatusOK, w.Code)

			list, ok := walker.ExtractList(w.Body.Bytes())
			require.True(t, ok)
			assert.Len(t, list, 3)

			id, ok := walker.FirstID(list, "id", "league_id")
			require.True(t, ok)
			assert.Equal(t, "league-001", id)
		})
	}
}

func TestLegacyIDs(t *testing.T) {
	r := NewRouter(NewStore(1, 1), Options{LegacyIDs: true})

	w := serve(t, r, "/leagues")
	var leagues []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &leagues))
	require.Len(t, leagues, 1)
	assert.NotContains(t, leagues[0], "id")
	assert.Equal(t, "league-001", leagues[0]["league_id"])

	w = serve(t, r, "/matches?league_id=league-001")
	var matches []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &matches))
	require.Len(t, matches, 1)
	assert.NotContains(t, matches[0], "id")
	assert.Equal(t, "match-001-001", matches[0]["match_id"])
}

func TestLeaguesFilterByStatus(t *testing.T) {
	r := NewRouter(NewStore(4, 1), Options{})

	var active, all []League
	require.NoError(t, json.Unmarshal(serve(t, r, "/leagues?status=active").Body.Bytes(), &active))
	require.NoError(t, json.Unmarshal(serve(t, r, "/leagues").Body.Bytes(), &all))

	assert.Len(t, active, 3)
	assert.Len(t, all, 4)
}

func TestMatchesByLeague(t *testing.T) {
	r := NewRouter(NewStore(2, 3), Options{})

	var matches []Match
	require.NoError(t, json.Unmarshal(serve(t, r, "/matches?league_id=league-002").Body.Bytes(), &matches))
	require.Len(t, matches, 3)
	for _, m := range matches {
		assert.Equal(t, "league-002", m.LeagueID)
	}

	w := serve(t, r, "/matches?league_id=nope")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestMatchDetailAndScore(t *testing.T) {
	r := NewRouter(NewStore(1, 2), Options{})

	w := serve(t, r, "/matches/match-001-002")
	require.Equal(t, http.StatusOK, w.Code)
	var match Match
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &match))
	assert.Equal(t, "match-001-002", match.ID)

	w = serve(t, r, "/matches/match-001-002/score")
	require.Equal(t, http.StatusOK, w.Code)
	var score Score
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &score))
	assert.Equal(t, "match-001-002", score.MatchID)

	assert.Equal(t, http.StatusNotFound, serve(t, r, "/matches/missing").Code)
	assert.Equal(t, http.StatusNotFound, serve(t, r, "/matches/missing/score").Code)
}

func TestPointsTable(t *testing.T) {
	r := NewRouter(NewStore(1, 1), Options{Shape: ShapeItems})

	w := serve(t, r, "/points-table?league_id=league-001&category=women")
	require.Equal(t, http.StatusOK, w.Code)
	list, ok := walker.ExtractList(w.Body.Bytes())
	require.True(t, ok)
	assert.Len(t, list, len(teams))

	assert.Equal(t, http.StatusBadRequest, serve(t, r, "/points-table?league_id=league-001&category=mixed").Code)
	assert.Equal(t, http.StatusBadRequest, serve(t, r, "/points-table?category=men").Code)
}

func TestPlayers(t *testing.T) {
	r := NewRouter(NewStore(1, 1), Options{Shape: ShapeData})

	w := serve(t, r, "/players")
	require.Equal(t, http.StatusOK, w.Code)
	list, ok := walker.ExtractList(w.Body.Bytes())
	require.True(t, ok)
	assert.Len(t, list, len(teams)*3)
}

func TestFaultInjection(t *testing.T) {
	r := NewRouter(NewStore(1, 1), Options{FailureRate: 1})

	w := serve(t, r, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRateLimit(t *testing.T) {
	r := NewRouter(NewStore(1, 1), Options{MaxRPS: 1, Burst: 1})

	assert.Equal(t, http.StatusOK, serve(t, r, "/health").Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(t, r, "/health").Code)
}

func TestParseShape(t *testing.T) {
	shape, ok := ParseShape("items")
	assert.True(t, ok)
	assert.Equal(t, ShapeItems, shape)

	_, ok = ParseShape("xml")
	assert.False(t, ok)
}
