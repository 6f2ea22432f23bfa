package mockapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Shape selects how list responses are wrapped.
type Shape string

const (
	ShapePlain Shape = "plain" // bare JSON array
	ShapeData  Shape = "data"  // {"data": [...]}
	ShapeItems Shape = "items" // {"data": {"items": [...], "total": n}}
)

// ParseShape accepts the names of the Shape constants.
func ParseShape(name string) (Shape, bool) {
	switch Shape(name) {
	case ShapePlain, ShapeData, ShapeItems:
		return Shape(name), true
	}
	return "", false
}

// Handler serves the league API from a Store.
type Handler struct {
	store     *Store
	shape     Shape
	legacyIDs bool
}

func NewHandler(store *Store, shape Shape, legacyIDs bool) *Handler {
	return &Handler{
		store:     store,
		shape:     shape,
		legacyIDs: legacyIDs,
	}
}

// Health GET /health
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ListLeagues GET /leagues?status=active
func (h *Handler) ListLeagues(c *gin.Context) {
	leagues := h.store.Leagues(c.Query("status"))
	if !h.legacyIDs {
		c.JSON(http.StatusOK, h.wrap(leagues, len(leagues)))
		return
	}

	out := make([]gin.H, 0, len(leagues))
	for _, l := range leagues {
		out = append(out, gin.H{"league_id": l.ID, "name": l.Name, "season": l.Season, "status": l.Status})
	}
	c.JSON(http.StatusOK, h.wrap(out, len(out)))
}

// ListMatches GET /matches?league_id=...
func (h *Handler) ListMatches(c *gin.Context) {
	matches := h.store.Matches(c.Query("league_id"))
	if !h.legacyIDs {
		c.JSON(http.StatusOK, h.wrap(matches, len(matches)))
		return
	}

	out := make([]gin.H, 0, len(matches))
	for _, m := range matches {
		out = append(out, gin.H{
			"match_id":   m.ID,
			"league_id":  m.LeagueID,
			"home_team":  m.HomeTeam,
			"away_team":  m.AwayTeam,
			"status":     m.Status,
			"start_time": m.StartTime,
		})
	}
	c.JSON(http.StatusOK, h.wrap(out, len(out)))
}

// GetMatch GET /matches/:id
func (h *Handler) GetMatch(c *gin.Context) {
	match, ok := h.store.Match(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "match not found"})
		return
	}
	c.JSON(http.StatusOK, match)
}

// GetMatchScore GET /matches/:id/score
func (h *Handler) GetMatchScore(c *gin.Context) {
	score, ok := h.store.Score(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "match not found"})
		return
	}
	c.JSON(http.StatusOK, score)
}

// PointsTable GET /points-table?league_id=...&category=men|women
func (h *Handler) PointsTable(c *gin.Context) {
	leagueID := c.Query("league_id")
	if leagueID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "league_id is required"})
		return
	}
	category := c.DefaultQuery("category", "men")
	if category != "men" && category != "women" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "category must be men or women"})
		return
	}

	table := h.store.PointsTable(leagueID, category)
	c.JSON(http.StatusOK, h.wrap(table, len(table)))
}

// ListPlayers GET /players
func (h *Handler) ListPlayers(c *gin.Context) {
	players := h.store.Players()
	c.JSON(http.StatusOK, h.wrap(players, len(players)))
}

func (h *Handler) wrap(list any, total int) any {
	switch h.shape {
	case ShapeData:
		return gin.H{"data": list}
	case ShapeItems:
		return gin.H{"data": gin.H{"items": list, "total": total}}
	default:
		return list
	}
}
