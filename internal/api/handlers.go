package api

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"strings"

	"codeberg.org/mutker/hostctl/internal/control"
	"github.com/gin-gonic/gin"
)

type valueRequest struct {
	Value json.RawMessage `json:"value"`
}

type actionRequest struct {
	Action string `json:"action"`
}

func (s *Server) listTargets(c *gin.Context) {
	entries, err := s.launcher.List()
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, entries)
}

func (s *Server) launch(c *gin.Context) {
	id := c.Param("id")
	if err := s.launcher.Launch(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "launched": id})
}

// status omits values that could not be read.
func (s *Server) status(c *gin.Context) {
	body := gin.H{"now_playing": gin.H{}}

	if out := s.control.Volume(c.Request.Context()); out.OK {
		body["volume"] = out.Value
	}
	if out := s.control.Brightness(c.Request.Context()); out.OK {
		body["brightness"] = out.Value
	}

	c.JSON(http.StatusOK, body)
}

func (s *Server) monitoring(c *gin.Context) {
	c.JSON(http.StatusOK, s.monitor.Snapshot(c.Request.Context()))
}

func (s *Server) setVolume(c *gin.Context) {
	v, out, ok := bindValue(c)
	if !ok {
		writeOutcome(c, out)
		return
	}

	writeOutcome(c, s.control.SetVolume(c.Request.Context(), v))
}

func (s *Server) toggleMute(c *gin.Context) {
	writeOutcome(c, s.control.ToggleMute(c.Request.Context()))
}

func (s *Server) setBrightness(c *gin.Context) {
	v, out, ok := bindValue(c)
	if !ok {
		writeOutcome(c, out)
		return
	}

	writeOutcome(c, s.control.SetBrightness(c.Request.Context(), v))
}

func (s *Server) media(c *gin.Context) {
	writeOutcome(c, s.control.Media(c.Request.Context(), bindAction(c)))
}

func (s *Server) toggleTheme(c *gin.Context) {
	writeOutcome(c, s.control.ToggleTheme(c.Request.Context()))
}

func (s *Server) power(c *gin.Context) {
	writeOutcome(c, s.control.Power(c.Request.Context(), bindAction(c)))
}

// bindValue accepts an integer, a number or a numeric string. Fractions
// are truncated.
func bindValue(c *gin.Context) (int, control.Outcome, bool) {
	var req valueRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Value) == 0 || string(req.Value) == "null" {
		return 0, control.Failure(control.KindClient, "missing value"), false
	}

	v, ok := parseValue(req.Value)
	if !ok {
		return 0, control.Failure(control.KindClient, "invalid value"), false
	}

	return v, control.Outcome{}, true
}

func parseValue(raw json.RawMessage) (int, bool) {
	var number float64
	if err := json.Unmarshal(raw, &number); err == nil {
		return truncate(number)
	}

	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, false
	}

	return n, true
}

func truncate(v float64) (int, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) > math.MaxInt32 {
		return 0, false
	}

	return int(v), true
}

// bindAction tolerates a missing or malformed body; the empty action is
// rejected by the dispatcher.
func bindAction(c *gin.Context) string {
	var req actionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return ""
	}

	return req.Action
}
