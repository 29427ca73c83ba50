package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/dairyadmin/internal/realtime"
	"github.com/charlesng35/dairyadmin/pkg/errors"
	"github.com/charlesng35/dairyadmin/pkg/response"
)

// RealtimeHandler upgrades authenticated requests into invalidation streams.
type RealtimeHandler struct {
	hub            *realtime.Hub
	allowedStreams map[string]struct{}
}

// NewRealtimeHandler constructs a realtime handler restricted to streams.
// If no streams are provided, only the invalidation stream is served.
func NewRealtimeHandler(hub *realtime.Hub, streams ...string) *RealtimeHandler {
	if len(streams) == 0 {
		streams = []string{realtime.StreamInvalidations}
	}
	allowed := make(map[string]struct{}, len(streams))
	for _, stream := range streams {
		if stream = normalizeStream(stream); stream != "" {
			allowed[stream] = struct{}{}
		}
	}
	return &RealtimeHandler{hub: hub, allowedStreams: allowed}
}

// GET /api/ws. Authentication runs in middleware; browsers pass ?token= on the upgrade.
func (h *RealtimeHandler) Stream(c *gin.Context) {
	if h.hub == nil {
		response.Error(c, errors.ErrNotFound)
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	streams := gatherStreams(c)
	if len(streams) == 0 {
		streams = []string{realtime.StreamInvalidations}
	}
	for _, stream := range streams {
		if _, ok := h.allowedStreams[stream]; !ok {
			response.Error(c, errors.ErrNotFound)
			return
		}
	}

	h.hub.Serve(userKey(userID), streams, h.allowedStreams, c.Writer, c.Request)
}

func gatherStreams(c *gin.Context) []string {
	var streams []string

	for _, queryStream := range c.QueryArray("stream") {
		if normalized := normalizeStream(queryStream); normalized != "" {
			streams = append(streams, normalized)
		}
	}

	if raw := c.Query("streams"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			if normalized := normalizeStream(part); normalized != "" {
				streams = append(streams, normalized)
			}
		}
	}

	return uniqueStreams(streams)
}

func normalizeStream(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func uniqueStreams(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	var out []string
	for _, value := range values {
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}

func userKey(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
