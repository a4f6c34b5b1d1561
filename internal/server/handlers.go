package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/web2native/bridge/internal/host"
	"github.com/web2native/bridge/web"
)

func (s *Server) index(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", web.IndexHTML)
}

func (s *Server) bridgeJS(c *gin.Context) {
	c.Data(http.StatusOK, "application/javascript; charset=utf-8", web.BridgeJS)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"service":  "bridge-devhost",
		"device":   s.device.Identity().Description(),
		"sessions": s.hub.SessionCount(),
		"registry": s.registry.Stats(),
	})
}

func (s *Server) metricsJSON(c *gin.Context) {
	c.JSON(http.StatusOK, s.metrics.GetSnapshot())
}

func (s *Server) listServices(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"services": s.registry.List(),
		"stats":    s.registry.Stats(),
	})
}

func (s *Server) listPending(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"sessions": s.hub.Pending(),
	})
}

func (s *Server) recentAudit(c *gin.Context) {
	if s.auditor == nil {
		c.JSON(http.StatusOK, gin.H{"enabled": false, "events": []struct{}{}})
		return
	}

	n, err := strconv.Atoi(c.DefaultQuery("n", "50"))
	if err != nil || n < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "n must be a non-negative integer"})
		return
	}

	events, err := s.auditor.Recent(n)
	if err != nil {
		s.logger.Error("audit read failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "audit read failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"enabled": true, "events": events})
}

func (s *Server) deviceState(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"device": s.device.Snapshot(),
		"flags":  s.flags.Snapshot(),
		"events": s.device.Events(),
	})
}

// injectTag feeds an NFC tag to the simulated device, resolving a waiting
// startNFCScan if one is pending.
func (s *Server) injectTag(c *gin.Context) {
	var tag host.Tag
	if err := c.ShouldBindJSON(&tag); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "body must be {tagId, payload}"})
		return
	}
	if tag.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tagId is required"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"queued": s.device.InjectTag(tag)})
}
