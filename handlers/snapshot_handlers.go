// api/handlers/snapshot_handlers.go
package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"shoppulse/api/models"
	"shoppulse/api/snapshot"
	"shoppulse/api/store"
	"shoppulse/api/utils"
)

// SnapshotProvider is what the handlers need from the assembler; tests
// substitute a fake.
type SnapshotProvider interface {
	Assemble(ctx context.Context, days int) (*models.Snapshot, error)
}

// ReferenceDater resolves the anchor date the dashboard caption shows.
type ReferenceDater interface {
	MaxEventDate(ctx context.Context) (time.Time, error)
}

type SnapshotHandlers struct {
	Provider SnapshotProvider
	Store    ReferenceDater
	Cache    *snapshot.Cache
}

func NewSnapshotHandlers(provider SnapshotProvider, st ReferenceDater, cache *snapshot.Cache) *SnapshotHandlers {
	return &SnapshotHandlers{
		Provider: provider,
		Store:    st,
		Cache:    cache,
	}
}

// GetSnapshot handles GET /api/stats/snapshot?days=N. It returns one
// complete aggregate bundle for the lookback window, served from the cache
// when a fresh enough copy exists.
func (h *SnapshotHandlers) GetSnapshot(c *gin.Context) {
	days, err := utils.ParseWindowDays(c.Query("days"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	if snap, ok := h.Cache.Get(ctx, days); ok {
		c.JSON(http.StatusOK, snap)
		return
	}

	snap, err := h.Provider.Assemble(ctx, days)
	if err != nil {
		if errors.Is(err, store.ErrDataUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Behavior store has no events; no reference date can be resolved"})
			return
		}
		log.Printf("Error assembling snapshot for days=%d: %v", days, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to assemble snapshot"})
		return
	}

	h.Cache.Set(ctx, days, snap)
	c.JSON(http.StatusOK, snap)
}

// GetReferenceDate handles GET /api/stats/reference-date. All "recent"
// figures anchor to this date rather than wall-clock time.
func (h *SnapshotHandlers) GetReferenceDate(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	refDate, err := h.Store.MaxEventDate(ctx)
	if err != nil {
		if errors.Is(err, store.ErrDataUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Behavior store has no events"})
			return
		}
		log.Printf("Error resolving reference date: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve reference date"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"referenceDate": refDate.Format("2006-01-02")})
}

// HealthCheck handles GET /api/health.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
