// Package v1 exposes the REST API.
package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/semaphore"

	"github.com/mugiwara-labs/receiptsense/internal/profile"
	"github.com/mugiwara-labs/receiptsense/internal/version"
	"github.com/mugiwara-labs/receiptsense/plugin/ai"
	"github.com/mugiwara-labs/receiptsense/plugin/storage"
	"github.com/mugiwara-labs/receiptsense/server/chat"
	"github.com/mugiwara-labs/receiptsense/server/export"
	"github.com/mugiwara-labs/receiptsense/server/internal/observability"
	"github.com/mugiwara-labs/receiptsense/server/preference"
	"github.com/mugiwara-labs/receiptsense/server/runner/extract"
	"github.com/mugiwara-labs/receiptsense/server/suggestion"
	"github.com/mugiwara-labs/receiptsense/store"
)

type APIV1Service struct {
	Profile *profile.Profile
	Store   *store.Store

	PreferenceService *preference.Service
	SuggestionService *suggestion.Generator
	ChatService       *chat.Service
	ExportService     *export.Service

	ObjectStore   storage.ObjectStore
	ExtractRunner *extract.Runner
	Metrics       *observability.Metrics

	// thumbnailSemaphore limits concurrent thumbnail generation to prevent
	// memory exhaustion on image-heavy uploads.
	thumbnailSemaphore *semaphore.Weighted
}

func NewAPIV1Service(p *profile.Profile, st *store.Store, completer ai.Completer, objectStore storage.ObjectStore, extractRunner *extract.Runner) *APIV1Service {
	return &APIV1Service{
		Profile:            p,
		Store:              st,
		PreferenceService:  preference.NewService(st),
		SuggestionService:  suggestion.NewGenerator(completer),
		ChatService:        chat.NewService(st),
		ExportService:      export.NewService(st),
		ObjectStore:        objectStore,
		ExtractRunner:      extractRunner,
		thumbnailSemaphore: semaphore.NewWeighted(3),
	}
}

// RegisterRoutes wires all v1 endpoints onto the echo instance.
func (s *APIV1Service) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/v1")

	g.GET("/ping", s.Ping)

	g.POST("/upload", s.UploadReceipt)
	g.GET("/receipt/:id", s.GetReceipt)
	g.GET("/receipts", s.ListReceipts)
	g.GET("/latest-receipt", s.GetLatestReceipt)

	g.POST("/user-preferences", s.SaveUserPreferences)
	g.GET("/user-preferences-list", s.GetUserPreferences)

	g.GET("/smart-actions", s.GetSmartActions)

	g.POST("/chat", s.Chat)
	g.GET("/chat-history", s.ChatHistory)

	g.GET("/export", s.ExportReceipts)

	g.GET("/stats", s.GetStats)
}

// Ping reports liveness.
func (s *APIV1Service) Ping(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"message": "Backend is alive!",
		"version": version.GetCurrentVersion(s.Profile.Mode),
	})
}

// GetStats reports request metrics for this instance.
func (s *APIV1Service) GetStats(c echo.Context) error {
	if s.Metrics == nil {
		return c.JSON(http.StatusOK, observability.Snapshot{})
	}
	return c.JSON(http.StatusOK, s.Metrics.Snapshot())
}
