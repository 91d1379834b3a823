package v1

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	svcerrors "github.com/mugiwara-labs/receiptsense/server/internal/errors"
	"github.com/mugiwara-labs/receiptsense/server/preference"
	"github.com/mugiwara-labs/receiptsense/store"
)

type savePreferencesResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	PreferencesID string `json:"preferences_id"`
	SavedAt       string `json:"saved_at"`
}

type preferenceRecordPayload struct {
	PreferenceID string                            `json:"preference_id"`
	UserID       string                            `json:"user_id"`
	UserName     string                            `json:"user_name"`
	UserEmail    string                            `json:"user_email"`
	Preferences  map[string]*store.PreferenceEntry `json:"preferences"`
	CreatedAt    int64                             `json:"created_at"`
	UpdatedAt    int64                             `json:"updated_at"`
	Version      string                            `json:"version"`
}

// SaveUserPreferences validates and persists a preference submission.
func (s *APIV1Service) SaveUserPreferences(c echo.Context) error {
	submission := &preference.Submission{}
	if err := c.Bind(submission); err != nil {
		return replyError(c, svcerrors.InvalidArgument("malformed preferences payload"))
	}

	record, err := s.PreferenceService.Submit(c.Request().Context(), submission)
	if err != nil {
		return replyError(c, err)
	}

	return c.JSON(http.StatusOK, savePreferencesResponse{
		Success:       true,
		Message:       "Preferences saved successfully!",
		PreferencesID: record.PreferenceID,
		SavedAt:       time.Now().UTC().Format(time.RFC3339),
	})
}

// GetUserPreferences returns the user's most recent preference record.
func (s *APIV1Service) GetUserPreferences(c echo.Context) error {
	userID, ok := requireQueryParam(c, "user_id")
	if !ok {
		return replyError(c, svcerrors.InvalidArgument("user_id is required"))
	}

	record, err := s.PreferenceService.Latest(c.Request().Context(), userID)
	if err != nil {
		return replyError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": "Preferences retrieved successfully",
		"data": preferenceRecordPayload{
			PreferenceID: record.PreferenceID,
			UserID:       record.UserID,
			UserName:     record.UserName,
			UserEmail:    record.UserEmail,
			Preferences:  record.Preferences,
			CreatedAt:    record.CreatedTs,
			UpdatedAt:    record.UpdatedTs,
			Version:      record.Version,
		},
	})
}
