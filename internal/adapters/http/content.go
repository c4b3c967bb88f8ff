package http

import (
	"fmt"
	"net/http"
	"os"

	"github.com/dkeye/Relay/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type Resource struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

var defaultResources = []Resource{
	{Title: "Breathing Techniques", Content: "Breathe in 4 seconds, hold 4, out 4..."},
	{Title: "Mental Health Hotline", Content: "Call 988 (USA Crisis Support)"},
	{Title: "You Are Not Alone", Content: "This space is safe. We’re here for you."},
}

// Content serves the fixed informational endpoints.
type Content struct {
	PrivacyPath string
	List        []Resource
}

func NewContent(privacyPath string) *Content {
	return &Content{PrivacyPath: privacyPath, List: defaultResources}
}

func (ct *Content) Resources(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"resources": ct.List})
}

func (ct *Content) loadPrivacy() ([]byte, error) {
	data, err := os.ReadFile(ct.PrivacyPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrAssetUnavailable, err)
	}
	return data, nil
}

func (ct *Content) Privacy(c *gin.Context) {
	data, err := ct.loadPrivacy()
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Str("path", ct.PrivacyPath).Msg("privacy policy")
		c.String(http.StatusInternalServerError, "Unable to load privacy policy")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", data)
}
