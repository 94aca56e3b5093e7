package prompt

import (
	"strings"

	"github.com/garyjia/caredoc/internal/domain/apperr"
)

var invalidKeyMarkers = []string{
	"API key not valid",
	"API_KEY_INVALID",
	"invalid_api_key",
	"Incorrect API key",
	"status code: 401",
}

// UpstreamError wraps a provider failure with the message shown to users
func UpstreamError(err error) *apperr.Error {
	msg := err.Error()
	for _, marker := range invalidKeyMarkers {
		if strings.Contains(msg, marker) {
			return apperr.Upstream(err, apperr.MsgInvalidAPIKey)
		}
	}
	return apperr.Upstream(err, apperr.MsgUpstreamFailed, msg)
}
