package gemini

import (
	"errors"
	"strings"

	"google.golang.org/api/googleapi"

	"jobfit/internal/analysis"
)

// classifyAPIError maps transport failures onto the pipeline taxonomy.
// The daily-quota check looks for the "PerDay" quota id the API embeds in
// 429 bodies; every other 429 is a short-window rate limit.
func classifyAPIError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case 429:
			if strings.Contains(gerr.Body, "PerDay") || strings.Contains(gerr.Message, "PerDay") {
				return analysis.DailyQuota(err)
			}
			return analysis.RateLimited(err)
		case 401, 403:
			return analysis.Auth(err)
		}
		return analysis.Generic(err)
	}

	// The SDK sometimes flattens API errors to strings.
	msg := err.Error()
	switch {
	case strings.Contains(msg, "PerDay"):
		return analysis.DailyQuota(err)
	case strings.Contains(msg, "429") || strings.Contains(strings.ToLower(msg), "quota"):
		return analysis.RateLimited(err)
	case strings.Contains(msg, "403") || strings.Contains(msg, "401") ||
		strings.Contains(strings.ToLower(msg), "permission") ||
		strings.Contains(strings.ToLower(msg), "api key"):
		return analysis.Auth(err)
	}
	return analysis.Generic(err)
}
