package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// NewErrorHandler creates a custom error handler for Echo that renders the
// error page, falling back to plain text when rendering fails.
func NewErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		errorTitle := "Internal Server Error"
		errorMessage := ""

		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code

			if msg, ok := he.Message.(string); ok && msg != "" {
				errorMessage = msg
			}

			switch code {
			case http.StatusNotFound:
				errorTitle = "Page Not Found"
				if errorMessage == "" {
					errorMessage = "The page you're looking for doesn't exist."
				}
			case http.StatusUnauthorized:
				errorTitle = "Unauthorized"
				if errorMessage == "" {
					errorMessage = "Please log in to continue."
				}
			case http.StatusBadRequest:
				errorTitle = "Bad Request"
				if errorMessage == "" {
					errorMessage = "The request could not be processed."
				}
			default:
				if errorMessage == "" {
					errorMessage = "Something went wrong. Please try again later."
				}
			}
		} else {
			errorMessage = "Something went wrong. Please try again later."
		}

		log.Error().Err(err).Int("status", code).Str("path", c.Request().URL.Path).Msg("request failed")

		data := map[string]interface{}{
			"Title":        errorTitle,
			"ActiveNav":    "",
			"ErrorTitle":   errorTitle,
			"ErrorMessage": errorMessage,
		}
		if renderErr := c.Render(code, "error.html", data); renderErr != nil {
			log.Error().Err(renderErr).Msg("failed to render error page")
			_ = c.String(code, errorMessage)
		}
	}
}
