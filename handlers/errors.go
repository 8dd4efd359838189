package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/dmitrymomot/postcard/internal"
	"github.com/dmitrymomot/postcard/middlewares"
	"github.com/dmitrymomot/postcard/pkg/htmx"
	"github.com/dmitrymomot/postcard/pkg/validator"
	"github.com/dmitrymomot/postcard/views"
)

// errorResponse is the JSON body for failed image requests.
type errorResponse struct {
	Error     string                     `json:"error"`
	Fields    validator.ValidationErrors `json:"fields,omitempty"`
	RequestID string                     `json:"request_id,omitempty"`
}

// ErrorHandler renders handler errors. Image requests get JSON, HTMX
// requests get an alert swapped into #alerts, everything else an error
// page. Causes are logged and never shown.
func ErrorHandler(c internal.Context, err error) error {
	httpErr := internal.AsHTTPError(err)
	if httpErr == nil {
		httpErr = internal.ErrInternal(msgGenericFailed, internal.WithError(err))
	}
	if httpErr.RequestID == "" {
		httpErr.RequestID = middlewares.GetRequestID(c)
	}

	logError(c, httpErr)

	if wantsJSON(c.Request()) {
		return c.JSON(httpErr.Code, errorResponse{
			Error:     httpErr.Message,
			Fields:    httpErr.Fields,
			RequestID: httpErr.RequestID,
		})
	}

	v := views.ErrorView{
		Code:      httpErr.Code,
		Message:   httpErr.Message,
		RequestID: httpErr.RequestID,
	}
	return c.RenderPartial(httpErr.Code, views.ErrorPage(v), views.ErrorAlert(v),
		htmx.WithRetarget("#alerts"),
		htmx.WithReswap(htmx.SwapInnerHTML),
	)
}

// NotFound renders the 404 page.
func NotFound(c internal.Context) error {
	return ErrorHandler(c, internal.ErrNotFound("The page you're looking for doesn't exist."))
}

// MethodNotAllowed renders the 405 page.
func MethodNotAllowed(c internal.Context) error {
	return ErrorHandler(c, internal.NewHTTPError(http.StatusMethodNotAllowed,
		"This HTTP method is not allowed for this resource."))
}

func logError(c internal.Context, e *internal.HTTPError) {
	if e.Err == nil {
		return
	}
	attrs := []any{
		slog.Int("status", e.Code),
		slog.String("error", e.Err.Error()),
	}
	if e.Code >= http.StatusInternalServerError {
		c.LogError("request failed", attrs...)
		return
	}
	c.LogWarn("request rejected", attrs...)
}

func wantsJSON(r *http.Request) bool {
	return strings.HasSuffix(r.URL.Path, ".png") ||
		strings.Contains(r.Header.Get("Accept"), "application/json")
}
