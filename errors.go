package main

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// statusError is a domain error carrying the HTTP status the centralized
// renderer should respond with.
type statusError struct {
	code    int
	message string
}

func (e *statusError) Error() string {
	return e.message
}

func errValidation(format string, args ...any) error {
	return &statusError{code: http.StatusBadRequest, message: fmt.Sprintf(format, args...)}
}

func errUnauthorized(message string) error {
	return &statusError{code: http.StatusUnauthorized, message: message}
}

func errNotFound(format string, args ...any) error {
	return &statusError{code: http.StatusNotFound, message: fmt.Sprintf(format, args...)}
}

func errConflict(format string, args ...any) error {
	return &statusError{code: http.StatusConflict, message: fmt.Sprintf(format, args...)}
}

func errPayloadTooLarge(message string) error {
	return &statusError{code: http.StatusRequestEntityTooLarge, message: message}
}

func errUnsupportedMedia(format string, args ...any) error {
	return &statusError{code: http.StatusUnsupportedMediaType, message: fmt.Sprintf(format, args...)}
}

func httpStatus(err error) int {
	var se *statusError
	if errors.As(err, &se) {
		return se.code
	}
	return http.StatusInternalServerError
}

func acceptsHTML(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "text/html")
}

// errorRenderer is the single place errors become responses. Handlers
// attach domain errors with c.Error and abort; the shape of the response
// (HTML page, JSON, plain text) follows what the client accepts. Only
// 5xx failures are logged.
func (a *App) errorRenderer() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		status := httpStatus(err)
		if status >= http.StatusInternalServerError {
			log.Printf("[rawdog-blog] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		}

		message := err.Error()
		if acceptsHTML(c) {
			template := "error.html"
			title := "Error"
			switch {
			case status >= http.StatusInternalServerError:
				template, title = "500.html", "Server error"
			case status == http.StatusNotFound:
				template, title = "404.html", "Not found"
			}
			c.HTML(status, template, gin.H{
				"Title":     title,
				"BlogTitle": a.cfg.BlogTitle,
				"Message":   message,
				"Status":    status,
			})
			return
		}

		accept := c.GetHeader("Accept")
		if accept == "" || strings.Contains(accept, "json") || strings.Contains(accept, "*/*") {
			c.JSON(status, gin.H{"error": message})
			return
		}
		c.String(status, message)
	}
}
