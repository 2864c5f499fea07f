package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestCheckPassword(t *testing.T) {
	hash := testHash()

	if !checkPassword(hash, testAdminPassword) {
		t.Error("expected correct password to verify")
	}
	if checkPassword(hash, "wrong") {
		t.Error("expected wrong password to fail")
	}
	if checkPassword("", testAdminPassword) {
		t.Error("expected empty hash to fail")
	}
	if checkPassword("not-a-bcrypt-hash", testAdminPassword) {
		t.Error("expected malformed hash to fail")
	}
}

func testContext(req *http.Request) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = req
	return c
}

func TestReadSessionToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := readSessionToken(testContext(req)); got != "" {
		t.Errorf("expected empty token without cookie, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "abc123"})
	if got := readSessionToken(testContext(req)); got != "abc123" {
		t.Errorf("expected abc123, got %q", got)
	}
}

func TestWantsJSON(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		accept      string
		want        bool
	}{
		{"json content type", "application/json", "", true},
		{"json accept", "", "application/json", true},
		{"html accept", "", "text/html", false},
		{"browser accept with html", "", "text/html,application/json", false},
		{"form post", "application/x-www-form-urlencoded", "", false},
		{"nothing", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			if tt.accept != "" {
				req.Header.Set("Accept", tt.accept)
			}
			if got := wantsJSON(testContext(req)); got != tt.want {
				t.Errorf("wantsJSON = %v, want %v", got, tt.want)
			}
		})
	}
}
