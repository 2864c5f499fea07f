package main

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

const sessionCookieName = "rawdog_session"

func mustHashPassword(password string) string {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		panic(err)
	}
	return string(hash)
}

func checkPassword(hash, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

func readSessionToken(c *gin.Context) string {
	token, err := c.Cookie(sessionCookieName)
	if err != nil {
		return ""
	}
	return token
}

func (a *App) setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookieName, token, int(a.cfg.SessionTTL.Seconds()), "/", "", a.cfg.SecureCookies, true)
}

func (a *App) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookieName, "", -1, "/", "", a.cfg.SecureCookies, true)
}

func (a *App) isAuthenticated(c *gin.Context) bool {
	return a.sessions.Validate(readSessionToken(c))
}

// requireAuth protects admin view routes; unauthenticated visitors go
// back to the login page.
func (a *App) requireAuth(c *gin.Context) {
	if !a.isAuthenticated(c) {
		c.Redirect(http.StatusSeeOther, "/admin")
		c.Abort()
		return
	}
	c.Next()
}

// requireAuthJSON protects API-style routes; unauthenticated callers get
// a 401 body instead of a redirect.
func (a *App) requireAuthJSON(c *gin.Context) {
	if !a.isAuthenticated(c) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	c.Next()
}

func wantsJSON(c *gin.Context) bool {
	if strings.Contains(c.ContentType(), "json") {
		return true
	}
	accept := c.GetHeader("Accept")
	return strings.Contains(accept, "json") && !strings.Contains(accept, "text/html")
}

type loginRequest struct {
	Password string `json:"password"`
}

// Login accepts the admin password as a form field or a JSON body. Form
// logins render/redirect; JSON logins answer with the session expiry.
func (a *App) Login(c *gin.Context) {
	password := c.PostForm("password")
	isJSON := false
	if password == "" && strings.Contains(c.ContentType(), "json") {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "password required"})
			return
		}
		password = req.Password
		isJSON = true
	}

	if password == "" {
		if isJSON || wantsJSON(c) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "password required"})
			return
		}
		c.HTML(http.StatusBadRequest, "admin_login.html", gin.H{
			"Title":     "Login · " + a.cfg.BlogTitle,
			"BlogTitle": a.cfg.BlogTitle,
			"Error":     "Password required",
		})
		return
	}

	if !checkPassword(a.cfg.AdminPasswordHash, password) {
		if isJSON || wantsJSON(c) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		c.HTML(http.StatusUnauthorized, "admin_login.html", gin.H{
			"Title":     "Login · " + a.cfg.BlogTitle,
			"BlogTitle": a.cfg.BlogTitle,
			"Error":     "Invalid password",
		})
		return
	}

	session, err := a.sessions.Create()
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}
	a.setSessionCookie(c, session.Token)

	if isJSON || wantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "expiresAt": session.ExpiresAt})
		return
	}
	c.Redirect(http.StatusFound, "/admin/posts")
}

func (a *App) Logout(c *gin.Context) {
	if token := readSessionToken(c); token != "" {
		a.sessions.Revoke(token)
		a.clearSessionCookie(c)
	}
	if wantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}
	c.Redirect(http.StatusFound, "/admin")
}

// SessionStatus reports whether the caller holds a live session, and
// clears a stale cookie as a side effect.
func (a *App) SessionStatus(c *gin.Context) {
	valid := a.isAuthenticated(c)
	if !valid && readSessionToken(c) != "" {
		a.clearSessionCookie(c)
	}
	c.JSON(http.StatusOK, gin.H{"authenticated": valid})
}
