package server

import (
	"errors"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-session/session/v3"

	"github.com/reputrace/social-link/dto"
	"github.com/reputrace/social-link/platforms"
)

// Platform ID validation regex (lowercase alphanumeric, 1-32 chars)
var platformIDRegex = regexp.MustCompile(`^[a-z0-9]{1,32}$`)

// requestUserID resolves the acting user: the dashboard session first, then
// the X-User-ID header for service-to-service callers.
func requestUserID(c *gin.Context) string {
	if sess, err := session.Start(c.Request.Context(), c.Writer, c.Request); err == nil {
		if v, ok := sess.Get("user_id"); ok {
			if userID, ok := v.(string); ok && userID != "" {
				return userID
			}
		}
	}
	return strings.TrimSpace(c.GetHeader("X-User-ID"))
}

func requireUserID(c *gin.Context) (string, bool) {
	userID := requestUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":             "unauthorized",
			"error_description": "no authenticated user",
		})
		return "", false
	}
	return userID, true
}

func normalizePlatformID(c *gin.Context) (string, bool) {
	platformID := strings.ToLower(strings.TrimSpace(c.Param("platform")))
	if !platformIDRegex.MatchString(platformID) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "invalid_request",
			"error_description": "invalid platform identifier",
		})
		return "", false
	}
	return platformID, true
}

// HandleListPlatformsGin lists the supported platforms with the caller's
// connection status and each platform's count capabilities.
// Route: GET /api/social/platforms
func (s *Server) HandleListPlatformsGin(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	connected := make(map[string]bool)
	for _, account := range s.Links.ListAccounts(c.Request.Context(), userID) {
		connected[account.Platform] = account.Connected
	}

	resp := make([]dto.PlatformResponse, 0)
	for _, id := range s.Registry.IDs() {
		pc, err := s.Registry.Get(id)
		if err != nil {
			continue
		}
		resp = append(resp, dto.PlatformResponse{
			ID:             pc.ID,
			DisplayName:    pc.DisplayName,
			Connected:      connected[pc.ID],
			SupportsCounts: pc.SupportsCounts,
			IssuesRefresh:  pc.IssuesRefresh,
		})
	}
	c.JSON(http.StatusOK, gin.H{"platforms": resp})
}

// HandleConnectGin returns the provider consent URL for a platform.
// Route: GET /api/social/connect/:platform
func (s *Server) HandleConnectGin(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	platformID, ok := normalizePlatformID(c)
	if !ok {
		return
	}

	authURL, err := s.Builder.BuildAuthorizeURL(platformID, userID)
	if err != nil {
		var unsupported *platforms.UnsupportedPlatformError
		if errors.As(err, &unsupported) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":             "unsupported_platform",
				"error_description": err.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":             "server_error",
			"error_description": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": authURL})
}

// HandleCallbackGin completes the link flow after the provider redirect.
// The browser lands here, so outcomes are redirects back to the dashboard
// rather than JSON bodies.
// Route: GET /api/auth/callback/:platform
func (s *Server) HandleCallbackGin(c *gin.Context) {
	platformID, ok := normalizePlatformID(c)
	if !ok {
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	code := c.Query("code")
	state := c.Query("state")
	if code == "" || state == "" {
		s.redirectWithError(c, platformID, "missing code or state")
		return
	}
	if providerErr := c.Query("error"); providerErr != "" {
		s.redirectWithError(c, platformID, providerErr)
		return
	}

	result := s.Links.LinkAccount(c.Request.Context(), userID, platformID, code, state)
	if !result.Success {
		s.redirectWithError(c, platformID, result.Message)
		return
	}

	c.Redirect(http.StatusFound, s.Config.BaseURL+"/dashboard/accounts?connected="+url.QueryEscape(platformID))
}

func (s *Server) redirectWithError(c *gin.Context, platformID, message string) {
	q := url.Values{}
	q.Set("platform", platformID)
	q.Set("error", message)
	c.Redirect(http.StatusFound, s.Config.BaseURL+"/dashboard/accounts/connect?"+q.Encode())
}

// HandleListAccountsGin returns the caller's linked accounts. Token fields
// never appear in this read model, and a store failure degrades to an empty
// list so the dashboard still renders.
// Route: GET /api/social/accounts
func (s *Server) HandleListAccountsGin(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	accounts := s.Links.ListAccounts(c.Request.Context(), userID)
	c.JSON(http.StatusOK, gin.H{"accounts": dto.FromLinkedAccounts(accounts)})
}

// HandleDisconnectGin soft-disconnects a linked account. Idempotent.
// Route: DELETE /api/social/accounts/:platform
func (s *Server) HandleDisconnectGin(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	platformID, ok := normalizePlatformID(c)
	if !ok {
		return
	}

	result := s.Links.DisconnectAccount(c.Request.Context(), userID, platformID)
	if !result.Success {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":             "server_error",
			"error_description": result.Message,
		})
		return
	}
	c.JSON(http.StatusOK, result)
}

// HandleRefreshGin triggers a token refresh for a linked account. A false
// result is an expected state (no refresh token, or the provider declined),
// not an error.
// Route: POST /api/social/accounts/:platform/refresh
func (s *Server) HandleRefreshGin(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	platformID, ok := normalizePlatformID(c)
	if !ok {
		return
	}

	refreshed := s.Links.RefreshTokens(c.Request.Context(), userID, platformID)
	c.JSON(http.StatusOK, gin.H{"refreshed": refreshed})
}
