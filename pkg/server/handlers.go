package server

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/entrhq/pagekit/pkg/captcha"
	"github.com/entrhq/pagekit/pkg/logs"
	"github.com/entrhq/pagekit/pkg/pagination"
	"github.com/entrhq/pagekit/pkg/strength"
	"github.com/entrhq/pagekit/pkg/theme"
	"github.com/entrhq/pagekit/pkg/toast"
	"github.com/gin-gonic/gin"
)

const logsPath = "/admin/logs"

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) checkPasswordStrength(c *gin.Context) {
	var req strength.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	c.JSON(http.StatusOK, s.strength.Estimate(req.Password, req.UserInputs))
}

func (s *Server) verifyCaptcha(c *gin.Context) {
	token := c.PostForm(captcha.ResponseField)
	if err := s.verifier.Verify(c.Request.Context(), token, c.ClientIP()); err != nil {
		status := http.StatusBadGateway
		msg := captcha.MsgFailed
		if errors.Is(err, captcha.ErrMissingToken) {
			status, msg = http.StatusBadRequest, captcha.MsgRequired
		} else if errors.Is(err, captcha.ErrRejected) {
			status = http.StatusForbidden
		}
		s.log.Warnf("captcha verification failed: %v", err)
		c.JSON(status, gin.H{"success": false, "error": msg})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) listLogs(c *gin.Context) {
	typ, err := logs.ParseType(c.Query("type"))
	if err != nil {
		s.addFlash(c, toast.Error, "Invalid log type.")
		c.Redirect(http.StatusFound, logsPath)
		return
	}

	page := queryInt(c, "page", 1)
	perPage := queryInt(c, "per_page", s.logs.Options().DefaultPerPage)

	result, err := s.logs.Page(c.Request.Context(), typ, page, perPage)
	if err != nil {
		_ = c.Error(err)
		s.renderError(c, http.StatusInternalServerError, "Unable to load logs")
		return
	}

	extra := map[string]string{"type": string(typ)}
	top, err := s.pager.Render(result.Pagination, logsPath, extra, pagination.PositionTop)
	if err != nil {
		_ = c.Error(err)
		s.renderError(c, http.StatusInternalServerError, "Unable to render pagination")
		return
	}
	bottom, err := s.pager.Render(result.Pagination, logsPath, extra, pagination.PositionBottom)
	if err != nil {
		_ = c.Error(err)
		s.renderError(c, http.StatusInternalServerError, "Unable to render pagination")
		return
	}

	now := time.Now()
	rows := make([][]string, 0, len(result.Entries))
	for _, e := range result.Entries {
		rows = append(rows, e.Row(now))
	}

	c.HTML(http.StatusOK, "logs", logsView{
		pageView: s.pageView(c, typ.Title()),
		Type:     typ,
		Types:    logs.Types,
		Columns:  logs.Columns(typ),
		Rows:     rows,
		Top:      top,
		Bottom:   bottom,
	})
}

func (s *Server) exportLogs(c *gin.Context) {
	typ, err := logs.ParseType(c.Query("type"))
	if err != nil {
		s.addFlash(c, toast.Error, "Invalid log type.")
		c.Redirect(http.StatusFound, logsPath)
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename="+logs.ExportFilename(typ))
	c.Status(http.StatusOK)
	if err := s.logs.Export(c.Request.Context(), typ, c.Writer); err != nil {
		_ = c.Error(err)
	}
}

func (s *Server) setTheme(c *gin.Context) {
	back := safeRedirect(c.Request.Referer())

	pref, err := theme.ParsePreference(c.PostForm("theme"))
	if err != nil {
		s.addFlash(c, toast.Error, "Unknown theme.")
		c.Redirect(http.StatusSeeOther, back)
		return
	}
	http.SetCookie(c.Writer, theme.Cookie(pref))
	c.Redirect(http.StatusSeeOther, back)
}

func (s *Server) pageView(c *gin.Context, title string) pageView {
	pref, effective := theme.FromRequest(c.Request)
	flashes, err := s.flash.Pop(c.Writer, c.Request)
	if err != nil {
		s.log.Warnf("failed to read flashes: %v", err)
	}
	return pageView{
		Title:       title,
		Theme:       effective,
		Preference:  pref,
		Preferences: theme.Order,
		Flashes:     flashes,
	}
}

func (s *Server) renderError(c *gin.Context, status int, message string) {
	v := s.pageView(c, http.StatusText(status))
	v.Message = message
	c.HTML(status, "error", v)
}

func (s *Server) addFlash(c *gin.Context, category toast.Category, text string) {
	if err := s.flash.Add(c.Writer, c.Request, category, text); err != nil {
		s.log.Warnf("failed to store flash: %v", err)
	}
}

func queryInt(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return def
	}
	return v
}

// safeRedirect keeps redirects on this site: only the path and query of a
// referer are used.
func safeRedirect(ref string) string {
	u, err := url.Parse(ref)
	if err != nil || u.Path == "" || u.Path[0] != '/' {
		return "/"
	}
	// Browsers read "//host" and "/\host" as another site.
	if len(u.Path) > 1 && (u.Path[1] == '/' || u.Path[1] == '\\') {
		return "/"
	}
	if u.RawQuery != "" {
		return u.Path + "?" + u.RawQuery
	}
	return u.Path
}
