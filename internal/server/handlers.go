// file: internal/server/handlers.go
// version: 1.0.0
// guid: 5d6e7f8a-9b0c-1d2e-3f4a-5b6c7d8e9fa0

package server

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rero/thumbnails/internal/resolver"
)

// thumbnailURLResponse is the JSON body of a successful URL resolution.
type thumbnailURLResponse struct {
	URL      string `json:"url"`
	ISBN     string `json:"isbn"`
	Provider string `json:"provider"`
	Cached   bool   `json:"cached"`
}

// errorResponse is the JSON body of every error outcome.
type errorResponse struct {
	Error string `json:"error"`
	ISBN  string `json:"isbn,omitempty"`
}

// handleThumbnailURL resolves an ISBN to a thumbnail URL.
// GET /api/thumbnails-url/:isbn?cached=false
func (s *Server) handleThumbnailURL(c *gin.Context) {
	identifier := c.Param("isbn")
	useCache := c.Query("cached") != "false"

	result, err := s.resolver.Resolve(c.Request.Context(), identifier, useCache)
	if err != nil {
		var nf *resolver.NotFoundError
		switch {
		case errors.Is(err, resolver.ErrInvalidIdentifier):
			c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid ISBN", ISBN: identifier})
		case errors.As(err, &nf):
			c.JSON(http.StatusNotFound, errorResponse{Error: "no thumbnail found", ISBN: nf.ISBN})
		default:
			c.JSON(http.StatusInternalServerError, errorResponse{Error: "resolution failed"})
		}
		return
	}

	if s.maxAge > 0 {
		c.Header("Cache-Control", fmt.Sprintf("public, max-age=%d", int(s.maxAge.Seconds())))
	}
	c.JSON(http.StatusOK, thumbnailURLResponse{
		URL:      result.URL,
		ISBN:     identifier,
		Provider: result.Provider,
		Cached:   result.FromCache,
	})
}

// handleThumbnailFile streams a locally stored thumbnail.
// GET /api/thumbnails/:isbn
func (s *Server) handleThumbnailFile(c *gin.Context) {
	isbn := c.Param("isbn")

	path := ""
	if s.files != nil {
		path = s.files.ThumbnailPath(isbn)
	}
	if path == "" {
		c.JSON(http.StatusNotFound, errorResponse{Error: "no local thumbnail", ISBN: isbn})
		return
	}

	f, err := os.Open(path)
	if err != nil {
		c.JSON(http.StatusNotFound, errorResponse{Error: "no local thumbnail", ISBN: isbn})
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "cannot stat thumbnail"})
		return
	}

	c.Header("ETag", fileETag(path, info))
	if s.maxAge > 0 {
		c.Header("Cache-Control", fmt.Sprintf("public, max-age=%d", int(s.maxAge.Seconds())))
	}

	// ServeContent handles If-None-Match and If-Modified-Since, answering
	// 304 without re-reading the file.
	http.ServeContent(c.Writer, c.Request, info.Name(), info.ModTime(), f)
}

// fileETag derives a strong validator from the file identity: path, size
// and modification time. Any rewrite of the file changes the tag.
func fileETag(path string, info os.FileInfo) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%d|%d", path, info.Size(), info.ModTime().UnixNano())))
	return fmt.Sprintf(`"%x"`, sum[:16])
}

// healthCheck reports liveness.
// GET /healthz
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
