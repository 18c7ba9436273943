package server

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/poiesic/docvault/search"
)

// uploadFile accepts a single-shot multipart upload under the "file"
// form field.
func (s *Server) uploadFile(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file field"})
		return
	}

	f, err := header.Open()
	if err != nil {
		s.fail(c, err)
		return
	}
	defer f.Close()

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	record, err := s.files.Save(c.Request.Context(), userID(c), header.Filename, mimeType, f)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":     record.ID,
		"name":   record.Name,
		"size":   record.Size,
		"status": record.Status,
	})
}

func (s *Server) listFiles(c *gin.Context) {
	list, err := s.files.List(c.Request.Context(), userID(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"files": list})
}

func (s *Server) fileStatus(c *gin.Context) {
	view, err := s.files.Status(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// getFile streams back the original uploaded bytes.
func (s *Server) getFile(c *gin.Context) {
	record, err := s.files.Get(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Header("Content-Type", record.MimeType)
	c.FileAttachment(record.Path, record.Name)
}

func (s *Server) deleteFile(c *gin.Context) {
	result, err := s.files.Delete(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}

	resp := gin.H{"deleted": !result.Failed()}
	if result.Disk != nil {
		resp["disk_error"] = result.Disk.Error()
	}
	if result.Index != nil {
		resp["index_error"] = result.Index.Error()
	}
	if result.Metadata != nil {
		resp["metadata_error"] = result.Metadata.Error()
	}
	c.JSON(http.StatusOK, resp)
}

type startUploadRequest struct {
	Filename  string `json:"filename" binding:"required"`
	TotalSize int64  `json:"total_size"`
	MimeType  string `json:"mime_type"`
}

func (s *Server) startUpload(c *gin.Context) {
	var req startUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.MimeType == "" {
		req.MimeType = "application/octet-stream"
	}

	sessionID, err := s.uploads.Start(c.Request.Context(), userID(c), req.Filename, req.TotalSize, req.MimeType)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"upload_id": sessionID})
}

// appendUpload takes the next slice of raw bytes from the request body.
func (s *Server) appendUpload(c *gin.Context) {
	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable request body"})
		return
	}

	if err := s.uploads.Append(c.Request.Context(), userID(c), c.Param("id"), data); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"appended": len(data)})
}

func (s *Server) completeUpload(c *gin.Context) {
	record, err := s.uploads.Complete(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":     record.ID,
		"name":   record.Name,
		"size":   record.Size,
		"status": record.Status,
	})
}

type queryRequest struct {
	Query string `json:"query" binding:"required"`
	TopK  int    `json:"top_k"`
}

func (s *Server) queryFile(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	results, err := s.searcher.Search(c.Request.Context(), userID(c), c.Param("id"), req.Query, req.TopK)
	if err != nil {
		s.fail(c, err)
		return
	}
	if results == nil {
		results = []search.Result{}
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}
