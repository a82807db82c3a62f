package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"studydeck/internal/app"
	"studydeck/internal/ingestion"
	"studydeck/internal/transport/http/middleware"
	"studydeck/internal/transport/http/response"
)

const defaultMaxUploadBytes = 20 << 20

type Ingester interface {
	Ingest(ctx context.Context, sessionID *uint, files []ingestion.File) (iter.Seq[ingestion.Event], error)
}

type IngestHandler struct {
	svc            Ingester
	maxUploadBytes int64
}

func NewIngestHandler(svc Ingester, maxUploadBytes int64) *IngestHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	return &IngestHandler{svc: svc, maxUploadBytes: maxUploadBytes}
}

// Upload handles POST /upload?session_id=. Files come in the multipart
// field "files"; progress is streamed back as server-sent events, one JSON
// event per data line.
func (h *IngestHandler) Upload(c *gin.Context) {
	sessionID, ok := optionalUint(c, "session_id")
	if !ok {
		badRequest(c, "invalid session_id")
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	files, err := readUploads(c)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Fail(c, http.StatusRequestEntityTooLarge, response.CodeTooLarge, string(app.CategoryClient),
				fmt.Sprintf("upload exceeds %d bytes", h.maxUploadBytes))
			return
		}
		badRequest(c, err.Error())
		return
	}

	events, err := h.svc.Ingest(c.Request.Context(), sessionID, files)
	if err != nil {
		writeError(c, err)
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "stream not supported")
		return
	}
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	log := middleware.Logger(c)
	for ev := range events {
		payload, err := json.Marshal(ev)
		if err != nil {
			log.Error("encode progress event failed", "error", err)
			return
		}
		if _, err := fmt.Fprintf(c.Writer, "data: %s\n\n", payload); err != nil {
			log.Warn("client went away during upload", "error", err)
			return
		}
		flusher.Flush()
	}
}

// readUploads loads every part of the "files" field into memory. A request
// that is not multipart counts as having no files.
func readUploads(c *gin.Context) ([]ingestion.File, error) {
	form, err := c.MultipartForm()
	if err != nil {
		if errors.Is(err, http.ErrNotMultipart) || errors.Is(err, http.ErrMissingBoundary) {
			return nil, nil
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, err
		}
		return nil, fmt.Errorf("invalid multipart form: %w", err)
	}

	headers := form.File["files"]
	files := make([]ingestion.File, 0, len(headers))
	for _, fh := range headers {
		data, err := readPart(fh)
		if err != nil {
			return nil, err
		}
		files = append(files, ingestion.File{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	return files, nil
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload %s failed: %w", fh.Filename, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read upload %s failed: %w", fh.Filename, err)
	}
	return data, nil
}
