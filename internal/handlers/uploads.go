package handlers

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"groovetree/backend/internal/config"
	"groovetree/backend/internal/middleware"
)

const (
	MaxAvatarSize = 5 << 20  // 5MB
	MaxPhotoSize  = 10 << 20 // 10MB
)

// allowed image types, validated by sniffing the file head server-side
var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

type UploadsHandler struct {
	cfg *config.Config
}

func NewUploadsHandler(cfg *config.Config) *UploadsHandler {
	os.MkdirAll(cfg.UploadDir, 0755)
	return &UploadsHandler{cfg: cfg}
}

func (h *UploadsHandler) Avatar(w http.ResponseWriter, r *http.Request) {
	h.upload(w, r, MaxAvatarSize)
}

func (h *UploadsHandler) Photo(w http.ResponseWriter, r *http.Request) {
	h.upload(w, r, MaxPhotoSize)
}

// upload stores a multipart image under a path keyed by user id and
// timestamp and returns its public URL. Binary storage stays on local
// disk, served by the router's file server.
func (h *UploadsHandler) upload(w http.ResponseWriter, r *http.Request, maxSize int64) {
	claims := middleware.ClaimsFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxSize)
	if err := r.ParseMultipartForm(maxSize); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("File too large (max %dMB)", maxSize>>20))
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "File is required")
		return
	}
	defer file.Close()

	// Sniff the real content type from the first bytes; the client-supplied
	// filename and header are not trusted.
	head := make([]byte, 512)
	n, err := file.Read(head)
	if err != nil && err != io.EOF {
		writeError(w, http.StatusBadRequest, "Could not read file")
		return
	}
	contentType := http.DetectContentType(head[:n])
	ext, ok := imageExtensions[contentType]
	if !ok {
		writeError(w, http.StatusBadRequest, "Only JPEG, PNG, WebP and GIF images are allowed")
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save file")
		return
	}

	userDir := filepath.Join(h.cfg.UploadDir, claims.UserID)
	if err := os.MkdirAll(userDir, 0755); err != nil {
		log.Error().Err(err).Msg("failed to create upload directory")
		writeError(w, http.StatusInternalServerError, "Failed to save file")
		return
	}

	name := fmt.Sprintf("%d_%s%s", time.Now().UnixMilli(), uuid.NewString()[:8], ext)
	dstPath := filepath.Join(userDir, name)

	dst, err := os.Create(dstPath)
	if err != nil {
		log.Error().Err(err).Msg("failed to create upload file")
		writeError(w, http.StatusInternalServerError, "Failed to save file")
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		os.Remove(dstPath)
		log.Error().Err(err).Msg("failed to write upload file")
		writeError(w, http.StatusInternalServerError, "Failed to save file")
		return
	}

	url := h.cfg.BaseURL + "/uploads/" + claims.UserID + "/" + name
	writeJSON(w, http.StatusCreated, map[string]string{"url": url})
}
