package handler

import (
	"mime"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	appErrors "github.com/atelier-nord/intake-api/pkg/errors"
	"github.com/atelier-nord/intake-api/pkg/response"
	"github.com/atelier-nord/intake-api/pkg/storage"
)

// FileHandler serves locally stored objects through signed download
// tokens. It is only registered when the local storage driver is active;
// GCS objects are served by the bucket directly.
type FileHandler struct {
	store  *storage.LocalStore
	signer *storage.SignedURLSigner
}

// NewFileHandler builds a new handler.
func NewFileHandler(store *storage.LocalStore, signer *storage.SignedURLSigner) *FileHandler {
	return &FileHandler{store: store, signer: signer}
}

// Download godoc
// @Summary Download a stored object via a signed token
// @Tags Files
// @Param token query string true "Signed download token"
// @Success 200 {file} binary
// @Router /files/download [get]
func (h *FileHandler) Download(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "download token required"))
		return
	}
	key, _, err := h.signer.Parse(token, false)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, "INVALID_TOKEN", http.StatusForbidden, "invalid or expired download token"))
		return
	}
	file, err := h.store.Open(key)
	if err != nil {
		response.Error(c, appErrors.New("OBJECT_NOT_FOUND", http.StatusNotFound, "object not found"))
		return
	}
	defer file.Close()

	contentType := mime.TypeByExtension(filepath.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Disposition", "attachment; filename=\""+filepath.Base(key)+"\"")
	c.Header("Content-Type", contentType)
	c.File(file.Name())
}
