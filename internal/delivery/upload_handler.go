package delivery

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"storefront/internal/delivery/response"
	"storefront/internal/domain"
	"storefront/internal/logger"
)

// multipart framing allowance on top of the file size limit
const uploadOverhead = 1 << 20

type UploadHandler struct {
	dir      string
	maxBytes int64
	log      *logrus.Entry
}

func NewUploadHandler(dir string, maxBytes int64, log *logrus.Logger) *UploadHandler {
	return &UploadHandler{dir: dir, maxBytes: maxBytes, log: logger.Named(log, "routes.uploads")}
}

func (h *UploadHandler) RegisterRoutes(uploads gin.IRouter) {
	uploads.POST("", h.Upload)
}

// Upload trusts the sniffed content type, never the one the client declared.
func (h *UploadHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+uploadOverhead)

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			handleError(c, h.log, domain.FileTooLarge(h.maxBytes), "Upload failed")
			return
		}
		h.log.Warnf("Upload rejected: %v", err)
		handleError(c, h.log, domain.NewFieldValidation("file", "A file is required (max "+domain.FormatBytes(h.maxBytes)+")"), "Upload failed")
		return
	}

	file, err := header.Open()
	if err != nil {
		handleError(c, h.log, err, "Upload failed")
		return
	}
	mtype, err := mimetype.DetectReader(file)
	file.Close()
	if err != nil {
		handleError(c, h.log, err, "Upload failed")
		return
	}

	upload := domain.FileUpload{
		Filename:    header.Filename,
		ContentType: mtype.String(),
		SizeBytes:   header.Size,
	}
	if err := upload.Validate(h.maxBytes); err != nil {
		handleError(c, h.log, err, "Upload failed")
		return
	}

	id := uuid.NewString()
	if err := os.MkdirAll(h.dir, 0o750); err != nil {
		handleError(c, h.log, fmt.Errorf("create upload dir: %w", err), "Upload failed")
		return
	}
	dst := filepath.Join(h.dir, id+mtype.Extension())
	if err := c.SaveUploadedFile(header, dst); err != nil {
		handleError(c, h.log, fmt.Errorf("save upload: %w", err), "Upload failed")
		return
	}

	h.log.Infof("Stored upload %s (%s, %d bytes)", id, upload.ContentType, upload.SizeBytes)
	response.SuccessResponse(c, http.StatusCreated, "File uploaded successfully", domain.UploadResponse{
		ID:          id,
		Filename:    upload.Filename,
		ContentType: upload.ContentType,
		SizeBytes:   upload.SizeBytes,
	})
}
