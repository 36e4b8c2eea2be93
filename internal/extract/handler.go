package extract

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"agents-backend/internal/shared/server/respond"
	"agents-backend/internal/shared/telemetry"
	"agents-backend/internal/shared/util"
)

const maxUploadBytes = 5 << 20

// Handler accepts contract documents and returns the scanned skeleton
// ready to submit to the contracts agent.
type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

// RegisterRoutes attaches extraction routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/contracts/extract", h.extract)
}

func (h *Handler) extract(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "multipart field 'file' is required", nil)
		return
	}
	if fileHeader.Size > maxUploadBytes {
		respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", "file exceeds the 5MB upload limit", nil)
		return
	}

	fileName, err := util.SanitizeFileName(fileHeader.Filename)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "invalid file name", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "could not read uploaded file", nil)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "could not read uploaded file", nil)
		return
	}

	text, err := Text(c.Request.Context(), data, fileHeader.Header.Get("Content-Type"), fileName)
	if err != nil {
		telemetry.Error("contract.extract_failed", map[string]any{
			"fileName": fileName,
			"error":    err.Error(),
		})
		respond.Error(c, http.StatusUnprocessableEntity, "extraction_failed", "could not extract text from document", map[string]any{
			"reason": err.Error(),
		})
		return
	}

	contract := Scan(text)
	respond.JSON(c, http.StatusOK, gin.H{
		"contract":   contract,
		"input":      contract.Input(),
		"textLength": len(text),
	})
}
