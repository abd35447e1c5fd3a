package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/imyashkale/shutdownmanager/internal/logger"
	"github.com/imyashkale/shutdownmanager/internal/models"
	"github.com/imyashkale/shutdownmanager/internal/services"
	"github.com/imyashkale/shutdownmanager/internal/store"
)

// readUpload decodes the multipart "file" field into records
func readUpload(c *gin.Context, maxBytes int64) ([]models.Record, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, err
		}
		return nil, &store.ValidationError{Field: "file", Message: "no file part in request"}
	}
	defer file.Close()

	if header.Filename == "" {
		return nil, &store.ValidationError{Field: "file", Message: "no selected file"}
	}

	logger.WithFields(map[string]interface{}{
		"filename": header.Filename,
		"size":     header.Size,
	}).Debug("Import file received")

	return services.DecodeRows(header.Filename, file)
}

// serveTemplate sends an empty import file with the entity's header row
func serveTemplate(c *gin.Context, entity models.EntityType) {
	var buf bytes.Buffer
	if err := services.WriteTemplate(&buf, entity); err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%ss_template.csv", entity))
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}
