package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// maxImportSize bounds uploaded workbooks.
const maxImportSize = 10 << 20

func CleanupHandler(c *gin.Context, svc PatrolService) {
	res, err := svc.Cleanup(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

// ImportHandler accepts a multipart "file" field holding an xlsx workbook.
func ImportHandler(c *gin.Context, svc PatrolService) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file: " + err.Error()})
		return
	}
	if header.Size > maxImportSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "workbook too large"})
		return
	}

	f, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()

	parsed, saved, err := svc.Import(c.Request.Context(), f)
	if err != nil {
		status := http.StatusInternalServerError
		if saved == 0 && len(parsed.Records) == 0 {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error(), "imported": saved})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"imported": saved,
		"rejected": parsed.Errors,
	})
}
