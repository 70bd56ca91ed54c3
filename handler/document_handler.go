package handler

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/silicus-edu/ta-backend/database"
	"github.com/silicus-edu/ta-backend/utils"
)

// DocumentHandler streams source PDFs so citation links can open the cited
// page in the browser's viewer.
type DocumentHandler struct {
	store *database.CourseStore
}

func NewDocumentHandler(store *database.CourseStore) *DocumentHandler {
	return &DocumentHandler{
		store: store,
	}
}

func (h *DocumentHandler) ServeDocument(c *gin.Context) {
	course := c.Query("course")
	requestedName := c.Query("file")
	if course == "" || requestedName == "" {
		c.String(http.StatusBadRequest, "course and file parameters are required")
		return
	}
	if filepath.Ext(requestedName) != ".pdf" {
		c.String(http.StatusBadRequest, "Only PDF files are allowed")
		return
	}

	// Sanitization keeps the resolved path inside the course's pdfs dir.
	name := utils.SanitizeFilename(requestedName)
	filePath := filepath.Join(h.store.PDFDir(utils.SanitizeFilename(course)), name)
	if _, err := os.Stat(filePath); err != nil {
		c.String(http.StatusNotFound, "File not found")
		return
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%s", name))
	c.File(filePath)
}
