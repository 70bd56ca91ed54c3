package handler

import (
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/silicus-edu/ta-backend/service"
	"github.com/silicus-edu/ta-backend/types"
)

// maxUploadSize caps a single uploaded PDF.
const maxUploadSize = 50 << 20

// CourseHandler exposes the instructor course-management routes.
type CourseHandler struct {
	courseService *service.CourseService
}

func NewCourseHandler(courseService *service.CourseService) *CourseHandler {
	return &CourseHandler{
		courseService: courseService,
	}
}

// HandleListCourses returns the course summary cards.
func (h *CourseHandler) HandleListCourses(c *gin.Context) {
	infos, err := h.courseService.List()
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, infos)
}

// HandleCreateCourse creates a course from a multipart form: "slug" and
// "title" fields plus one or more "files" parts.
func (h *CourseHandler) HandleCreateCourse(c *gin.Context) {
	slug := strings.TrimSpace(c.PostForm("slug"))
	if slug == "" {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "slug field is required",
		})
		return
	}
	files, ok := h.readUploads(c)
	if !ok {
		return
	}

	if err := h.courseService.Create(c.Request.Context(), slug, c.PostForm("title"), files); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"slug": slug})
}

// HandleAddFiles stores new PDFs in an existing course. Duplicates by content
// hash are skipped and reported, not errored.
func (h *CourseHandler) HandleAddFiles(c *gin.Context) {
	slug := c.Query("course")
	if slug == "" {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "course parameter is required",
		})
		return
	}
	files, ok := h.readUploads(c)
	if !ok {
		return
	}

	saved, skipped, err := h.courseService.AddFiles(c.Request.Context(), slug, files)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, types.UploadResponse{Saved: saved, Skipped: skipped})
}

// readUploads collects the "files" parts of the multipart form. All parts
// must be PDFs within the size cap.
func (h *CourseHandler) readUploads(c *gin.Context) ([]types.UploadFile, bool) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "Invalid multipart form",
		})
		return nil, false
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "At least one PDF is required",
		})
		return nil, false
	}

	files := make([]types.UploadFile, 0, len(headers))
	for _, header := range headers {
		if filepath.Ext(header.Filename) != ".pdf" {
			c.JSON(http.StatusBadRequest, types.DataResponse{
				Status:  "error",
				Message: "Only PDF files are allowed",
			})
			return nil, false
		}
		if header.Size > maxUploadSize {
			c.JSON(http.StatusBadRequest, types.DataResponse{
				Status:  "error",
				Message: "File too large",
			})
			return nil, false
		}
		data, err := readUpload(header)
		if err != nil {
			c.JSON(http.StatusBadRequest, types.DataResponse{
				Status:  "error",
				Message: "Failed to read uploaded file",
			})
			return nil, false
		}
		files = append(files, types.UploadFile{Name: header.Filename, Data: data})
	}
	return files, true
}

func readUpload(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// HandleListFiles returns the source PDF filenames of a course.
func (h *CourseHandler) HandleListFiles(c *gin.Context) {
	slug := c.Query("course")
	if slug == "" {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "course parameter is required",
		})
		return
	}
	names, err := h.courseService.ListFiles(slug)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, names)
}

// HandleDeleteFile removes one PDF from a course. The index is stale until
// the next rebuild.
func (h *CourseHandler) HandleDeleteFile(c *gin.Context) {
	slug := c.Query("course")
	filename := c.Query("file")
	if slug == "" || filename == "" {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "course and file parameters are required",
		})
		return
	}
	if err := h.courseService.DeleteFile(c.Request.Context(), slug, filename); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, nil)
}

// HandleDeleteCourse removes the course locally and best-effort remotely.
func (h *CourseHandler) HandleDeleteCourse(c *gin.Context) {
	slug := c.Query("course")
	if slug == "" {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "course parameter is required",
		})
		return
	}
	if err := h.courseService.DeleteCourse(c.Request.Context(), slug); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, nil)
}

// HandleRebuild re-ingests the course after a source change.
func (h *CourseHandler) HandleRebuild(c *gin.Context) {
	slug := c.Query("course")
	if slug == "" {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "course parameter is required",
		})
		return
	}
	pages, err := h.courseService.Rebuild(c.Request.Context(), slug)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, types.RebuildResponse{Pages: pages})
}

// HandleRename updates the display title only; the slug is immutable.
func (h *CourseHandler) HandleRename(c *gin.Context) {
	var req types.RenameCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Course == "" {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "Invalid request body",
		})
		return
	}
	if err := h.courseService.Rename(c.Request.Context(), req.Course, req.Title); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, nil)
}
