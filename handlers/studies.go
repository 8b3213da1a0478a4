package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/medifed/portal/internal/studies"
	"github.com/medifed/portal/pkg/logger"
	"github.com/medifed/portal/pkg/metrics"
	"github.com/medifed/portal/pkg/middleware"
)

// DeleteStudyRequest names the stored file to remove.
type DeleteStudyRequest struct {
	Filename string `json:"filename" binding:"required"`
}

// StudiesHandler serves the medical-study file endpoints.
type StudiesHandler struct {
	svc *studies.Service
}

func NewStudiesHandler(svc *studies.Service) *StudiesHandler {
	return &StudiesHandler{svc: svc}
}

// Register wires the three file APIs. The /estudios page itself is a
// portal page and stays reachable even when object storage is down.
func (h *StudiesHandler) Register(r *gin.Engine, apiGuard gin.HandlerFunc) {
	r.POST("/upload_file", apiGuard, h.Upload)
	r.GET("/listar-archivos", apiGuard, h.List)
	r.POST("/eliminar-archivo", apiGuard, h.Delete)
}

// Upload stores the multipart "file" part under the caller's namespace.
func (h *StudiesHandler) Upload(c *gin.Context) {
	ident, _ := middleware.IdentityFrom(c)

	fh, err := c.FormFile("file")
	if err != nil {
		metrics.StudyUploads.WithLabelValues("rejected").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "mensaje": "No se adjuntó ningún archivo"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		logger.Errorf("upload study: open multipart part: %v", err)
		metrics.StudyUploads.WithLabelValues("failure").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "mensaje": "No se pudo subir el archivo"})
		return
	}
	defer f.Close()

	stored, err := h.svc.Upload(c.Request.Context(), ident.UserID, fh.Filename, f, fh.Size, fh.Header.Get("Content-Type"))
	if err != nil {
		switch err {
		case studies.ErrInvalidExtension:
			metrics.StudyUploads.WithLabelValues("rejected").Inc()
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "mensaje": "Tipo de archivo no permitido"})
		case studies.ErrNoFile:
			metrics.StudyUploads.WithLabelValues("rejected").Inc()
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "mensaje": "No se adjuntó ningún archivo"})
		default:
			logger.Errorf("upload study for %s: %v", ident.UserID, err)
			metrics.StudyUploads.WithLabelValues("failure").Inc()
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "mensaje": "No se pudo subir el archivo"})
		}
		return
	}
	metrics.StudyUploads.WithLabelValues("success").Inc()
	c.JSON(http.StatusOK, gin.H{"success": true, "mensaje": "Archivo subido correctamente", "nombre": stored})
}

// List returns the caller's stored studies with fresh download links.
func (h *StudiesHandler) List(c *gin.Context) {
	ident, _ := middleware.IdentityFrom(c)

	files, err := h.svc.List(c.Request.Context(), ident.UserID)
	if err != nil {
		logger.Errorf("list studies for %s: %v", ident.UserID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudieron listar los archivos"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"archivos": files, "total": len(files)})
}

// Delete removes one of the caller's studies by display name.
func (h *StudiesHandler) Delete(c *gin.Context) {
	ident, _ := middleware.IdentityFrom(c)

	var req DeleteStudyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "mensaje": "filename requerido"})
		return
	}
	if err := h.svc.Delete(c.Request.Context(), ident.UserID, req.Filename); err != nil {
		if err == studies.ErrNoFile {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "mensaje": "filename requerido"})
			return
		}
		logger.Errorf("delete study %q for %s: %v", req.Filename, ident.UserID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "mensaje": "No se pudo eliminar el archivo"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "mensaje": "Archivo eliminado correctamente"})
}
