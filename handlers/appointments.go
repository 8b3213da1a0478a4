package handlers

import (
	"html"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/medifed/portal/internal/appointments"
	"github.com/medifed/portal/internal/models"
	"github.com/medifed/portal/pkg/logger"
	"github.com/medifed/portal/pkg/middleware"
)

// AppointmentHandler serves the turno pages and the doctor API.
type AppointmentHandler struct {
	svc *appointments.Service
}

func NewAppointmentHandler(svc *appointments.Service) *AppointmentHandler {
	return &AppointmentHandler{svc: svc}
}

// Register wires the patient-facing pages behind the page guard and the
// state-changing endpoints behind the JSON guard.
func (h *AppointmentHandler) Register(r *gin.Engine, pageGuard, apiGuard gin.HandlerFunc) {
	r.GET("/reservar-turno", pageGuard, h.ReserveForm)
	r.POST("/reservar-turno", pageGuard, h.Reserve)
	r.GET("/panel_medico", pageGuard, middleware.RequireRole(models.RoleDoctor), h.DoctorPanel)
	r.POST("/confirmar_turno/:id", apiGuard, middleware.RequireRoleJSON(models.RoleDoctor), h.Confirm)
	r.POST("/cancelar_turno/:id", apiGuard, h.Cancel)
}

func (h *AppointmentHandler) ReserveForm(c *gin.Context) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, reserveFormHTML)
}

// Reserve creates a pending turno from the submitted form and sends the
// patient back to the portal.
func (h *AppointmentHandler) Reserve(c *gin.Context) {
	ident, _ := middleware.IdentityFrom(c)

	_, err := h.svc.Reserve(c.Request.Context(), ident.UserID,
		c.PostForm("fecha"), c.PostForm("hora"), c.PostForm("especialidad"), c.PostForm("motivo"))
	if err != nil {
		if err == appointments.ErrValidation {
			c.Header("Content-Type", "text/html; charset=utf-8")
			c.String(http.StatusBadRequest, "Completá todos los campos del turno.")
			return
		}
		logger.Errorf("reserve turno: %v", err)
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusInternalServerError, "No se pudo reservar el turno. Intentá de nuevo.")
		return
	}
	c.Redirect(http.StatusFound, "/portal")
}

// DoctorPanel renders every pending turno with its patient so the
// doctor can confirm them.
func (h *AppointmentHandler) DoctorPanel(c *gin.Context) {
	entries, err := h.svc.ListPendingAll(c.Request.Context())
	if err != nil {
		logger.Errorf("panel medico: %v", err)
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusInternalServerError, "No se pudieron cargar los turnos pendientes.")
		return
	}

	var b strings.Builder
	b.WriteString(`<!doctype html><html><head><meta charset="utf-8"><title>Panel médico</title></head><body>`)
	b.WriteString("<h2>Turnos pendientes</h2>")
	if len(entries) == 0 {
		b.WriteString("<p>No hay turnos pendientes.</p>")
	} else {
		b.WriteString("<ul>")
		for _, e := range entries {
			b.WriteString("<li>")
			b.WriteString(html.EscapeString(e.Username))
			b.WriteString(" — ")
			b.WriteString(html.EscapeString(e.Specialty))
			b.WriteString(" — ")
			b.WriteString(html.EscapeString(e.Date))
			b.WriteString(" ")
			b.WriteString(html.EscapeString(e.Time))
			b.WriteString(` <form method="post" action="/confirmar_turno/`)
			b.WriteString(html.EscapeString(e.ID))
			b.WriteString(`"><button type="submit">Confirmar</button></form></li>`)
		}
		b.WriteString("</ul>")
	}
	b.WriteString("</body></html>")

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, b.String())
}

// Confirm moves a pending turno to Confirmed. Confirming an already
// confirmed turno succeeds without changing anything.
func (h *AppointmentHandler) Confirm(c *gin.Context) {
	ident, _ := middleware.IdentityFrom(c)

	appt, err := h.svc.Confirm(c.Request.Context(), c.Param("id"), ident.Role)
	if err != nil {
		switch err {
		case appointments.ErrNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "turno no encontrado"})
		case appointments.ErrForbidden:
			c.JSON(http.StatusForbidden, gin.H{"error": "acción no permitida"})
		default:
			logger.Errorf("confirm turno %s: %v", c.Param("id"), err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "no se pudo confirmar el turno"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "estado": appt.Status})
}

// Cancel deletes a turno owned by the caller.
func (h *AppointmentHandler) Cancel(c *gin.Context) {
	ident, _ := middleware.IdentityFrom(c)

	if err := h.svc.Cancel(c.Request.Context(), c.Param("id"), ident.UserID); err != nil {
		switch err {
		case appointments.ErrNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "turno no encontrado"})
		case appointments.ErrForbidden:
			c.JSON(http.StatusForbidden, gin.H{"error": "acción no permitida"})
		default:
			logger.Errorf("cancel turno %s: %v", c.Param("id"), err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "no se pudo cancelar el turno"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

const reserveFormHTML = `<!doctype html>
<html><head><meta charset="utf-8"><title>Reservar turno</title></head>
<body><h2>Reservar turno</h2>
<form method="post" action="/reservar-turno">
  <input type="date" name="fecha" required>
  <input type="time" name="hora" required>
  <input type="text" name="especialidad" placeholder="Especialidad" required>
  <input type="text" name="motivo" placeholder="Motivo de la consulta" required>
  <button type="submit">Reservar</button>
</form>
</body></html>`
