package handlers

import (
	"html"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/medifed/portal/internal/appointments"
	"github.com/medifed/portal/pkg/logger"
	"github.com/medifed/portal/pkg/middleware"
)

// upcoming turnos shown on the portal home
const portalTurnoLimit = 10

// PortalHandler serves the public landing page and the patient pages.
type PortalHandler struct {
	appts *appointments.Service
}

func NewPortalHandler(appts *appointments.Service) *PortalHandler {
	return &PortalHandler{appts: appts}
}

func (h *PortalHandler) Register(r *gin.Engine, pageGuard gin.HandlerFunc) {
	r.GET("/", h.Index)
	r.GET("/portal", pageGuard, h.Portal)
	r.GET("/medicos", pageGuard, staticPage("Nuestros médicos", "Cartilla de médicos de Medifed."))
	r.GET("/miplan", pageGuard, staticPage("Mi plan", "Detalle de tu plan de cobertura."))
	r.GET("/turnos", pageGuard, staticPage("Turnos", `Gestioná tus turnos desde <a href="/reservar-turno">Reservar turno</a>.`))
	r.GET("/estudios", pageGuard, h.Studies)
	r.GET("/contacto_portal", pageGuard, staticPage("Contacto", "Escribinos a contacto@medifed.com."))
}

func (h *PortalHandler) Index(c *gin.Context) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, indexHTML)
}

// Portal renders the patient home with their upcoming turnos.
func (h *PortalHandler) Portal(c *gin.Context) {
	ident, _ := middleware.IdentityFrom(c)

	list, err := h.appts.ListUpcoming(c.Request.Context(), ident.UserID, portalTurnoLimit)
	if err != nil {
		logger.Errorf("portal: list turnos for %s: %v", ident.UserID, err)
		list = nil
	}

	var b strings.Builder
	b.WriteString(`<!doctype html><html><head><meta charset="utf-8"><title>Portal Medifed</title></head><body>`)
	b.WriteString("<h2>Hola, ")
	b.WriteString(html.EscapeString(ident.Username))
	b.WriteString("</h2>")
	b.WriteString(`<nav><a href="/reservar-turno">Reservar turno</a> | <a href="/estudios">Mis estudios</a> | <a href="/chat">Asistente</a> | <a href="/logout">Salir</a></nav>`)
	b.WriteString("<h3>Próximos turnos</h3>")
	if len(list) == 0 {
		b.WriteString("<p>No tenés turnos próximos.</p>")
	} else {
		b.WriteString("<ul>")
		for _, a := range list {
			b.WriteString("<li>")
			b.WriteString(html.EscapeString(a.Date))
			b.WriteString(" ")
			b.WriteString(html.EscapeString(a.Time))
			b.WriteString(" — ")
			b.WriteString(html.EscapeString(a.Specialty))
			b.WriteString(" (")
			b.WriteString(html.EscapeString(a.Status))
			b.WriteString(")</li>")
		}
		b.WriteString("</ul>")
	}
	b.WriteString("</body></html>")

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, b.String())
}

func (h *PortalHandler) Studies(c *gin.Context) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, studiesHTML)
}

func staticPage(title, body string) gin.HandlerFunc {
	page := `<!doctype html><html><head><meta charset="utf-8"><title>` +
		html.EscapeString(title) + `</title></head><body><h2>` +
		html.EscapeString(title) + `</h2><p>` + body + `</p></body></html>`
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, page)
	}
}

const studiesHTML = `<!doctype html>
<html><head><meta charset="utf-8"><title>Mis estudios</title></head>
<body><h2>Mis estudios</h2>
<form id="upload" enctype="multipart/form-data">
  <input type="file" name="file" accept=".pdf,.jpg,.jpeg,.png">
  <button type="submit">Subir</button>
</form>
<div id="archivos"></div>
</body></html>`

const indexHTML = `<!doctype html>
<html><head><meta charset="utf-8"><title>Medifed</title></head>
<body><h1>Medifed</h1>
<p>Portal de pacientes de Medifed.</p>
<p><a href="/login">Iniciar sesión</a> · <a href="/register">Crear cuenta</a></p>
</body></html>`
