package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Header("Content-Type", "application/json; charset=utf-8")
		c.String(http.StatusOK, swaggerJSON)
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>medifed-portal — Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

// Minimal OpenAPI document describing the JSON endpoints of the portal.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "medifed-portal", "version": "v0.1.0" },
  "paths": {
    "/login": {
      "post": {
        "summary": "Password login (form)",
        "requestBody": { "content": { "application/x-www-form-urlencoded": { "schema": {"type":"object","properties":{"email":{"type":"string"},"password":{"type":"string"}}}}}},
        "responses": { "302": { "description": "redirect to role landing or /error" } }
      }
    },
    "/login_google": {
      "post": { "summary": "Federated login with a Google ID token", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"token":{"type":"string"}}}}}}, "responses": { "200": { "description": "session established" }, "401": { "description": "invalid token" } } }
    },
    "/register": {
      "post": { "summary": "Create a patient account (form)", "responses": { "302": { "description": "redirect to /login or /error" } } }
    },
    "/confirmar_turno/{id}": {
      "post": { "summary": "Confirm a pending turno (doctor only)", "responses": { "200": { "description": "confirmed" }, "403": { "description": "not a doctor" }, "404": { "description": "unknown turno" } } }
    },
    "/cancelar_turno/{id}": {
      "post": { "summary": "Cancel an owned turno", "responses": { "200": { "description": "cancelled" }, "404": { "description": "unknown turno" } } }
    },
    "/upload_file": {
      "post": { "summary": "Upload a medical study (multipart, field \"file\")", "responses": { "200": { "description": "stored" }, "400": { "description": "missing file or disallowed type" } } }
    },
    "/listar-archivos": {
      "get": { "summary": "List the caller's studies with presigned links", "responses": { "200": { "description": "archivos + total" } } }
    },
    "/eliminar-archivo": {
      "post": { "summary": "Delete one of the caller's studies", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"filename":{"type":"string"}}}}}}, "responses": { "200": { "description": "deleted" } } }
    },
    "/chat": {
      "post": { "summary": "Ask the help assistant", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"prompt":{"type":"string"}}}}}}, "responses": { "200": { "description": "assistant reply" } } }
    },
    "/faqs": { "get": { "summary": "Suggested assistant questions", "responses": { "200": { "description": "fixed list" } } } },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } }
  }
}`
