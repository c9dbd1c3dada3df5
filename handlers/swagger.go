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
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>jobportal-api — Swagger</title>
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

// Minimal OpenAPI document describing the main endpoints.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "jobportal-api", "version": "v0.1.0" },
  "paths": {
    "/api/auth/register": {
      "post": { "summary": "Create an account", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"name":{"type":"string"},"email":{"type":"string"},"password":{"type":"string"},"role":{"type":"string"}}}}}}, "responses": { "201": { "description": "token and user returned" }, "400": { "description": "invalid input or duplicate email" } } }
    },
    "/api/auth/login": {
      "post": { "summary": "Sign in with email and password", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"email":{"type":"string"},"password":{"type":"string"}}}}}}, "responses": { "200": { "description": "token and user returned" }, "401": { "description": "invalid credentials" } } }
    },
    "/api/auth/logout": {
      "get": { "summary": "Sign out and clear the session cookie", "responses": { "200": { "description": "logged out" } } }
    },
    "/api/auth/me": {
      "get": { "summary": "Get the authenticated user", "responses": { "200": { "description": "user" }, "401": { "description": "not authorized" } } }
    },
    "/api/jobs": {
      "get": { "summary": "List active postings", "parameters": [ { "name": "search", "in": "query", "schema": {"type":"string"} }, { "name": "location", "in": "query", "schema": {"type":"string"} } ], "responses": { "200": { "description": "postings with creator joined" } } },
      "post": { "summary": "Create a posting (admin)", "responses": { "201": { "description": "posting created, broadcast queued" }, "403": { "description": "not an admin" } } }
    },
    "/api/jobs/{id}": {
      "get": { "summary": "Get one posting", "responses": { "200": { "description": "posting" }, "404": { "description": "job not found" } } },
      "put": { "summary": "Update a posting (admin)", "responses": { "200": { "description": "updated posting" } } },
      "delete": { "summary": "Delete a posting (admin)", "responses": { "200": { "description": "removed" } } }
    },
    "/api/applications/{jobId}": {
      "post": { "summary": "Apply to a posting", "responses": { "201": { "description": "application created" }, "400": { "description": "deadline passed or already applied" }, "404": { "description": "job not found" } } }
    },
    "/api/applications/my": {
      "get": { "summary": "List own applications", "responses": { "200": { "description": "applications with jobs joined" } } }
    },
    "/api/applications/{id}/status": {
      "put": { "summary": "Update review status (admin)", "responses": { "200": { "description": "updated application, notification queued" }, "404": { "description": "application not found" } } }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } }
  }
}`
