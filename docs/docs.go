// Package docs registers the Swagger document served under /v1/swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {"get": {"tags": ["system"], "summary": "Health check", "responses": {"200": {"description": "OK"}}}},
        "/catalog/skills": {"get": {"security": [{"BearerAuth": []}], "tags": ["catalog"], "summary": "List skills", "responses": {"200": {"description": "OK"}}}},
        "/catalog/job-role-levels": {"get": {"security": [{"BearerAuth": []}], "tags": ["catalog"], "summary": "List job role levels", "responses": {"200": {"description": "OK"}}}},
        "/catalog/certificate-types": {"get": {"security": [{"BearerAuth": []}], "tags": ["catalog"], "summary": "List certificate types", "responses": {"200": {"description": "OK"}}}},
        "/talents/{talentId}/cvs": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["cvs"], "summary": "List a talent's CVs", "parameters": [{"type": "integer", "name": "talentId", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["cvs"], "summary": "Create a CV version", "parameters": [{"type": "integer", "name": "talentId", "in": "path", "required": true}], "responses": {"201": {"description": "Created"}, "409": {"description": "Version collision"}}}
        },
        "/talents/{talentId}/cvs/next-version": {"get": {"security": [{"BearerAuth": []}], "tags": ["cvs"], "summary": "Suggest the next version", "parameters": [{"type": "integer", "name": "talentId", "in": "path", "required": true}, {"type": "integer", "name": "jobRoleLevelId", "in": "query", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/talents/{talentId}/cvs/version-check": {"get": {"security": [{"BearerAuth": []}], "tags": ["cvs"], "summary": "Check whether a version is taken", "parameters": [{"type": "integer", "name": "talentId", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/cvs/sweep": {"post": {"security": [{"BearerAuth": []}], "tags": ["cvs"], "summary": "Repair active CV flags", "responses": {"200": {"description": "OK"}}}},
        "/cvs/{id}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["cvs"], "summary": "Get a CV", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}},
            "patch": {"security": [{"BearerAuth": []}], "tags": ["cvs"], "summary": "Update a CV summary", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["cvs"], "summary": "Delete a CV", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/cvs/{id}/activate": {"post": {"security": [{"BearerAuth": []}], "tags": ["cvs"], "summary": "Activate a CV", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/cvs/{id}/deactivate": {"post": {"security": [{"BearerAuth": []}], "tags": ["cvs"], "summary": "Deactivate a CV", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/talents/{talentId}/cv-comparisons": {"post": {"security": [{"BearerAuth": []}], "tags": ["comparisons"], "summary": "Compare an extraction with the profile", "parameters": [{"type": "integer", "name": "talentId", "in": "path", "required": true}, {"type": "string", "name": "format", "in": "query"}], "responses": {"200": {"description": "OK"}}}},
        "/talents/{talentId}/cv-updates": {"post": {"security": [{"BearerAuth": []}], "tags": ["comparisons"], "summary": "Apply reviewer decisions", "parameters": [{"type": "integer", "name": "talentId", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/talents/{talentId}/cv-workflows": {"post": {"security": [{"BearerAuth": []}], "tags": ["cv-workflows"], "summary": "Start a CV workflow", "parameters": [{"type": "integer", "name": "talentId", "in": "path", "required": true}, {"type": "file", "name": "file", "in": "formData", "required": true}], "responses": {"201": {"description": "Created"}}}},
        "/cv-workflows/{id}": {"get": {"security": [{"BearerAuth": []}], "tags": ["cv-workflows"], "summary": "Get a CV workflow", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/cv-workflows/{id}/analyze": {"post": {"security": [{"BearerAuth": []}], "tags": ["cv-workflows"], "summary": "Analyze the selected CV", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "429": {"description": "Too many analyses"}}}},
        "/cv-workflows/{id}/confirm": {"post": {"security": [{"BearerAuth": []}], "tags": ["cv-workflows"], "summary": "Apply the reviewer's decisions", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/cv-workflows/{id}/submit": {"post": {"security": [{"BearerAuth": []}], "tags": ["cv-workflows"], "summary": "Create the CV from the analyzed file", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/cv-workflows/{id}/cancel": {"post": {"security": [{"BearerAuth": []}], "tags": ["cv-workflows"], "summary": "Cancel the workflow", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}}
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/v1",
	Schemes:          []string{},
	Title:            "Talent Hub CV API",
	Description:      "CV versioning and CV-to-profile reconciliation for talent records.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
