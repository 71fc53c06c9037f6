package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "LMS Schedule API",
        "description": "Assessment windows, schedule conflicts, term weeks and progress archives",
        "version": "0.1.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Login and token lifecycle"},
        {"name": "Assessments", "description": "Assessment window checks"},
        {"name": "Schedules", "description": "Schedule entries and conflict detection"},
        {"name": "Terms", "description": "Terms and derived week spans"},
        {"name": "Progress", "description": "Student progress summaries and exports"},
        {"name": "Maintenance", "description": "Archive sweep and archived entries"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "Degraded"}
                }
            }
        },
        "/api/v1/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "Token pair issued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/api/v1/auth/refresh": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Refresh access token",
                "responses": {
                    "200": {"description": "New token pair", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Token expired or revoked"}
                }
            }
        },
        "/api/v1/auth/logout": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Revoke refresh token",
                "responses": {
                    "204": {"description": "Revoked"}
                }
            }
        },
        "/api/v1/assessments": {
            "get": {
                "tags": ["Assessments"],
                "summary": "List assessments",
                "parameters": [
                    {"name": "termId", "in": "query", "type": "string"},
                    {"name": "subjectId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Assessments", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Assessments"],
                "summary": "Create assessment",
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Invalid window configuration"}
                }
            }
        },
        "/api/v1/assessments/{id}/submissions": {
            "post": {
                "tags": ["Assessments"],
                "summary": "Submit assessment attempt",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "201": {"description": "Submission recorded"},
                    "403": {"description": "Window not open or already closed"},
                    "409": {"description": "Already submitted"}
                }
            }
        },
        "/api/v1/assessments/{id}/access": {
            "get": {
                "tags": ["Assessments"],
                "summary": "Check assessment access",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "studentId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Access decision", "schema": {"$ref": "#/definitions/AccessDecision"}},
                    "404": {"description": "Assessment not found"}
                }
            }
        },
        "/api/v1/windows/validate": {
            "post": {
                "tags": ["Assessments"],
                "summary": "Validate window configuration",
                "responses": {
                    "200": {"description": "Validation report with every violation"}
                }
            }
        },
        "/api/v1/schedules": {
            "get": {
                "tags": ["Schedules"],
                "summary": "List schedule entries",
                "parameters": [
                    {"name": "studentId", "in": "query", "type": "string"},
                    {"name": "termId", "in": "query", "type": "string"},
                    {"name": "day", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "Entries", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Schedules"],
                "summary": "Create schedule entry",
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Conflicts with existing entry"}
                }
            }
        },
        "/api/v1/schedules/{id}": {
            "put": {
                "tags": ["Schedules"],
                "summary": "Update schedule entry",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Updated"},
                    "409": {"description": "Conflicts with existing entry"}
                }
            },
            "delete": {
                "tags": ["Schedules"],
                "summary": "Delete schedule entry",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Deleted"},
                    "409": {"description": "Entry is completed or has a score"}
                }
            }
        },
        "/api/v1/schedules/conflicts": {
            "get": {
                "tags": ["Schedules"],
                "summary": "Detect schedule conflicts",
                "parameters": [
                    {"name": "studentId", "in": "query", "required": true, "type": "string"},
                    {"name": "termId", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Conflict report"}
                }
            }
        },
        "/api/v1/students/{id}/schedules": {
            "get": {
                "tags": ["Schedules"],
                "summary": "List a student's schedule",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "termId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Weekly schedule ordered by day and period"}
                }
            }
        },
        "/api/v1/students/{id}/schedule-gaps": {
            "get": {
                "tags": ["Schedules"],
                "summary": "Find schedule gaps",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "termId", "in": "query", "required": true, "type": "string"},
                    {"name": "periods", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Missing periods per day"}
                }
            }
        },
        "/api/v1/terms": {
            "get": {
                "tags": ["Terms"],
                "summary": "List terms",
                "responses": {
                    "200": {"description": "Terms", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Terms"],
                "summary": "Create term",
                "responses": {
                    "201": {"description": "Created"}
                }
            }
        },
        "/api/v1/terms/active": {
            "get": {
                "tags": ["Terms"],
                "summary": "Get active term",
                "responses": {
                    "200": {"description": "Active term"},
                    "404": {"description": "No active term"}
                }
            }
        },
        "/api/v1/terms/{id}": {
            "get": {
                "tags": ["Terms"],
                "summary": "Get term",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Term"},
                    "404": {"description": "Not found"}
                }
            },
            "put": {
                "tags": ["Terms"],
                "summary": "Update term",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Updated term"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/api/v1/progress": {
            "post": {
                "tags": ["Progress"],
                "summary": "Record lesson progress",
                "responses": {
                    "201": {"description": "Recorded"},
                    "400": {"description": "Invalid payload"}
                }
            }
        },
        "/api/v1/progress/{id}/complete": {
            "patch": {
                "tags": ["Progress"],
                "summary": "Complete lesson progress",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Completed record"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/api/v1/terms/{id}/weeks": {
            "get": {
                "tags": ["Terms"],
                "summary": "List term weeks",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Monday-to-Sunday week spans"}
                }
            }
        },
        "/api/v1/terms/{id}/weeks/current": {
            "get": {
                "tags": ["Terms"],
                "summary": "Get current term week",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "date", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Week containing the date"},
                    "422": {"description": "Date outside term"}
                }
            }
        },
        "/api/v1/students/{id}/progress": {
            "get": {
                "tags": ["Progress"],
                "summary": "Get student progress summary",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "termId", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Per-subject completion, grade band and streak"}
                }
            }
        },
        "/api/v1/students/{id}/progress/export": {
            "get": {
                "tags": ["Progress"],
                "summary": "Export student progress report",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "termId", "in": "query", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "CSV or PDF download"}
                }
            }
        },
        "/api/v1/maintenance/archive-run": {
            "post": {
                "tags": ["Maintenance"],
                "summary": "Run archive sweep",
                "parameters": [
                    {"name": "async", "in": "query", "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "Sweep result"},
                    "202": {"description": "Sweep enqueued"}
                }
            }
        },
        "/api/v1/archives/schedules": {
            "get": {
                "tags": ["Maintenance"],
                "summary": "List archived schedule entries",
                "responses": {
                    "200": {"description": "Archived entries", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "AccessDecision": {
            "type": "object",
            "properties": {
                "can_access": {"type": "boolean"},
                "status": {"type": "string"},
                "reason": {"type": "string"},
                "window_start": {"type": "string"},
                "window_end": {"type": "string"},
                "checked_at": {"type": "string"},
                "minutes_until_open": {"type": "integer"},
                "minutes_remaining": {"type": "integer"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
