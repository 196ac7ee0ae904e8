package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Bimbel Admin API",
        "description": "Lesson scheduling and lifecycle backend for the tutoring admin console",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Lessons", "description": "Lesson lifecycle and listing"},
        {"name": "Schedule Slots", "description": "Weekly recurring schedule templates"},
        {"name": "Conflicts", "description": "Interactive schedule conflict checks"},
        {"name": "Calendar", "description": "Semesters and holidays"}
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "security": [
        {"BearerAuth": []}
    ],
    "paths": {
        "/lessons": {
            "get": {
                "tags": ["Lessons"],
                "summary": "List lessons",
                "parameters": [
                    {"name": "classId", "in": "query", "type": "string"},
                    {"name": "teacherId", "in": "query", "type": "string"},
                    {"name": "semesterId", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "dateFrom", "in": "query", "type": "string"},
                    {"name": "dateTo", "in": "query", "type": "string"},
                    {"name": "sortBy", "in": "query", "type": "string"},
                    {"name": "sortOrder", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "pageSize", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Lessons"],
                "summary": "Create a single lesson",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateLessonRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Schedule conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/lessons/export": {
            "get": {
                "tags": ["Lessons"],
                "summary": "Export the lesson schedule",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]},
                    {"name": "classId", "in": "query", "type": "string"},
                    {"name": "semesterId", "in": "query", "type": "string"},
                    {"name": "dateFrom", "in": "query", "type": "string"},
                    {"name": "dateTo", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Export payload"},
                    "403": {"description": "Exports disabled", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/lessons/{id}": {
            "get": {
                "tags": ["Lessons"],
                "summary": "Get a lesson",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "patch": {
                "tags": ["Lessons"],
                "summary": "Edit a lesson's time or notes",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EditLessonRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "423": {"description": "Lesson locked", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Lessons"],
                "summary": "Delete a scheduled lesson that never happened",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Deleted"},
                    "412": {"description": "Lesson has history", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/lessons/{id}/conduct": {
            "post": {
                "tags": ["Lessons"],
                "summary": "Mark a lesson conducted",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "schema": {"$ref": "#/definitions/ConductLessonRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "Too early or invalid transition", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/lessons/{id}/cancel": {
            "post": {
                "tags": ["Lessons"],
                "summary": "Cancel a lesson, optionally creating a makeup",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CancelLessonRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "Invalid transition", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/lessons/{id}/no-show": {
            "post": {
                "tags": ["Lessons"],
                "summary": "Mark a lesson as a no-show",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "schema": {"$ref": "#/definitions/NoShowLessonRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/lessons/{id}/reschedule": {
            "post": {
                "tags": ["Lessons"],
                "summary": "Move a lesson to a new date or time",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RescheduleLessonRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Schedule conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/lessons/{id}/makeup": {
            "post": {
                "tags": ["Lessons"],
                "summary": "Create a makeup lesson for a cancelled one",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/MakeupData"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already linked", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/lessons/{id}/quick-action": {
            "post": {
                "tags": ["Lessons"],
                "summary": "Run a one-click lifecycle action",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/QuickActionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule-slots": {
            "get": {
                "tags": ["Schedule Slots"],
                "summary": "List schedule slots for a class",
                "parameters": [
                    {"name": "classId", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Schedule Slots"],
                "summary": "Create a schedule slot",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateScheduleSlotRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Slot overlap", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule-slots/suggestions": {
            "post": {
                "tags": ["Schedule Slots"],
                "summary": "Suggest alternative slots near a requested window",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SlotSuggestionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule-slots/{id}": {
            "put": {
                "tags": ["Schedule Slots"],
                "summary": "Update a schedule slot",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateScheduleSlotRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Schedule Slots"],
                "summary": "Archive a schedule slot",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Archived"}
                }
            }
        },
        "/schedule-slots/{id}/generate": {
            "post": {
                "tags": ["Schedule Slots"],
                "summary": "Generate lessons from a slot",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GenerationOptions"}}
                ],
                "responses": {
                    "200": {"description": "Generation summary", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "No resolvable range", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/conflicts/check": {
            "post": {
                "tags": ["Conflicts"],
                "summary": "Check a proposed lesson window for conflicts",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ConflictCheckRequest"}}
                ],
                "responses": {
                    "200": {"description": "Conflict report", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "Backend unavailable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/conflicts/watch": {
            "post": {
                "tags": ["Conflicts"],
                "summary": "Queue a debounced conflict check",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ConflictCheckRequest"}}
                ],
                "responses": {
                    "202": {"description": "Check queued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/conflicts/latest": {
            "get": {
                "tags": ["Conflicts"],
                "summary": "Latest debounced conflict report",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/calendar/semester": {
            "get": {
                "tags": ["Calendar"],
                "summary": "Active semester",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No active semester", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/calendar/holidays": {
            "get": {
                "tags": ["Calendar"],
                "summary": "List holidays in a date range",
                "parameters": [
                    {"name": "from", "in": "query", "type": "string"},
                    {"name": "until", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Calendar"],
                "summary": "Create a holiday",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateHolidayRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "CreateLessonRequest": {
            "type": "object",
            "required": ["classId", "scheduledDate", "startTime", "endTime"],
            "properties": {
                "classId": {"type": "string"},
                "scheduledDate": {"type": "string", "example": "2026-09-07"},
                "startTime": {"type": "string", "example": "10:00"},
                "endTime": {"type": "string", "example": "11:30"},
                "notes": {"type": "string"},
                "force": {"type": "boolean"}
            }
        },
        "EditLessonRequest": {
            "type": "object",
            "properties": {
                "startTime": {"type": "string"},
                "endTime": {"type": "string"},
                "notes": {"type": "string"}
            }
        },
        "ConductLessonRequest": {
            "type": "object",
            "properties": {
                "notes": {"type": "string"}
            }
        },
        "CancelLessonRequest": {
            "type": "object",
            "required": ["reason"],
            "properties": {
                "reason": {"type": "string"},
                "makeup": {"$ref": "#/definitions/MakeupData"}
            }
        },
        "NoShowLessonRequest": {
            "type": "object",
            "properties": {
                "notes": {"type": "string"}
            }
        },
        "RescheduleLessonRequest": {
            "type": "object",
            "required": ["scheduledDate", "startTime", "endTime"],
            "properties": {
                "scheduledDate": {"type": "string"},
                "startTime": {"type": "string"},
                "endTime": {"type": "string"},
                "force": {"type": "boolean"}
            }
        },
        "MakeupData": {
            "type": "object",
            "required": ["scheduledDate", "startTime", "endTime"],
            "properties": {
                "scheduledDate": {"type": "string"},
                "startTime": {"type": "string"},
                "endTime": {"type": "string"},
                "notes": {"type": "string"}
            }
        },
        "QuickActionRequest": {
            "type": "object",
            "required": ["action"],
            "properties": {
                "action": {"type": "string", "enum": ["CONDUCT", "CANCEL", "NO_SHOW", "RESCHEDULE"]},
                "notes": {"type": "string"},
                "reason": {"type": "string"},
                "makeup": {"$ref": "#/definitions/MakeupData"},
                "scheduledDate": {"type": "string"},
                "startTime": {"type": "string"},
                "endTime": {"type": "string"},
                "force": {"type": "boolean"}
            }
        },
        "CreateScheduleSlotRequest": {
            "type": "object",
            "required": ["classId", "dayOfWeek", "startTime", "endTime"],
            "properties": {
                "classId": {"type": "string"},
                "dayOfWeek": {"type": "string", "example": "MONDAY"},
                "startTime": {"type": "string"},
                "endTime": {"type": "string"},
                "effectiveFrom": {"type": "string"},
                "semesterId": {"type": "string"},
                "force": {"type": "boolean"},
                "generateLessons": {"type": "boolean"},
                "generation": {"$ref": "#/definitions/GenerationOptions"}
            }
        },
        "UpdateScheduleSlotRequest": {
            "type": "object",
            "required": ["dayOfWeek", "startTime", "endTime"],
            "properties": {
                "dayOfWeek": {"type": "string"},
                "startTime": {"type": "string"},
                "endTime": {"type": "string"},
                "effectiveFrom": {"type": "string"},
                "force": {"type": "boolean"}
            }
        },
        "GenerationOptions": {
            "type": "object",
            "required": ["rangeType"],
            "properties": {
                "rangeType": {"type": "string", "enum": ["SEMESTER_END", "ACADEMIC_YEAR_END", "CUSTOM"]},
                "customStart": {"type": "string"},
                "customEnd": {"type": "string"},
                "skipHolidays": {"type": "boolean"},
                "skipConflicts": {"type": "boolean"}
            }
        },
        "SlotSuggestionRequest": {
            "type": "object",
            "required": ["classId", "dayOfWeek", "startTime", "endTime"],
            "properties": {
                "classId": {"type": "string"},
                "dayOfWeek": {"type": "string"},
                "startTime": {"type": "string"},
                "endTime": {"type": "string"},
                "limit": {"type": "integer"}
            }
        },
        "ConflictCheckRequest": {
            "type": "object",
            "required": ["classId", "scheduledDate", "startTime", "endTime"],
            "properties": {
                "classId": {"type": "string"},
                "scheduledDate": {"type": "string"},
                "startTime": {"type": "string"},
                "endTime": {"type": "string"},
                "excludeLessonId": {"type": "string"}
            }
        },
        "CreateHolidayRequest": {
            "type": "object",
            "required": ["date", "name"],
            "properties": {
                "date": {"type": "string"},
                "name": {"type": "string"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "pageSize": {"type": "integer"},
                "total": {"type": "integer"},
                "totalPages": {"type": "integer"}
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
