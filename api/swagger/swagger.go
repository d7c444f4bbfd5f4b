package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Harborview Calendar API",
        "description": "Calendar service with recurrence expansion, conflict detection and cascading edits",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Calendars", "description": "Calendar management"},
        {"name": "Events", "description": "Event creation, edits and queries"},
        {"name": "Transfer", "description": "CSV import, CSV/PDF/ICS export"}
    ],
    "paths": {
        "/calendars": {
            "get": {
                "tags": ["Calendars"],
                "summary": "List calendars",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["Calendars"],
                "summary": "Create a calendar",
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Validation error"},
                    "409": {"description": "Name already taken"}
                }
            }
        },
        "/calendars/{name}": {
            "get": {
                "tags": ["Calendars"],
                "summary": "Get a calendar",
                "responses": {"200": {"description": "OK"}, "404": {"description": "Unknown calendar"}}
            },
            "put": {
                "tags": ["Calendars"],
                "summary": "Rename a calendar or change its timezone",
                "responses": {"200": {"description": "OK"}, "404": {"description": "Unknown calendar"}}
            },
            "delete": {
                "tags": ["Calendars"],
                "summary": "Delete a calendar and its events",
                "responses": {"204": {"description": "Deleted"}}
            }
        },
        "/calendars/{name}/events": {
            "get": {
                "tags": ["Events"],
                "summary": "List events on a date, in a range, or all",
                "parameters": [
                    {"name": "date", "in": "query", "type": "string"},
                    {"name": "from", "in": "query", "type": "string"},
                    {"name": "to", "in": "query", "type": "string"}
                ],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["Events"],
                "summary": "Create a single or recurring event",
                "parameters": [
                    {"name": "auto_decline", "in": "query", "type": "boolean"}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Invalid draft"},
                    "409": {"description": "Event conflict"}
                }
            },
            "put": {
                "tags": ["Events"],
                "summary": "Edit the occurrence identified by subject, start and end",
                "responses": {
                    "200": {"description": "Edited"},
                    "400": {"description": "Unknown event or invalid patch"},
                    "409": {"description": "Event conflict"}
                }
            },
            "patch": {
                "tags": ["Events"],
                "summary": "Edit every occurrence sharing a subject",
                "responses": {
                    "200": {"description": "Edited"},
                    "400": {"description": "No matching events or invalid patch"},
                    "409": {"description": "Event conflict"}
                }
            }
        },
        "/calendars/{name}/busy": {
            "get": {
                "tags": ["Events"],
                "summary": "Report whether an instant is busy",
                "parameters": [
                    {"name": "at", "in": "query", "type": "string", "required": true}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/calendars/{name}/import": {
            "post": {
                "tags": ["Transfer"],
                "summary": "Import events from CSV",
                "responses": {"200": {"description": "Import report"}}
            }
        },
        "/calendars/{name}/export": {
            "get": {
                "tags": ["Transfer"],
                "summary": "Download the calendar as CSV, PDF or ICS",
                "parameters": [
                    {"name": "format", "in": "query", "type": "string"}
                ],
                "responses": {"200": {"description": "File"}}
            }
        },
        "/calendars/{name}/exports": {
            "post": {
                "tags": ["Transfer"],
                "summary": "Schedule an asynchronous export",
                "responses": {"202": {"description": "Job accepted"}}
            }
        },
        "/exports/{id}": {
            "get": {
                "tags": ["Transfer"],
                "summary": "Report the state of an asynchronous export",
                "responses": {"200": {"description": "OK"}, "404": {"description": "Unknown job"}}
            }
        }
    },
    "definitions": {
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
                "pagination": {"type": "object"},
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
