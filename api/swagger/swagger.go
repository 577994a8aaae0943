package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "FoodBridge Pickup API",
        "description": "Food-parcel pickup enrollment and slot scheduling service",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http",
        "https"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Locations", "description": "Pickup location directory and schedules"},
        {"name": "Enrollments", "description": "Pickup enrollment drafts and submissions"},
        {"name": "Manifests", "description": "Daily pickup manifest exports"}
    ],
    "paths": {
        "/locations": {
            "get": {
                "tags": ["Locations"],
                "summary": "List pickup locations",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "active", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Locations"],
                "summary": "Create pickup location",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateLocationRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/locations/{id}": {
            "get": {
                "tags": ["Locations"],
                "summary": "Get pickup location",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Locations"],
                "summary": "Update pickup location",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateLocationRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Locations"],
                "summary": "Deactivate pickup location",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/locations/{id}/schedules": {
            "get": {
                "tags": ["Locations"],
                "summary": "List opening schedules",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Locations"],
                "summary": "Create opening schedule",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateScheduleRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedules/{id}": {
            "delete": {
                "tags": ["Locations"],
                "summary": "Delete opening schedule",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/locations/{id}/capacity": {
            "get": {
                "tags": ["Locations"],
                "summary": "Booked parcel counts per date",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "start_date", "in": "query", "required": true, "type": "string"},
                    {"name": "end_date", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/locations/{id}/slot-duration": {
            "get": {
                "tags": ["Locations"],
                "summary": "Slot duration for a location",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/enrollments": {
            "get": {
                "tags": ["Enrollments"],
                "summary": "List submitted enrollments",
                "parameters": [
                    {"name": "household_id", "in": "query", "type": "string"},
                    {"name": "location_id", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/enrollments/{id}": {
            "get": {
                "tags": ["Enrollments"],
                "summary": "Get enrollment detail",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/enrollments/drafts": {
            "post": {
                "tags": ["Enrollments"],
                "summary": "Start an enrollment draft",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateDraftRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/enrollments/drafts/{id}": {
            "get": {
                "tags": ["Enrollments"],
                "summary": "Get draft state",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "410": {"description": "Draft expired"}
                }
            }
        },
        "/enrollments/drafts/{id}/location": {
            "put": {
                "tags": ["Enrollments"],
                "summary": "Switch the draft to another location",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ChangeLocationRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/enrollments/drafts/{id}/calendar": {
            "get": {
                "tags": ["Enrollments"],
                "summary": "Month calendar with per-date selectability",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "month", "in": "query", "type": "string", "description": "YYYY-MM"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/enrollments/drafts/{id}/dates": {
            "post": {
                "tags": ["Enrollments"],
                "summary": "Select a pickup date",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SelectDateRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Date not selectable"}
                }
            }
        },
        "/enrollments/drafts/{id}/dates/{date}": {
            "delete": {
                "tags": ["Enrollments"],
                "summary": "Deselect a pickup date",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "date", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/enrollments/drafts/{id}/dates/{date}/slots": {
            "get": {
                "tags": ["Enrollments"],
                "summary": "Start-time slots for one date",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "date", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/enrollments/drafts/{id}/parcels/{date}/time": {
            "put": {
                "tags": ["Enrollments"],
                "summary": "Set pickup time for one parcel",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "date", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SetTimeRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/enrollments/drafts/{id}/bulk-time": {
            "post": {
                "tags": ["Enrollments"],
                "summary": "Apply one pickup time to every upcoming date",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BulkTimeRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Time outside one or more opening windows"}
                }
            }
        },
        "/enrollments/drafts/{id}/bulk-time/window": {
            "get": {
                "tags": ["Enrollments"],
                "summary": "Shared opening window across the draft's upcoming dates",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/enrollments/drafts/{id}/submit": {
            "post": {
                "tags": ["Enrollments"],
                "summary": "Submit the draft and persist its parcels",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Capacity exhausted for one or more dates"}
                }
            }
        },
        "/manifests": {
            "post": {
                "tags": ["Manifests"],
                "summary": "Queue a manifest export",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateManifestRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/manifests/{id}": {
            "get": {
                "tags": ["Manifests"],
                "summary": "Manifest job status",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/manifests/download": {
            "get": {
                "tags": ["Manifests"],
                "summary": "Download a finished manifest via signed token",
                "parameters": [
                    {"name": "token", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File stream"},
                    "401": {"description": "Invalid or expired token"}
                }
            }
        }
    },
    "definitions": {
        "CreateLocationRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "address": {"type": "string"},
                "maxParcelsPerDay": {"type": "integer"},
                "slotDurationMinutes": {"type": "integer"}
            },
            "required": ["name", "address", "slotDurationMinutes"]
        },
        "UpdateLocationRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "address": {"type": "string"},
                "maxParcelsPerDay": {"type": "integer"},
                "slotDurationMinutes": {"type": "integer"},
                "active": {"type": "boolean"}
            },
            "required": ["name", "address", "slotDurationMinutes"]
        },
        "DaySpecInput": {
            "type": "object",
            "properties": {
                "weekday": {"type": "integer", "minimum": 0, "maximum": 6},
                "isOpen": {"type": "boolean"},
                "opensAt": {"type": "string", "example": "09:00"},
                "closesAt": {"type": "string", "example": "17:00"}
            }
        },
        "CreateScheduleRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "startDate": {"type": "string", "example": "2025-05-01"},
                "endDate": {"type": "string", "example": "2025-06-30"},
                "days": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/DaySpecInput"}
                }
            },
            "required": ["name", "startDate", "endDate", "days"]
        },
        "CreateDraftRequest": {
            "type": "object",
            "properties": {
                "householdId": {"type": "string"},
                "locationId": {"type": "string"}
            },
            "required": ["householdId", "locationId"]
        },
        "ChangeLocationRequest": {
            "type": "object",
            "properties": {
                "locationId": {"type": "string"}
            },
            "required": ["locationId"]
        },
        "SelectDateRequest": {
            "type": "object",
            "properties": {
                "date": {"type": "string", "example": "2025-05-05"}
            },
            "required": ["date"]
        },
        "SetTimeRequest": {
            "type": "object",
            "properties": {
                "time": {"type": "string", "example": "14:15"}
            },
            "required": ["time"]
        },
        "BulkTimeRequest": {
            "type": "object",
            "properties": {
                "time": {"type": "string", "example": "13:30"}
            },
            "required": ["time"]
        },
        "CreateManifestRequest": {
            "type": "object",
            "properties": {
                "locationId": {"type": "string"},
                "date": {"type": "string", "example": "2025-05-05"},
                "format": {"type": "string", "enum": ["csv", "pdf"]}
            },
            "required": ["locationId", "date", "format"]
        },
        "ParcelView": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "date": {"type": "string"},
                "earliest": {"type": "string"},
                "latest": {"type": "string"}
            }
        },
        "DraftResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "householdId": {"type": "string"},
                "locationId": {"type": "string"},
                "slotMinutes": {"type": "integer"},
                "selectedDates": {"type": "array", "items": {"type": "string"}},
                "parcels": {"type": "array", "items": {"$ref": "#/definitions/ParcelView"}},
                "updatedAt": {"type": "string"}
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
