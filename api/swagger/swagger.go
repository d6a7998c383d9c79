package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Skill Hub Evidence API",
        "description": "Assessment evidence capture, storage and reporting for skill hub training batches",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Admin and assessor sign-in"},
        {"name": "Councils", "description": "Sector skill council registry"},
        {"name": "Batches", "description": "Training batch registry"},
        {"name": "Capture", "description": "Photo capture sessions"},
        {"name": "Evidence", "description": "Submitted evidence records"},
        {"name": "Reports", "description": "Evidence and attendance report downloads"},
        {"name": "Photos", "description": "Object storage deletion proxy"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "description": "Assessors sign in with their job role as username and batch ID as password.",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/councils": {
            "get": {
                "tags": ["Councils"],
                "summary": "List councils",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Councils"],
                "summary": "Register a council",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateCouncilRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Council already exists"}
                }
            }
        },
        "/councils/{id}": {
            "delete": {
                "tags": ["Councils"],
                "summary": "Delete a council, its batches and their evidence",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "204": {"description": "Deleted"},
                    "404": {"description": "Council not found"}
                }
            }
        },
        "/councils/{id}/batches": {
            "post": {
                "tags": ["Batches"],
                "summary": "Register a batch under a council",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateBatchRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Batch ID already registered"}
                }
            }
        },
        "/batches": {
            "get": {
                "tags": ["Batches"],
                "summary": "List batches",
                "parameters": [
                    {"name": "council_id", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/batches/{id}/credentials": {
            "get": {
                "tags": ["Batches"],
                "summary": "Fetch a batch's assessor sign-in pair",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            }
        },
        "/batches/{id}": {
            "get": {
                "tags": ["Batches"],
                "summary": "Fetch a batch",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            },
            "delete": {
                "tags": ["Batches"],
                "summary": "Delete a batch, its evidence and stored photos",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"204": {"description": "Deleted"}, "404": {"description": "Not found"}}
            }
        },
        "/capture/sessions": {
            "post": {
                "tags": ["Capture"],
                "summary": "Open a capture session",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/OpenSessionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Session opened"},
                    "503": {"description": "Camera unavailable"}
                }
            }
        },
        "/capture/sessions/{id}": {
            "get": {
                "tags": ["Capture"],
                "summary": "Fetch session state",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            },
            "delete": {
                "tags": ["Capture"],
                "summary": "Abandon a session",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"204": {"description": "Closed"}}
            }
        },
        "/capture/sessions/{id}/capture": {
            "post": {
                "tags": ["Capture"],
                "summary": "Capture a photo from a posted frame",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "frame", "in": "formData", "required": true, "type": "file"}
                ],
                "responses": {
                    "200": {"description": "Photo stored"},
                    "409": {"description": "Quota reached"}
                }
            }
        },
        "/capture/sessions/{id}/position": {
            "post": {
                "tags": ["Capture"],
                "summary": "Feed a GPS fix into the session tracker",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PositionUpdate"}}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/capture/sessions/{id}/photos/{index}": {
            "delete": {
                "tags": ["Capture"],
                "summary": "Discard a captured photo before submission",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "index", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Index out of range"}}
            }
        },
        "/capture/sessions/{id}/submit": {
            "post": {
                "tags": ["Capture"],
                "summary": "Submit a completed session as an evidence record",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "201": {"description": "Evidence recorded"},
                    "400": {"description": "Quota not met"}
                }
            }
        },
        "/evidence/{batchId}": {
            "get": {
                "tags": ["Evidence"],
                "summary": "List a batch's evidence records",
                "parameters": [
                    {"name": "batchId", "in": "path", "required": true, "type": "string"},
                    {"name": "type", "in": "query", "type": "string", "enum": ["Theory", "Practical", "Viva", "Group", "Attendance"]}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/evidence/records/{id}": {
            "delete": {
                "tags": ["Evidence"],
                "summary": "Delete an evidence record and its stored photos",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"204": {"description": "Deleted"}, "404": {"description": "Not found"}}
            }
        },
        "/reports/evidence/{batchId}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Download the evidence photo grid",
                "produces": ["application/msword", "application/pdf"],
                "parameters": [
                    {"name": "batchId", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["doc", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Report file"},
                    "404": {"description": "Batch or photos not found"}
                }
            }
        },
        "/reports/attendance/{batchId}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Download the attendance sheet",
                "produces": ["application/pdf"],
                "parameters": [{"name": "batchId", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "Report file"},
                    "404": {"description": "Batch or photos not found"}
                }
            }
        },
        "/photos/delete": {
            "post": {
                "tags": ["Photos"],
                "summary": "Delete stored photos by delivery URL",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/DeletePhotosRequest"}}
                ],
                "responses": {
                    "200": {"description": "Per-URL results"},
                    "400": {"description": "Malformed payload"},
                    "500": {"description": "Storage credentials missing"}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["username", "password"],
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "CreateCouncilRequest": {
            "type": "object",
            "required": ["name"],
            "properties": {"name": {"type": "string"}}
        },
        "CreateBatchRequest": {
            "type": "object",
            "required": ["batch_id", "job_role"],
            "properties": {
                "batch_id": {"type": "string"},
                "job_role": {"type": "string"},
                "skill_hub": {"type": "string"},
                "sr": {"type": "integer"},
                "day": {"type": "string"},
                "month": {"type": "string"}
            }
        },
        "OpenSessionRequest": {
            "type": "object",
            "required": ["batch_id", "type"],
            "properties": {
                "batch_id": {"type": "string"},
                "type": {"type": "string", "enum": ["Theory", "Practical", "Viva", "Group", "Attendance"]}
            }
        },
        "PositionUpdate": {
            "type": "object",
            "required": ["lat", "lng"],
            "properties": {
                "lat": {"type": "number"},
                "lng": {"type": "number"}
            }
        },
        "DeletePhotosRequest": {
            "type": "object",
            "required": ["urls"],
            "properties": {
                "urls": {"type": "array", "items": {"type": "string"}}
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
