package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Creative Intake API",
        "description": "Single-question questionnaire engine with file uploads and a one-time submission pipeline",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Catalog", "description": "Question catalog"},
        {"name": "Sessions", "description": "Questionnaire session flow"},
        {"name": "Submissions", "description": "Finalization pipeline"},
        {"name": "Files", "description": "Signed file downloads"}
    ],
    "paths": {
        "/questions": {
            "get": {
                "tags": ["Catalog"],
                "summary": "List all questions in catalog order",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sessions": {
            "post": {
                "tags": ["Sessions"],
                "summary": "Start a new questionnaire session",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "Too many live sessions"}
                }
            }
        },
        "/sessions/{id}": {
            "get": {
                "tags": ["Sessions"],
                "summary": "Get session state and current question",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Session not found"}
                }
            }
        },
        "/sessions/{id}/answers": {
            "post": {
                "tags": ["Sessions"],
                "summary": "Record an answer for a question",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AnswerRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation failed"},
                    "409": {"description": "Session already complete"}
                }
            }
        },
        "/sessions/{id}/answers/{questionId}": {
            "get": {
                "tags": ["Sessions"],
                "summary": "Get the stored answer for a question",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "questionId", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sessions/{id}/files/{questionId}": {
            "post": {
                "tags": ["Sessions"],
                "summary": "Upload files answering a file question",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "questionId", "in": "path", "type": "string", "required": true},
                    {"name": "files", "in": "formData", "type": "file", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation failed"}
                }
            }
        },
        "/sessions/{id}/advance": {
            "post": {
                "tags": ["Sessions"],
                "summary": "Advance to the next question",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Current answer invalid"},
                    "409": {"description": "Session already complete"}
                }
            }
        },
        "/sessions/{id}/back": {
            "post": {
                "tags": ["Sessions"],
                "summary": "Return to the previous question",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already at the first question"}
                }
            }
        },
        "/sessions/{id}/submit": {
            "post": {
                "tags": ["Submissions"],
                "summary": "Finalize a completed session",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Session not complete"},
                    "502": {"description": "Storage or notification failure"}
                }
            }
        },
        "/files/download": {
            "get": {
                "tags": ["Files"],
                "summary": "Download a stored object via a signed token",
                "parameters": [
                    {"name": "token", "in": "query", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Invalid or expired token"}
                }
            }
        }
    },
    "definitions": {
        "AnswerRequest": {
            "type": "object",
            "required": ["question_id"],
            "properties": {
                "question_id": {"type": "string"},
                "text": {"type": "string"},
                "selections": {"type": "array", "items": {"type": "string"}}
            }
        },
        "SubmitRequest": {
            "type": "object",
            "required": ["email"],
            "properties": {
                "email": {"type": "string"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "kind": {"type": "string"},
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
