// Package docs registers the OpenAPI description of the HTTP API with swag.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/": {
            "get": {
                "summary": "Liveness probe",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.StatusResponse"}}
                }
            }
        },
        "/chat": {
            "post": {
                "summary": "Run one dialogue turn",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/models.Chat_Request"}}
                ],
                "responses": {
                    "200": {"description": "Chat or tool result envelope under \"response\""},
                    "400": {"description": "Invalid body", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "500": {"description": "Session store failure", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "502": {"description": "Every language model provider failed", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/stats": {
            "get": {
                "summary": "Successful calls per provider",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/tenants/{tenant}/sessions": {
            "get": {
                "summary": "List a tenant's sessions",
                "parameters": [{"in": "path", "name": "tenant", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/tenants/{tenant}/sessions/{session}/history": {
            "get": {
                "summary": "Session message log",
                "parameters": [
                    {"in": "path", "name": "tenant", "type": "string", "required": true},
                    {"in": "path", "name": "session", "type": "string", "required": true}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.HistoryResponse"}}}
            }
        },
        "/tenants/{tenant}/sessions/{session}/traces": {
            "get": {
                "summary": "Tool executions of a session",
                "parameters": [
                    {"in": "path", "name": "tenant", "type": "string", "required": true},
                    {"in": "path", "name": "session", "type": "string", "required": true}
                ],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Tracing disabled"}}
            }
        },
        "/tenants/{tenant}/reindex": {
            "post": {
                "summary": "Rebuild the tenant's retrieval index",
                "parameters": [{"in": "path", "name": "tenant", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Invalid tenant"},
                    "404": {"description": "No knowledge file"}
                }
            }
        }
    },
    "definitions": {
        "models.Chat_Request": {
            "type": "object",
            "required": ["tenant_id", "session_id", "message"],
            "properties": {
                "tenant_id": {"type": "string"},
                "session_id": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "models.StatusResponse": {
            "type": "object",
            "properties": {"status": {"type": "string"}}
        },
        "models.ErrorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string"}, "request_id": {"type": "string"}}
        },
        "models.HistoryResponse": {
            "type": "object",
            "properties": {
                "tenant_id": {"type": "string"},
                "session_id": {"type": "string"},
                "messages": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {"role": {"type": "string"}, "content": {"type": "string"}}
                    }
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Intent Agent API",
	Description:      "Multi-tenant conversational agent with intent routing, retrieval and tool calls.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
