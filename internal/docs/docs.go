// Package docs registers the OpenAPI document served at /swagger. It is
// maintained next to the godoc annotations of the handlers package and can
// be regenerated with `swag init -g cmd/vireya/main.go -o internal/docs`.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "description": "{{.Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "schemes": {{ marshal .Schemes }},
    "paths": {
        "/features": {"get": {"operationId": "listFeatures", "tags": ["Shell"], "summary": "Feature catalog", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}},
        "/languages": {"get": {"operationId": "listLanguages", "tags": ["Chat"], "summary": "Subscription languages", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}},
        "/sessions/{sid}/shell": {"get": {"operationId": "getShell", "tags": ["Shell"], "summary": "Shell state of a client session", "parameters": [{"$ref": "#/parameters/sid"}], "responses": {"200": {"description": "OK"}, "400": {"$ref": "#/responses/error"}}}},
        "/sessions/{sid}/shell/open": {"post": {"operationId": "openFeature", "tags": ["Shell"], "summary": "Open a feature panel", "parameters": [{"$ref": "#/parameters/sid"}, {"in": "body", "name": "body", "required": true, "schema": {"type": "object", "properties": {"feature": {"type": "string", "enum": ["voice", "sms", "scan", "experts"]}}}}], "responses": {"200": {"description": "OK"}, "404": {"$ref": "#/responses/error"}}}},
        "/sessions/{sid}/shell/close": {"post": {"operationId": "closeFeature", "tags": ["Shell"], "summary": "Close the active feature", "parameters": [{"$ref": "#/parameters/sid"}], "responses": {"200": {"description": "OK"}}}},
        "/sessions/{sid}/shell/picker": {"post": {"operationId": "togglePicker", "tags": ["Shell"], "summary": "Toggle the feature picker", "parameters": [{"$ref": "#/parameters/sid"}], "responses": {"200": {"description": "OK"}}}},
        "/sessions/{sid}/chat": {"get": {"operationId": "getChat", "tags": ["Chat"], "summary": "Chat snapshot", "parameters": [{"$ref": "#/parameters/sid"}], "responses": {"200": {"description": "OK"}}}},
        "/sessions/{sid}/chat/messages": {
            "get": {"operationId": "listMessages", "tags": ["Chat"], "summary": "Chat log", "parameters": [{"$ref": "#/parameters/sid"}, {"in": "query", "name": "limit", "type": "integer", "minimum": 1, "maximum": 500}], "responses": {"200": {"description": "OK"}}},
            "post": {"operationId": "postMessage", "tags": ["Chat"], "summary": "Send a chat message", "parameters": [{"$ref": "#/parameters/sid"}, {"in": "header", "name": "Idempotency-Key", "type": "string"}, {"in": "body", "name": "body", "required": true, "schema": {"type": "object", "properties": {"text": {"type": "string"}}}}], "responses": {"200": {"description": "Replayed"}, "202": {"description": "Accepted"}, "400": {"$ref": "#/responses/error"}, "410": {"$ref": "#/responses/error"}}}
        },
        "/sessions/{sid}/chat/topics/{topic}/toggle": {"post": {"operationId": "toggleTopic", "tags": ["Chat"], "summary": "Toggle a topic chip", "parameters": [{"$ref": "#/parameters/sid"}, {"in": "path", "name": "topic", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "404": {"$ref": "#/responses/error"}}}},
        "/sessions/{sid}/chat/subscription": {
            "get": {"operationId": "listSubscriptions", "tags": ["Chat"], "summary": "Subscriptions of a client session", "parameters": [{"$ref": "#/parameters/sid"}], "responses": {"200": {"description": "OK"}}},
            "post": {"operationId": "subscribe", "tags": ["Chat"], "summary": "Subscribe to daily recommendations", "parameters": [{"$ref": "#/parameters/sid"}, {"in": "body", "name": "body", "required": true, "schema": {"type": "object", "properties": {"phone_number": {"type": "string"}, "language": {"type": "string"}}}}], "responses": {"201": {"description": "Created"}, "400": {"$ref": "#/responses/error"}}}
        },
        "/sessions/{sid}/chat/ws": {"get": {"operationId": "chatStream", "tags": ["Chat"], "summary": "Realtime chat events (websocket)", "parameters": [{"$ref": "#/parameters/sid"}], "responses": {"101": {"description": "Switching Protocols"}}}},
        "/sessions/{sid}/preferences/sidebar": {
            "get": {"operationId": "getSidebar", "tags": ["Preferences"], "summary": "Sidebar preference", "parameters": [{"$ref": "#/parameters/sid"}], "responses": {"200": {"description": "OK"}}},
            "put": {"operationId": "putSidebar", "tags": ["Preferences"], "summary": "Save the sidebar preference", "parameters": [{"$ref": "#/parameters/sid"}, {"in": "body", "name": "body", "required": true, "schema": {"type": "object", "properties": {"open": {"type": "boolean"}}}}], "responses": {"200": {"description": "OK"}, "400": {"$ref": "#/responses/error"}}}
        },
        "/sessions/{sid}/scan": {"get": {"operationId": "getScan", "tags": ["Scan"], "summary": "Drug scan state", "parameters": [{"$ref": "#/parameters/sid"}], "responses": {"200": {"description": "OK"}}}},
        "/sessions/{sid}/scan/file": {
            "post": {"operationId": "selectScanFile", "tags": ["Scan"], "summary": "Select the image to recognize", "consumes": ["multipart/form-data"], "parameters": [{"$ref": "#/parameters/sid"}, {"in": "formData", "name": "file", "required": true, "type": "file"}], "responses": {"200": {"description": "OK"}, "400": {"$ref": "#/responses/error"}, "413": {"$ref": "#/responses/error"}}},
            "delete": {"operationId": "clearScanFile", "tags": ["Scan"], "summary": "Clear the selected image", "parameters": [{"$ref": "#/parameters/sid"}], "responses": {"200": {"description": "OK"}}}
        },
        "/sessions/{sid}/scan/submit": {"post": {"operationId": "submitScan", "tags": ["Scan"], "summary": "Recognize the selected image", "parameters": [{"$ref": "#/parameters/sid"}], "responses": {"200": {"description": "OK"}, "409": {"$ref": "#/responses/error"}, "410": {"$ref": "#/responses/error"}}}},
        "/previews/{token}": {"get": {"operationId": "getPreview", "tags": ["Scan"], "summary": "Preview bytes of a selected image", "parameters": [{"in": "path", "name": "token", "required": true, "type": "string"}], "responses": {"200": {"description": "Image"}, "404": {"$ref": "#/responses/error"}}}},
        "/welcome": {"get": {"operationId": "welcome", "tags": ["Backend"], "summary": "Backend welcome message", "responses": {"200": {"description": "OK"}, "502": {"$ref": "#/responses/error"}}}},
        "/analytics/summary": {"get": {"operationId": "analyticsSummary", "tags": ["Backend"], "summary": "Backend analytics summary", "responses": {"200": {"description": "OK"}, "502": {"$ref": "#/responses/error"}}}},
        "/content": {"get": {"operationId": "contentList", "tags": ["Backend"], "summary": "Published content", "responses": {"200": {"description": "OK"}, "502": {"$ref": "#/responses/error"}}}},
        "/overview": {"get": {"operationId": "overview", "tags": ["Backend"], "summary": "Landing page bundle", "responses": {"200": {"description": "OK"}}}},
        "/support": {"post": {"operationId": "createSupportTicket", "tags": ["Backend"], "summary": "Open a support ticket", "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"type": "object", "properties": {"subject": {"type": "string"}, "message": {"type": "string"}, "email": {"type": "string"}}}}], "responses": {"201": {"description": "Created"}, "400": {"$ref": "#/responses/error"}, "502": {"$ref": "#/responses/error"}}}}
    },
    "parameters": {
        "sid": {"in": "path", "name": "sid", "required": true, "type": "string", "pattern": "^[A-Za-z0-9_-]{8,64}$", "description": "Client session id"}
    },
    "responses": {
        "error": {"description": "Error", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
    },
    "definitions": {
        "handlers.ErrorResponse": {
            "type": "object",
            "properties": {
                "request_id": {"type": "string", "example": "123e4567-e89b-12d3-a456-426614174000"},
                "code": {"type": "string", "example": "not_found"},
                "message": {"type": "string", "example": "resource not found"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Vireya API",
	Description:      "Presentation backend of the Vireya reproductive-health assistant.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
