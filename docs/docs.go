// Package docs registers the OpenAPI document served at /swagger.
// Regenerate from the handler annotations with `swag init -g cmd/api/main.go`.
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
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "security": [{"BearerAuth": []}],
    "paths": {
        "/trips": {
            "get": {"tags": ["trips"], "summary": "List my trips", "parameters": [{"$ref": "#/parameters/page"}, {"$ref": "#/parameters/perPage"}], "responses": {"200": {"$ref": "#/responses/ok"}}},
            "post": {"tags": ["trips"], "summary": "Create a trip", "responses": {"201": {"$ref": "#/responses/ok"}, "400": {"$ref": "#/responses/error"}}}
        },
        "/trips/{tripId}": {
            "parameters": [{"$ref": "#/parameters/tripId"}],
            "get": {"tags": ["trips"], "summary": "Get a trip with its members", "responses": {"200": {"$ref": "#/responses/ok"}, "404": {"$ref": "#/responses/error"}}},
            "patch": {"tags": ["trips"], "summary": "Update a trip (owner)", "responses": {"200": {"$ref": "#/responses/ok"}, "403": {"$ref": "#/responses/error"}}},
            "delete": {"tags": ["trips"], "summary": "Delete a trip (owner)", "responses": {"200": {"$ref": "#/responses/ok"}, "403": {"$ref": "#/responses/error"}}}
        },
        "/trips/{tripId}/members": {
            "parameters": [{"$ref": "#/parameters/tripId"}],
            "get": {"tags": ["members"], "summary": "List members", "responses": {"200": {"$ref": "#/responses/ok"}}},
            "post": {"tags": ["members"], "summary": "Add a member (owner)", "responses": {"201": {"$ref": "#/responses/ok"}, "409": {"$ref": "#/responses/error"}}}
        },
        "/trips/{tripId}/members/{userId}": {
            "parameters": [{"$ref": "#/parameters/tripId"}, {"name": "userId", "in": "path", "required": true, "type": "string"}],
            "put": {"tags": ["members"], "summary": "Change a member's role (owner)", "responses": {"200": {"$ref": "#/responses/ok"}}},
            "delete": {"tags": ["members"], "summary": "Remove a member (owner)", "responses": {"200": {"$ref": "#/responses/ok"}, "409": {"$ref": "#/responses/error"}}}
        },
        "/trips/{tripId}/expenses": {
            "parameters": [{"$ref": "#/parameters/tripId"}],
            "get": {"tags": ["expenses"], "summary": "List trip expenses", "parameters": [{"$ref": "#/parameters/page"}, {"$ref": "#/parameters/perPage"}], "responses": {"200": {"$ref": "#/responses/ok"}}},
            "post": {"tags": ["expenses"], "summary": "Create an expense and compute its splits (editor)", "responses": {"201": {"$ref": "#/responses/ok"}, "400": {"$ref": "#/responses/error"}}}
        },
        "/trips/{tripId}/expenses/{id}": {
            "parameters": [{"$ref": "#/parameters/tripId"}, {"$ref": "#/parameters/id"}],
            "get": {"tags": ["expenses"], "summary": "Get an expense with splits", "responses": {"200": {"$ref": "#/responses/ok"}, "404": {"$ref": "#/responses/error"}}},
            "patch": {"tags": ["expenses"], "summary": "Update an expense (editor)", "responses": {"200": {"$ref": "#/responses/ok"}, "400": {"$ref": "#/responses/error"}}},
            "delete": {"tags": ["expenses"], "summary": "Delete an expense (editor)", "responses": {"200": {"$ref": "#/responses/ok"}, "404": {"$ref": "#/responses/error"}}}
        },
        "/trips/{tripId}/settlements": {
            "parameters": [{"$ref": "#/parameters/tripId"}],
            "get": {"tags": ["settlements"], "summary": "List settlements", "responses": {"200": {"$ref": "#/responses/ok"}}},
            "post": {"tags": ["settlements"], "summary": "Record a settlement (editor)", "responses": {"201": {"$ref": "#/responses/ok"}, "400": {"$ref": "#/responses/error"}}}
        },
        "/trips/{tripId}/settlements/{id}": {
            "parameters": [{"$ref": "#/parameters/tripId"}, {"$ref": "#/parameters/id"}],
            "get": {"tags": ["settlements"], "summary": "Get a settlement", "responses": {"200": {"$ref": "#/responses/ok"}, "404": {"$ref": "#/responses/error"}}}
        },
        "/trips/{tripId}/balances": {
            "parameters": [{"$ref": "#/parameters/tripId"}],
            "get": {"tags": ["balances"], "summary": "Per-member balances", "responses": {"200": {"$ref": "#/responses/ok"}}}
        },
        "/trips/{tripId}/balances/debts": {
            "parameters": [{"$ref": "#/parameters/tripId"}],
            "get": {"tags": ["balances"], "summary": "Outstanding debts", "responses": {"200": {"$ref": "#/responses/ok"}}}
        },
        "/trips/{tripId}/balances/summary": {
            "parameters": [{"$ref": "#/parameters/tripId"}],
            "get": {"tags": ["balances"], "summary": "Balance summary per member", "responses": {"200": {"$ref": "#/responses/ok"}}}
        },
        "/trips/{tripId}/balances/export.csv": {
            "parameters": [{"$ref": "#/parameters/tripId"}],
            "get": {"tags": ["balances"], "summary": "Export balances as CSV", "produces": ["text/csv"], "responses": {"200": {"description": "CSV report", "schema": {"type": "string"}}}}
        },
        "/trips/{tripId}/budget": {
            "parameters": [{"$ref": "#/parameters/tripId"}],
            "get": {"tags": ["budget"], "summary": "Spending against the trip budget with per-category totals", "responses": {"200": {"$ref": "#/responses/ok"}, "404": {"$ref": "#/responses/error"}}}
        },
        "/trips/{tripId}/activity": {
            "parameters": [{"$ref": "#/parameters/tripId"}],
            "get": {"tags": ["activity"], "summary": "Recent trip activity", "parameters": [{"name": "limit", "in": "query", "type": "integer", "default": 50}], "responses": {"200": {"$ref": "#/responses/ok"}}}
        },
        "/trips/{tripId}/ws": {
            "parameters": [{"$ref": "#/parameters/tripId"}],
            "get": {"tags": ["realtime"], "summary": "Subscribe to balance updates over WebSocket", "responses": {"101": {"description": "Switching Protocols"}}}
        }
    },
    "parameters": {
        "tripId": {"name": "tripId", "in": "path", "required": true, "type": "string", "format": "uuid"},
        "id": {"name": "id", "in": "path", "required": true, "type": "string", "format": "uuid"},
        "page": {"name": "page", "in": "query", "type": "integer", "default": 1},
        "perPage": {"name": "per_page", "in": "query", "type": "integer", "default": 20}
    },
    "responses": {
        "ok": {"description": "OK", "schema": {"$ref": "#/definitions/response.APIResponse"}},
        "error": {"description": "Error", "schema": {"$ref": "#/definitions/response.APIResponse"}}
    },
    "definitions": {
        "response.APIResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "data": {},
                "error": {"$ref": "#/definitions/response.APIError"},
                "meta": {"$ref": "#/definitions/response.Meta"}
            }
        },
        "response.APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "response.Meta": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "per_page": {"type": "integer"},
                "total": {"type": "integer"},
                "total_pages": {"type": "integer"}
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
	Title:            "TripSplit API",
	Description:      "Shared trip expenses, split calculation and member balances.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
