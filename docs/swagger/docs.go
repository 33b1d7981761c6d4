// Package swagger registers the OpenAPI document of the gatesdb read API.
package swagger

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
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Liveness check",
                "responses": {"200": {"description": "status: ok"}}
            }
        },
        "/health/ready": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Readiness check",
                "description": "Ready once every configured locale has a loaded catalog",
                "responses": {
                    "200": {"description": "status: ok"},
                    "503": {"description": "status: loading"}
                }
            }
        },
        "/version": {
            "get": {
                "produces": ["application/json"],
                "tags": ["System"],
                "summary": "Get service version",
                "responses": {"200": {"description": "Version information"}}
            }
        },
        "/v1/locales": {
            "get": {
                "produces": ["application/vnd.api+json"],
                "tags": ["Catalog"],
                "summary": "List locales",
                "responses": {"200": {"description": "Locale collection"}}
            }
        },
        "/v1/{locale}/database": {
            "get": {
                "produces": ["application/json", "application/yaml"],
                "tags": ["Catalog"],
                "summary": "Get the whole gates database",
                "description": "Returns the interchange document. The ETag is the document checksum.",
                "parameters": [
                    {"type": "string", "name": "locale", "in": "path", "required": true},
                    {"type": "string", "name": "format", "in": "query", "enum": ["json", "yaml"]},
                    {"type": "string", "name": "If-None-Match", "in": "header"}
                ],
                "responses": {
                    "200": {"description": "Gates database"},
                    "304": {"description": "Not modified"},
                    "404": {"description": "Unknown locale"}
                }
            }
        },
        "/v1/{locale}/{collection}": {
            "get": {
                "produces": ["application/vnd.api+json"],
                "tags": ["Catalog"],
                "summary": "List a collection",
                "description": "collection is one of gates, channels, centers, types, profiles, authorities, crosses, circuits",
                "parameters": [
                    {"type": "string", "name": "locale", "in": "path", "required": true},
                    {"type": "string", "name": "collection", "in": "path", "required": true},
                    {"type": "integer", "name": "page[number]", "in": "query"},
                    {"type": "integer", "name": "page[size]", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Resource collection"},
                    "404": {"description": "Unknown locale or collection"}
                }
            }
        },
        "/v1/{locale}/{collection}/{id}": {
            "get": {
                "produces": ["application/vnd.api+json"],
                "tags": ["Catalog"],
                "summary": "Get one entry of a collection",
                "parameters": [
                    {"type": "string", "name": "locale", "in": "path", "required": true},
                    {"type": "string", "name": "collection", "in": "path", "required": true},
                    {"type": "string", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Resource"},
                    "404": {"description": "Unknown locale, collection or id"}
                }
            }
        },
        "/v1/{locale}/phs/{group}": {
            "get": {
                "produces": ["application/vnd.api+json"],
                "tags": ["Catalog"],
                "summary": "Get a PHS block",
                "parameters": [
                    {"type": "string", "name": "locale", "in": "path", "required": true},
                    {"type": "string", "name": "group", "in": "path", "required": true, "enum": ["diet", "motivation", "vision", "environment"]}
                ],
                "responses": {
                    "200": {"description": "Colors and tones"},
                    "404": {"description": "Unknown locale or group"}
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "gatesdb API",
	Description:      "Read-only access to the localized gates reference database.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
