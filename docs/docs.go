// Package docs wikihumanpath API.
//
// Finds a path of human Wikipedia articles between two given articles
// using bidirectional search.
//
//	Schemes: http
//	Host: localhost:3000
//	BasePath: /api/v1
//	Version: 1.0.0
//
//	Consumes:
//	- application/json
//
//	Produces:
//	- application/x-ndjson
//
// swagger:meta
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "description": "Finds a path of human Wikipedia articles between two given articles using bidirectional search, streaming progress as newline-delimited JSON events.",
        "title": "wikihumanpath API",
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "1.0.0"
    },
    "host": "localhost:3000",
    "basePath": "/api/v1",
    "paths": {
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Report service health",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "properties": {
                                "status": {"type": "string", "example": "ok"},
                                "service": {"type": "string", "example": "wikihumanpath"}
                            }
                        }
                    }
                }
            }
        },
        "/search": {
            "get": {
                "description": "Streams the engine's event sequence as newline-delimited JSON.",
                "produces": ["application/x-ndjson"],
                "tags": ["search"],
                "summary": "Find a human path between two Wikipedia articles (GET)",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Start article",
                        "name": "from",
                        "in": "query",
                        "required": true,
                        "example": "Kevin Bacon"
                    },
                    {
                        "type": "string",
                        "description": "Target article",
                        "name": "to",
                        "in": "query",
                        "required": true,
                        "example": "Albert Einstein"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Stream of engine events, one JSON object per line",
                        "schema": {"$ref": "#/definitions/Event"}
                    },
                    "400": {
                        "description": "Missing or malformed parameters",
                        "schema": {"$ref": "#/definitions/ErrorResponse"}
                    }
                }
            },
            "post": {
                "description": "Streams the engine's event sequence as newline-delimited JSON.",
                "consumes": ["application/json"],
                "produces": ["application/x-ndjson"],
                "tags": ["search"],
                "summary": "Find a human path between two Wikipedia articles",
                "parameters": [
                    {
                        "description": "Search parameters",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/SearchRequest"}
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Stream of engine events, one JSON object per line",
                        "schema": {"$ref": "#/definitions/Event"}
                    },
                    "400": {
                        "description": "Missing or malformed parameters",
                        "schema": {"$ref": "#/definitions/ErrorResponse"}
                    }
                }
            }
        }
    },
    "definitions": {
        "SearchRequest": {
            "type": "object",
            "required": ["from", "to"],
            "properties": {
                "from": {
                    "type": "string",
                    "description": "Start article",
                    "example": "Kevin Bacon"
                },
                "to": {
                    "type": "string",
                    "description": "Target article",
                    "example": "Albert Einstein"
                }
            }
        },
        "Event": {
            "type": "object",
            "properties": {
                "tag": {
                    "type": "string",
                    "enum": ["info", "exploring", "finished", "not_found", "error"],
                    "example": "exploring"
                },
                "message": {"type": "string"},
                "direction": {
                    "type": "string",
                    "enum": ["forward", "backward"]
                },
                "nodes": {
                    "type": "array",
                    "items": {"type": "string"}
                },
                "stats": {
                    "type": "object",
                    "properties": {
                        "visited": {"type": "integer", "example": 42},
                        "elapsed_seconds": {"type": "number", "example": 3.2}
                    }
                },
                "path": {
                    "type": "array",
                    "items": {"type": "string"}
                }
            }
        },
        "ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {
                    "type": "string",
                    "example": "both 'from' and 'to' are required"
                },
                "code": {
                    "type": "string",
                    "enum": ["INVALID_REQUEST", "MISSING_PARAMS"],
                    "example": "MISSING_PARAMS"
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "localhost:3000",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "wikihumanpath API",
	Description:      "Finds a path of human Wikipedia articles between two given articles using bidirectional search.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
