// Package docs holds the OpenAPI document served under /swagger.
// Regenerate with `swag init -g cmd/api/main.go` after changing handler annotations.
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
    "paths": {
        "/api/auth/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Register a new user",
                "parameters": [
                    {"description": "User registration details", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.registerRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.authResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.errorResponse"}}
                }
            }
        },
        "/api/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Log in",
                "parameters": [
                    {"description": "Credentials", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.loginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.authResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.errorResponse"}}
                }
            }
        },
        "/api/auth/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Current user",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.meResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/api.errorResponse"}}
                }
            }
        },
        "/api/users/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Get a user profile",
                "parameters": [{"type": "string", "description": "User id", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.userEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.errorResponse"}}
                }
            }
        },
        "/api/users/{id}/stats": {
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Merge gamification stats",
                "description": "Accepts greenCredits, level, points and modulesCompleted. Counters never decrease.",
                "parameters": [
                    {"type": "string", "description": "User id", "name": "id", "in": "path", "required": true},
                    {"description": "Partial stats", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.updateStatsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.userEnvelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.errorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/api.errorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.errorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/api.errorResponse"}}
                }
            }
        },
        "/api/users/{id}/complete-module": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Mark a module completed",
                "description": "Credits points and green credits once per module; repeats are no-ops.",
                "parameters": [
                    {"type": "string", "description": "User id", "name": "id", "in": "path", "required": true},
                    {"description": "Module and points", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.completeModuleRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.userEnvelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/api.errorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.errorResponse"}}
                }
            }
        },
        "/api/users/{id}/activity": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Recent stats activity",
                "parameters": [
                    {"type": "string", "description": "User id", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "description": "Max entries (1-100, default 20)", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.activityEnvelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/api.errorResponse"}}
                }
            }
        },
        "/api/modules": {
            "get": {
                "produces": ["application/json"],
                "tags": ["modules"],
                "summary": "List published modules",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.modulesEnvelope"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["modules"],
                "summary": "Create a module",
                "parameters": [
                    {"description": "Module definition", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.createModuleRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.moduleEnvelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/api.errorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/api.errorResponse"}}
                }
            }
        },
        "/api/health": {
            "get": {"produces": ["application/json"], "tags": ["health"], "summary": "Liveness probe", "responses": {"200": {"description": "OK"}}}
        },
        "/api/health/ready": {
            "get": {"produces": ["application/json"], "tags": ["health"], "summary": "Readiness probe", "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}}
        }
    },
    "definitions": {
        "api.errorResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "errors": {"type": "array", "items": {"type": "string"}}
            }
        },
        "handler.registerRequest": {
            "type": "object",
            "required": ["email", "name", "password", "role"],
            "properties": {
                "name": {"type": "string", "minLength": 2},
                "email": {"type": "string"},
                "password": {"type": "string", "minLength": 6},
                "role": {"type": "string", "enum": ["citizen", "worker", "champion", "government"]},
                "location": {"type": "string"}
            }
        },
        "handler.loginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "handler.statsResponse": {
            "type": "object",
            "properties": {
                "greenCredits": {"type": "integer"},
                "level": {"type": "integer"},
                "points": {"type": "integer"},
                "modulesCompleted": {"type": "array", "items": {"type": "string"}}
            }
        },
        "handler.userResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "email": {"type": "string"},
                "role": {"type": "string"},
                "avatar": {"type": "string"},
                "location": {"type": "string"},
                "stats": {"$ref": "#/definitions/handler.statsResponse"},
                "createdAt": {"type": "string"}
            }
        },
        "handler.authResponse": {
            "type": "object",
            "properties": {
                "user": {"$ref": "#/definitions/handler.userResponse"},
                "token": {"type": "string"}
            }
        },
        "handler.userEnvelope": {
            "type": "object",
            "properties": {"user": {"$ref": "#/definitions/handler.userResponse"}}
        },
        "handler.meResponse": {
            "type": "object",
            "properties": {
                "user": {"$ref": "#/definitions/handler.userResponse"},
                "dashboard": {"type": "string"}
            }
        },
        "handler.updateStatsRequest": {
            "type": "object",
            "required": ["stats"],
            "properties": {"stats": {"$ref": "#/definitions/handler.statsResponse"}}
        },
        "handler.completeModuleRequest": {
            "type": "object",
            "required": ["moduleSlug"],
            "properties": {
                "moduleSlug": {"type": "string"},
                "points": {"type": "integer", "minimum": 0, "maximum": 10000}
            }
        },
        "handler.activityEnvelope": {
            "type": "object",
            "properties": {
                "activity": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {
                            "id": {"type": "string"},
                            "kind": {"type": "string"},
                            "actorId": {"type": "string"},
                            "moduleSlug": {"type": "string"},
                            "pointsDelta": {"type": "integer"},
                            "greenCreditsDelta": {"type": "integer"},
                            "at": {"type": "string"}
                        }
                    }
                }
            }
        },
        "domain.Module": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "slug": {"type": "string"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "duration": {"type": "string"},
                "difficulty": {"type": "string", "enum": ["Beginner", "Intermediate", "Advanced", "Easy", "Medium", "Hard"]},
                "topics": {"type": "array", "items": {"type": "string"}},
                "points": {"type": "integer"},
                "path": {"type": "string"},
                "published": {"type": "boolean"},
                "createdAt": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "handler.createModuleRequest": {
            "type": "object",
            "required": ["slug"],
            "properties": {
                "slug": {"type": "string"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "duration": {"type": "string"},
                "difficulty": {"type": "string"},
                "topics": {"type": "array", "items": {"type": "string"}},
                "points": {"type": "integer", "minimum": 0, "maximum": 10000},
                "path": {"type": "string"},
                "published": {"type": "boolean"}
            }
        },
        "handler.moduleEnvelope": {
            "type": "object",
            "properties": {"module": {"$ref": "#/definitions/domain.Module"}}
        },
        "handler.modulesEnvelope": {
            "type": "object",
            "properties": {"modules": {"type": "array", "items": {"$ref": "#/definitions/domain.Module"}}}
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Waste Platform API",
	Description:      "Authentication, gamification stats and training modules for the municipal waste platform.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
