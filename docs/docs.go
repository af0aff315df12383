// Package docs holds the generated OpenAPI document for the quotagate
// service API. Regenerate with `swag init -g web/web.go -o docs` after
// changing handler annotations.
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
        "/healthz": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Ops"],
                "summary": "Liveness check",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/web.healthResponse"}}
                }
            }
        },
        "/version": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Ops"],
                "summary": "Service version",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/web.versionResponse"}}
                }
            }
        },
        "/v1/tiers": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Tiers"],
                "summary": "List tiers",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/web.tierJSON"}}}
                }
            }
        },
        "/v1/accounts": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Accounts"],
                "summary": "Create account",
                "parameters": [
                    {"description": "Account details", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/web.createAccountRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/web.accountJSON"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/web.errorBody"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/web.errorBody"}}
                }
            }
        },
        "/v1/accounts/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Accounts"],
                "summary": "Get account",
                "parameters": [
                    {"type": "string", "description": "Account ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/web.accountJSON"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/web.errorBody"}}
                }
            },
            "delete": {
                "tags": ["Accounts"],
                "summary": "Delete account",
                "parameters": [
                    {"type": "string", "description": "Account ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/web.errorBody"}}
                }
            }
        },
        "/v1/accounts/{id}/tier": {
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Accounts"],
                "summary": "Set account tier",
                "parameters": [
                    {"type": "string", "description": "Account ID", "name": "id", "in": "path", "required": true},
                    {"description": "New tier", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/web.setTierRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/web.accountJSON"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/web.errorBody"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/web.errorBody"}}
                }
            }
        },
        "/v1/accounts/{id}/check": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Entitlements"],
                "summary": "Check entitlement",
                "parameters": [
                    {"type": "string", "description": "Account ID", "name": "id", "in": "path", "required": true},
                    {"description": "Action kind", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/web.actionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/web.decisionJSON"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/web.errorBody"}}
                }
            }
        },
        "/v1/accounts/{id}/usage": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Entitlements"],
                "summary": "Usage stats",
                "parameters": [
                    {"type": "string", "description": "Account ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/web.statsJSON"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/web.errorBody"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "tags": ["Entitlements"],
                "summary": "Record usage",
                "parameters": [
                    {"type": "string", "description": "Account ID", "name": "id", "in": "path", "required": true},
                    {"description": "Action kind and amount", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/web.actionRequest"}}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/web.errorBody"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/web.errorBody"}}
                }
            }
        },
        "/v1/accounts/{id}/consume": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Entitlements"],
                "summary": "Check and record in one call",
                "parameters": [
                    {"type": "string", "description": "Account ID", "name": "id", "in": "path", "required": true},
                    {"description": "Action kind and amount", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/web.actionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/web.decisionJSON"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/web.errorBody"}}
                }
            }
        },
        "/v1/accounts/{id}/recommendation": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Entitlements"],
                "summary": "Upgrade recommendation",
                "parameters": [
                    {"type": "string", "description": "Account ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/web.recommendationJSON"}},
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/web.errorBody"}}
                }
            }
        },
        "/v1/accounts/{id}/events": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Entitlements"],
                "summary": "Recent usage events",
                "parameters": [
                    {"type": "string", "description": "Account ID", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "description": "Max events (default 50)", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/web.eventJSON"}}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/web.errorBody"}}
                }
            }
        },
        "/v1/accounts/{id}/uploads": {
            "post": {
                "produces": ["application/json"],
                "tags": ["Billable"],
                "summary": "Accept upload (gated)",
                "parameters": [
                    {"type": "string", "description": "Account ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/web.acceptResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/web.errorBody"}}
                }
            }
        },
        "/v1/accounts/{id}/transcriptions": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Billable"],
                "summary": "Accept transcription (gated)",
                "parameters": [
                    {"type": "string", "description": "Account ID", "name": "id", "in": "path", "required": true},
                    {"description": "Consumed minutes", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/web.transcriptionRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/web.acceptResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/web.errorBody"}}
                }
            }
        },
        "/v1/accounts/{id}/contracts": {
            "post": {
                "produces": ["application/json"],
                "tags": ["Billable"],
                "summary": "Accept contract draft (gated)",
                "parameters": [
                    {"type": "string", "description": "Account ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/web.acceptResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/web.errorBody"}}
                }
            }
        },
        "/v1/accounts/{id}/stream-token": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Billable"],
                "summary": "Issue extension stream token (gated)",
                "parameters": [
                    {"type": "string", "description": "Account ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/web.streamTokenResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/web.errorBody"}}
                }
            }
        }
    },
    "definitions": {
        "web.accountJSON": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "email": {"type": "string"},
                "name": {"type": "string"},
                "tier": {"type": "string", "example": "FREE"},
                "monthly_uploads": {"type": "integer"},
                "monthly_audio_minutes": {"type": "number"},
                "monthly_contracts": {"type": "integer"},
                "usage_reset_date": {"type": "string"},
                "created_at": {"type": "string"}
            }
        },
        "web.createAccountRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string", "example": "ops@example.com"},
                "name": {"type": "string"},
                "tier": {"type": "string", "example": "FREE"}
            }
        },
        "web.setTierRequest": {
            "type": "object",
            "properties": {
                "tier": {"type": "string", "example": "PREMIUM"}
            }
        },
        "web.actionRequest": {
            "type": "object",
            "properties": {
                "action": {"type": "string", "example": "upload"},
                "amount": {"type": "number", "example": 2.5}
            }
        },
        "web.decisionJSON": {
            "type": "object",
            "properties": {
                "allowed": {"type": "boolean"},
                "reason": {"type": "string"},
                "current": {"type": "number"},
                "limit": {"type": "number"},
                "upgrade_prompt": {"type": "boolean"}
            }
        },
        "web.statJSON": {
            "type": "object",
            "properties": {
                "used": {"type": "number"},
                "limit": {"type": "number"},
                "remaining": {"type": "number"}
            }
        },
        "web.statsJSON": {
            "type": "object",
            "properties": {
                "tier": {"type": "string", "example": "FREE"},
                "usage": {
                    "type": "object",
                    "properties": {
                        "uploads": {"$ref": "#/definitions/web.statJSON"},
                        "audio_minutes": {"$ref": "#/definitions/web.statJSON"},
                        "contracts": {"$ref": "#/definitions/web.statJSON"}
                    }
                },
                "features": {
                    "type": "object",
                    "properties": {
                        "can_use_extension": {"type": "boolean"},
                        "priority_processing": {"type": "boolean"}
                    }
                },
                "reset_date": {"type": "string"}
            }
        },
        "web.recommendationJSON": {
            "type": "object",
            "properties": {
                "recommend_upgrade": {"type": "boolean"},
                "current_tier": {"type": "string"},
                "recommended_tier": {"type": "string"},
                "reasons": {"type": "array", "items": {"type": "string"}}
            }
        },
        "web.tierJSON": {
            "type": "object",
            "properties": {
                "tier": {"type": "string", "example": "BASIC"},
                "uploads_per_month": {"type": "integer"},
                "audio_minutes_per_month": {"type": "number"},
                "contracts_per_month": {"type": "integer"},
                "can_use_extension": {"type": "boolean"},
                "priority_processing": {"type": "boolean"}
            }
        },
        "web.eventJSON": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "kind": {"type": "string", "example": "audio"},
                "amount": {"type": "number"},
                "recorded_at": {"type": "string"}
            }
        },
        "web.acceptResponse": {
            "type": "object",
            "properties": {
                "accepted": {"type": "boolean"},
                "recorded_minutes": {"type": "number"},
                "priority_processing": {"type": "boolean"}
            }
        },
        "web.transcriptionRequest": {
            "type": "object",
            "properties": {
                "duration_minutes": {"type": "number", "example": 2.5}
            }
        },
        "web.streamTokenResponse": {
            "type": "object",
            "properties": {
                "token": {"type": "string"},
                "expires_in": {"type": "integer", "example": 900}
            }
        },
        "web.healthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "example": "ok"}
            }
        },
        "web.versionResponse": {
            "type": "object",
            "properties": {
                "service": {"type": "string", "example": "quotagate"},
                "version": {"type": "string", "example": "1.0.0"},
                "uptime": {"type": "string", "example": "2h30m0s"}
            }
        },
        "web.errorBody": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "message": {"type": "string"},
                "details": {
                    "type": "object",
                    "properties": {
                        "current": {"type": "number"},
                        "limit": {"type": "number"},
                        "upgrade_prompt": {"type": "boolean"}
                    }
                }
            }
        }
    },
    "securityDefinitions": {
        "ServiceKey": {
            "type": "apiKey",
            "name": "X-Service-Key",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "quotagate API",
	Description:      "Usage quota and entitlement accounting for the meeting platform.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
