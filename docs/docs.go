// Package docs registers the OpenAPI description of the actuator endpoints
// with swag so gin-swagger can serve it.
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
        "/actuator/health": {
            "get": {
                "description": "Runs every registered indicator and aggregates the worst status.",
                "produces": ["application/json"],
                "tags": ["actuator"],
                "summary": "Composite health",
                "responses": {
                    "200": {"description": "UP or DEGRADED", "schema": {"$ref": "#/definitions/types.CompositeHealth"}},
                    "503": {"description": "At least one indicator is DOWN", "schema": {"$ref": "#/definitions/types.CompositeHealth"}}
                }
            }
        },
        "/actuator/health/{name}": {
            "get": {
                "description": "Runs one indicator. liveness never checks dependencies; readiness reports model and bureau status.",
                "produces": ["application/json"],
                "tags": ["actuator"],
                "summary": "Single health indicator",
                "parameters": [
                    {"enum": ["liveness", "readiness"], "type": "string", "description": "Indicator name", "name": "name", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.Health"}},
                    "404": {"description": "Unknown indicator", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "503": {"description": "Indicator is DOWN", "schema": {"$ref": "#/definitions/types.Health"}}
                }
            }
        },
        "/actuator/info": {
            "get": {
                "produces": ["application/json"],
                "tags": ["actuator"],
                "summary": "Service info",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.InfoResponse"}}
                }
            }
        }
    },
    "definitions": {
        "types.CompositeHealth": {
            "type": "object",
            "properties": {
                "components": {"type": "object", "additionalProperties": {"$ref": "#/definitions/types.Health"}},
                "status": {"$ref": "#/definitions/types.HealthStatus"},
                "timestamp": {"type": "string"},
                "uptime": {"type": "string"},
                "version": {"type": "string"}
            }
        },
        "types.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "details": {"type": "string"},
                "message": {"type": "string"},
                "type": {"type": "string"}
            }
        },
        "types.Health": {
            "type": "object",
            "properties": {
                "details": {"type": "object", "additionalProperties": true},
                "status": {"$ref": "#/definitions/types.HealthStatus"}
            }
        },
        "types.HealthStatus": {
            "type": "string",
            "enum": ["UP", "DOWN", "DEGRADED"],
            "x-enum-varnames": ["HealthStatusUp", "HealthStatusDown", "HealthStatusDegraded"]
        },
        "types.InfoResponse": {
            "type": "object",
            "properties": {
                "environment": {"type": "string"},
                "readiness_mode": {"type": "string"},
                "service": {"type": "string"},
                "started_at": {"type": "string"},
                "version": {"type": "string"}
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
	Title:            "Credit Scoring Engine Actuator API",
	Description:      "Liveness, readiness and operational endpoints of the credit scoring engine.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
