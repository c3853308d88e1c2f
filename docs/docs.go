// Package docs registers the OpenAPI description served under /swagger.
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
        "/foods": {
            "get": {
                "produces": ["application/json"],
                "tags": ["foods"],
                "summary": "List menu items",
                "parameters": [
                    {"type": "string", "description": "Case-insensitive category filter", "name": "category", "in": "query"},
                    {"type": "boolean", "description": "Only available items", "name": "available", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.Food"}}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["foods"],
                "summary": "Add a menu item (admin)",
                "parameters": [
                    {"description": "Menu item", "name": "food", "in": "body", "required": true, "schema": {"$ref": "#/definitions/gateway.foodRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.Food"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/gateway.errorResponse"}}
                }
            }
        },
        "/orders": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "List every order (admin)",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.Order"}}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "Place an order for the caller",
                "parameters": [
                    {"description": "Cart and delivery details", "name": "order", "in": "body", "required": true, "schema": {"$ref": "#/definitions/gateway.createOrderRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.Order"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/gateway.errorResponse"}}
                }
            }
        },
        "/orders/analytics/overview": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["analytics"],
                "summary": "Dashboard KPIs and daily series (admin)",
                "parameters": [
                    {"type": "integer", "description": "Window length in days, clamped to 1..30", "name": "days", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/analytics.Overview"}}
                }
            }
        },
        "/orders/{id}/status": {
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "Move an order to its next status (admin)",
                "parameters": [
                    {"type": "string", "description": "Order id", "name": "id", "in": "path", "required": true},
                    {"description": "Requested status", "name": "status", "in": "body", "required": true, "schema": {"$ref": "#/definitions/gateway.updateStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Order"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/gateway.errorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/gateway.errorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "analytics.DayBucket": {
            "type": "object",
            "properties": {
                "date": {"type": "string"},
                "day": {"type": "string"},
                "orders": {"type": "integer"},
                "revenue": {"type": "number"}
            }
        },
        "analytics.KPIs": {
            "type": "object",
            "properties": {
                "cancelledOrders": {"type": "integer"},
                "completedOrders": {"type": "integer"},
                "ordersToday": {"type": "integer"},
                "pendingOrders": {"type": "integer"},
                "revenueToday": {"type": "number"},
                "totalOrders": {"type": "integer"},
                "totalRevenue": {"type": "number"}
            }
        },
        "analytics.Overview": {
            "type": "object",
            "properties": {
                "kpis": {"$ref": "#/definitions/analytics.KPIs"},
                "lastNDays": {"type": "array", "items": {"$ref": "#/definitions/analytics.DayBucket"}},
                "statusCounts": {"type": "object", "additionalProperties": {"type": "integer"}}
            }
        },
        "gateway.createOrderRequest": {
            "type": "object",
            "required": ["deliveryAddress", "items", "phoneNumber"],
            "properties": {
                "deliveryAddress": {"type": "string"},
                "items": {"type": "array", "items": {"$ref": "#/definitions/gateway.orderLineRequest"}},
                "phoneNumber": {"type": "string"},
                "recipientName": {"type": "string"}
            }
        },
        "gateway.errorResponse": {
            "type": "object",
            "properties": {
                "allowedNext": {"type": "array", "items": {"type": "string"}},
                "currentStatus": {"type": "string"},
                "details": {"type": "object", "additionalProperties": {"type": "string"}},
                "message": {"type": "string"}
            }
        },
        "gateway.foodRequest": {
            "type": "object",
            "properties": {
                "available": {"type": "boolean"},
                "category": {"type": "string"},
                "image": {"type": "string"},
                "name": {"type": "string"},
                "price": {"type": "number"}
            }
        },
        "gateway.orderLineRequest": {
            "type": "object",
            "required": ["foodId"],
            "properties": {
                "foodId": {"type": "string"},
                "quantity": {"type": "integer"}
            }
        },
        "gateway.updateStatusRequest": {
            "type": "object",
            "required": ["status"],
            "properties": {
                "status": {"type": "string", "enum": ["pending", "preparing", "delivering", "completed", "cancelled"]}
            }
        },
        "models.Food": {
            "type": "object",
            "properties": {
                "available": {"type": "boolean"},
                "category": {"type": "string"},
                "createdAt": {"type": "string"},
                "id": {"type": "string"},
                "image": {"type": "string"},
                "name": {"type": "string"},
                "price": {"type": "number"},
                "updatedAt": {"type": "string"}
            }
        },
        "models.Order": {
            "type": "object",
            "properties": {
                "createdAt": {"type": "string"},
                "deliveryAddress": {"type": "string"},
                "id": {"type": "string"},
                "items": {"type": "array", "items": {"$ref": "#/definitions/models.OrderItem"}},
                "phoneNumber": {"type": "string"},
                "recipientName": {"type": "string"},
                "status": {"type": "string"},
                "totalPrice": {"type": "number"},
                "updatedAt": {"type": "string"},
                "userId": {"type": "string"}
            }
        },
        "models.OrderItem": {
            "type": "object",
            "properties": {
                "food": {"type": "string"},
                "name": {"type": "string"},
                "price": {"type": "number"},
                "quantity": {"type": "integer"}
            }
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
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Big-Bite API",
	Description:      "Restaurant ordering: menu, orders and admin analytics.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
