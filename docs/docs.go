// Package docs registers the OpenAPI description of the CRM API with swag.
package docs

import "github.com/swaggo/swag/v2"

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
        "/customers": {
            "get": {
                "produces": ["application/json"],
                "tags": ["customers"],
                "summary": "List customers",
                "parameters": [
                    {"$ref": "#/parameters/page"},
                    {"$ref": "#/parameters/page_size"},
                    {"$ref": "#/parameters/order_by"},
                    {"type": "string", "description": "Substring match on name", "name": "name", "in": "query"},
                    {"type": "string", "description": "Substring match on email", "name": "email", "in": "query"},
                    {"type": "string", "description": "Substring match on name or email", "name": "search", "in": "query"},
                    {"type": "string", "description": "Phone prefix", "name": "phone_pattern", "in": "query"},
                    {"type": "boolean", "description": "Only customers with (or without) orders", "name": "has_orders", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.Response"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["customers"],
                "summary": "Create a customer",
                "parameters": [
                    {"description": "Customer", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/partner.CreateCustomerRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"allOf": [{"$ref": "#/definitions/dto.Response"}, {"type": "object", "properties": {"data": {"$ref": "#/definitions/partner.CreateCustomerResult"}}}]}},
                    "422": {"description": "Validation failed", "schema": {"allOf": [{"$ref": "#/definitions/dto.Response"}, {"type": "object", "properties": {"data": {"$ref": "#/definitions/partner.CreateCustomerResult"}}}]}}
                }
            }
        },
        "/customers/bulk": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["customers"],
                "summary": "Create customers in bulk",
                "parameters": [
                    {"description": "Customers", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/partner.BulkCreateCustomersRequest"}}
                ],
                "responses": {
                    "201": {"description": "At least one customer created", "schema": {"allOf": [{"$ref": "#/definitions/dto.Response"}, {"type": "object", "properties": {"data": {"$ref": "#/definitions/partner.BulkCreateCustomersResult"}}}]}},
                    "422": {"description": "No customer created", "schema": {"allOf": [{"$ref": "#/definitions/dto.Response"}, {"type": "object", "properties": {"data": {"$ref": "#/definitions/partner.BulkCreateCustomersResult"}}}]}},
                    "500": {"description": "Batch rolled back", "schema": {"allOf": [{"$ref": "#/definitions/dto.Response"}, {"type": "object", "properties": {"data": {"$ref": "#/definitions/partner.BulkCreateCustomersResult"}}}]}}
                }
            }
        },
        "/customers/import": {
            "post": {
                "consumes": ["text/csv", "multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["customers"],
                "summary": "Import customers from CSV",
                "description": "Columns name and email are required, phone is optional. Send the raw file or the multipart field file.",
                "parameters": [
                    {"type": "file", "description": "CSV file", "name": "file", "in": "formData"}
                ],
                "responses": {
                    "201": {"description": "At least one customer created", "schema": {"allOf": [{"$ref": "#/definitions/dto.Response"}, {"type": "object", "properties": {"data": {"$ref": "#/definitions/partner.BulkCreateCustomersResult"}}}]}},
                    "400": {"description": "Unreadable CSV", "schema": {"$ref": "#/definitions/dto.Response"}},
                    "422": {"description": "No customer created", "schema": {"allOf": [{"$ref": "#/definitions/dto.Response"}, {"type": "object", "properties": {"data": {"$ref": "#/definitions/partner.BulkCreateCustomersResult"}}}]}}
                }
            }
        },
        "/customers/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["customers"],
                "summary": "Get customer by ID",
                "parameters": [{"type": "integer", "description": "Customer ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.Response"}}
                }
            }
        },
        "/products": {
            "get": {
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "List products",
                "parameters": [
                    {"$ref": "#/parameters/page"},
                    {"$ref": "#/parameters/page_size"},
                    {"$ref": "#/parameters/order_by"},
                    {"type": "string", "description": "Substring match on name", "name": "search", "in": "query"},
                    {"type": "string", "description": "Minimum price", "name": "price_gte", "in": "query"},
                    {"type": "string", "description": "Maximum price", "name": "price_lte", "in": "query"},
                    {"type": "string", "description": "budget, mid, premium or luxury", "name": "price_category", "in": "query"},
                    {"type": "boolean", "description": "Only products below the low stock threshold", "name": "low_stock", "in": "query"},
                    {"type": "boolean", "description": "Only products with stock", "name": "in_stock", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.Response"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Create a product",
                "parameters": [
                    {"description": "Product", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/catalog.CreateProductRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"allOf": [{"$ref": "#/definitions/dto.Response"}, {"type": "object", "properties": {"data": {"$ref": "#/definitions/catalog.CreateProductResult"}}}]}},
                    "422": {"description": "Validation failed", "schema": {"allOf": [{"$ref": "#/definitions/dto.Response"}, {"type": "object", "properties": {"data": {"$ref": "#/definitions/catalog.CreateProductResult"}}}]}}
                }
            }
        },
        "/products/restock": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Restock low stock products",
                "parameters": [
                    {"description": "Restock level", "name": "request", "in": "body", "schema": {"$ref": "#/definitions/catalog.RestockRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"allOf": [{"$ref": "#/definitions/dto.Response"}, {"type": "object", "properties": {"data": {"$ref": "#/definitions/catalog.RestockResult"}}}]}},
                    "500": {"description": "Restock failed", "schema": {"allOf": [{"$ref": "#/definitions/dto.Response"}, {"type": "object", "properties": {"data": {"$ref": "#/definitions/catalog.RestockResult"}}}]}}
                }
            }
        },
        "/products/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Get product by ID",
                "parameters": [{"type": "integer", "description": "Product ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.Response"}}
                }
            }
        },
        "/orders": {
            "get": {
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "List orders",
                "parameters": [
                    {"$ref": "#/parameters/page"},
                    {"$ref": "#/parameters/page_size"},
                    {"$ref": "#/parameters/order_by"},
                    {"type": "string", "description": "Minimum total", "name": "total_amount_gte", "in": "query"},
                    {"type": "string", "description": "Substring match on customer email", "name": "customer_email", "in": "query"},
                    {"type": "string", "description": "Substring match on product name", "name": "product_name", "in": "query"},
                    {"type": "string", "description": "today, week, month or year", "name": "date_range", "in": "query"},
                    {"type": "string", "description": "small, medium, large or xlarge", "name": "value_category", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.Response"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "Place an order",
                "parameters": [
                    {"description": "Order", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/trade.CreateOrderRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"allOf": [{"$ref": "#/definitions/dto.Response"}, {"type": "object", "properties": {"data": {"$ref": "#/definitions/trade.CreateOrderResult"}}}]}},
                    "422": {"description": "Validation failed", "schema": {"allOf": [{"$ref": "#/definitions/dto.Response"}, {"type": "object", "properties": {"data": {"$ref": "#/definitions/trade.CreateOrderResult"}}}]}}
                }
            }
        },
        "/orders/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "Get order by ID",
                "parameters": [{"type": "integer", "description": "Order ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.Response"}}
                }
            }
        },
        "/reports/summary": {
            "get": {
                "produces": ["application/json"],
                "tags": ["reports"],
                "summary": "Customer, order and revenue totals",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.Response"}}
                }
            }
        }
    },
    "parameters": {
        "page": {"type": "integer", "default": 1, "name": "page", "in": "query"},
        "page_size": {"type": "integer", "default": 20, "name": "page_size", "in": "query"},
        "order_by": {"type": "string", "description": "Field name, prefix with - for descending", "name": "order_by", "in": "query"}
    },
    "definitions": {
        "dto.Response": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "data": {},
                "error": {"$ref": "#/definitions/dto.ErrorInfo"},
                "meta": {"$ref": "#/definitions/dto.Meta"}
            }
        },
        "dto.ErrorInfo": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "request_id": {"type": "string"},
                "details": {"type": "array", "items": {"type": "string"}}
            }
        },
        "dto.Meta": {
            "type": "object",
            "properties": {
                "total": {"type": "integer"},
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_pages": {"type": "integer"}
            }
        },
        "partner.CreateCustomerRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "phone": {"type": "string"}
            }
        },
        "partner.BulkCreateCustomersRequest": {
            "type": "object",
            "properties": {
                "customers": {"type": "array", "items": {"$ref": "#/definitions/partner.CreateCustomerRequest"}}
            }
        },
        "partner.CustomerResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "email": {"type": "string"},
                "phone": {"type": "string"},
                "created_at": {"type": "string", "format": "date-time"}
            }
        },
        "partner.CreateCustomerResult": {
            "type": "object",
            "properties": {
                "customer": {"$ref": "#/definitions/partner.CustomerResponse"},
                "message": {"type": "string"},
                "errors": {"type": "array", "items": {"type": "string"}}
            }
        },
        "partner.BulkCreateCustomersResult": {
            "type": "object",
            "properties": {
                "customers": {"type": "array", "items": {"$ref": "#/definitions/partner.CustomerResponse"}},
                "success_count": {"type": "integer"},
                "failure_count": {"type": "integer"},
                "message": {"type": "string"},
                "errors": {"type": "array", "items": {"type": "string"}}
            }
        },
        "catalog.CreateProductRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "price": {"type": "string", "example": "19.99"},
                "stock": {"type": "integer"}
            }
        },
        "catalog.RestockRequest": {
            "type": "object",
            "properties": {
                "level": {"type": "integer", "minimum": 0}
            }
        },
        "catalog.ProductResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "price": {"type": "string"},
                "stock": {"type": "integer"},
                "low_stock": {"type": "boolean"},
                "created_at": {"type": "string", "format": "date-time"}
            }
        },
        "catalog.CreateProductResult": {
            "type": "object",
            "properties": {
                "product": {"$ref": "#/definitions/catalog.ProductResponse"},
                "message": {"type": "string"},
                "errors": {"type": "array", "items": {"type": "string"}}
            }
        },
        "catalog.RestockResult": {
            "type": "object",
            "properties": {
                "products": {"type": "array", "items": {"$ref": "#/definitions/catalog.ProductResponse"}},
                "level": {"type": "integer"},
                "message": {"type": "string"},
                "errors": {"type": "array", "items": {"type": "string"}}
            }
        },
        "trade.CreateOrderRequest": {
            "type": "object",
            "properties": {
                "customer_id": {"type": "integer"},
                "product_ids": {"type": "array", "items": {"type": "integer"}},
                "order_date": {"type": "string", "format": "date-time"}
            }
        },
        "trade.OrderCustomerResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "email": {"type": "string"},
                "phone": {"type": "string"}
            }
        },
        "trade.OrderProductResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "price": {"type": "string"}
            }
        },
        "trade.OrderResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "customer_id": {"type": "integer"},
                "customer": {"$ref": "#/definitions/trade.OrderCustomerResponse"},
                "products": {"type": "array", "items": {"$ref": "#/definitions/trade.OrderProductResponse"}},
                "total_amount": {"type": "string"},
                "order_date": {"type": "string", "format": "date-time"},
                "created_at": {"type": "string", "format": "date-time"}
            }
        },
        "trade.CreateOrderResult": {
            "type": "object",
            "properties": {
                "order": {"$ref": "#/definitions/trade.OrderResponse"},
                "message": {"type": "string"},
                "errors": {"type": "array", "items": {"type": "string"}}
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
	Title:            "CRM API",
	Description:      "Customers, products and orders with periodic maintenance jobs",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
