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
        "/setup": {
            "post": {
                "description": "Only allowed while the users table is empty.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Create the first administrator",
                "parameters": [
                    {"description": "Administrator account", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/api.SetupRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"type": "object", "additionalProperties": {}}},
                    "403": {"description": "Forbidden", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "422": {"description": "Unprocessable Entity", "schema": {"type": "object", "additionalProperties": {}}}
                }
            }
        },
        "/register": {
            "post": {
                "consumes": ["multipart/form-data", "application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Register a new user",
                "parameters": [
                    {"type": "string", "description": "Name", "name": "name", "in": "formData", "required": true},
                    {"type": "string", "description": "Email", "name": "email", "in": "formData", "required": true},
                    {"type": "string", "description": "Password (min 6)", "name": "password", "in": "formData", "required": true},
                    {"type": "file", "description": "jpg/png, max 2048 KB", "name": "profile_picture", "in": "formData"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/api.AuthResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"type": "object", "additionalProperties": {}}},
                    "502": {"description": "Bad Gateway", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Log in with email and password",
                "parameters": [
                    {"description": "Credentials", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/api.LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.AuthResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "429": {"description": "Too Many Requests", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Current user",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/user.User"}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/logout": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Revoke the current token",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/users": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "List users",
                "parameters": [{"type": "integer", "description": "Page number", "name": "page", "in": "query"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/api.listResponse"}}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data", "application/json"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Create a user (admin)",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/user.User"}},
                    "403": {"description": "Forbidden", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/users/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Show a user",
                "parameters": [{"type": "integer", "description": "User ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/user.User"}}}
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data", "application/json"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Update a user",
                "parameters": [{"type": "integer", "description": "User ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/user.User"}}}
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Delete a user and their comments (admin)",
                "parameters": [{"type": "integer", "description": "User ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}}
            }
        },
        "/users/{id}/role": {
            "patch": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Change a user's role (admin)",
                "parameters": [
                    {"type": "integer", "description": "User ID", "name": "id", "in": "path", "required": true},
                    {"description": "New role", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/api.UpdateRoleRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {}}}}
            }
        },
        "/users/{id}/info": {
            "patch": {
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data", "application/json"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Update name, email or profile picture",
                "parameters": [{"type": "integer", "description": "User ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {}}}}
            }
        },
        "/users/{id}/password": {
            "patch": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Change a password",
                "parameters": [
                    {"type": "integer", "description": "User ID", "name": "id", "in": "path", "required": true},
                    {"description": "Passwords", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/api.UpdatePasswordRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}}
            }
        },
        "/products": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "List products",
                "parameters": [{"type": "integer", "description": "Page number", "name": "page", "in": "query"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/api.listResponse"}}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data", "application/json"],
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Create a product",
                "parameters": [
                    {"type": "string", "description": "Name", "name": "name", "in": "formData", "required": true},
                    {"type": "string", "description": "Description", "name": "description", "in": "formData", "required": true},
                    {"type": "number", "description": "Price", "name": "price", "in": "formData", "required": true},
                    {"type": "integer", "description": "Stock", "name": "stock", "in": "formData", "required": true},
                    {"type": "file", "description": "Image upload", "name": "image", "in": "formData"},
                    {"type": "string", "description": "Hosted image URL", "name": "image_url", "in": "formData"}
                ],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/product.Product"}}}
            }
        },
        "/products/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Show a product",
                "parameters": [{"type": "integer", "description": "Product ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/product.Product"}}}
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data", "application/json"],
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Update a product; absent fields are kept",
                "parameters": [{"type": "integer", "description": "Product ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/product.Product"}}}
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Delete a product and its comments",
                "parameters": [{"type": "integer", "description": "Product ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}}
            }
        },
        "/comentario": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["comments"],
                "summary": "List comments, newest first",
                "parameters": [
                    {"type": "integer", "description": "Only comments on this product", "name": "producto_id", "in": "query"},
                    {"type": "integer", "description": "Only comments by this user", "name": "usuario_id", "in": "query"},
                    {"type": "integer", "description": "Page number", "name": "page", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/api.listResponse"}}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["comments"],
                "summary": "Post a comment; usuario_id defaults to the caller",
                "parameters": [
                    {"description": "Comment", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/api.CreateCommentRequest"}}
                ],
                "responses": {"201": {"description": "Created", "schema": {"type": "object", "additionalProperties": {}}}}
            }
        },
        "/comentario/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["comments"],
                "summary": "Show a comment",
                "parameters": [{"type": "integer", "description": "Comment ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {}}}}
            },
            "patch": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["comments"],
                "summary": "Edit a comment; absent fields are kept",
                "parameters": [
                    {"type": "integer", "description": "Comment ID", "name": "id", "in": "path", "required": true},
                    {"description": "Changes", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/api.UpdateCommentRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {}}}}
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["comments"],
                "summary": "Delete a comment",
                "parameters": [{"type": "integer", "description": "Comment ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}}
            }
        },
        "/stats": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["stats"],
                "summary": "Dashboard counters (admin)",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/api.StatsResponse"}}}
            }
        }
    },
    "definitions": {
        "api.AuthResponse": {
            "type": "object",
            "properties": {
                "token": {"type": "string"},
                "user": {"$ref": "#/definitions/user.User"}
            }
        },
        "api.LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "api.SetupRequest": {
            "type": "object",
            "required": ["email", "name", "password"],
            "properties": {
                "email": {"type": "string"},
                "name": {"type": "string"},
                "password": {"type": "string", "minLength": 6}
            }
        },
        "api.UpdateRoleRequest": {
            "type": "object",
            "required": ["role_id"],
            "properties": {"role_id": {"type": "integer", "enum": [1, 2, 3]}}
        },
        "api.UpdatePasswordRequest": {
            "type": "object",
            "required": ["current_password", "new_password", "new_password_confirmation"],
            "properties": {
                "current_password": {"type": "string"},
                "new_password": {"type": "string"},
                "new_password_confirmation": {"type": "string"}
            }
        },
        "api.CreateCommentRequest": {
            "type": "object",
            "required": ["contenido", "calificacion", "producto_id"],
            "properties": {
                "contenido": {"type": "string", "maxLength": 255},
                "calificacion": {"type": "integer", "minimum": 1, "maximum": 5},
                "fecha": {"type": "string"},
                "usuario_id": {"type": "integer"},
                "producto_id": {"type": "integer"}
            }
        },
        "api.UpdateCommentRequest": {
            "type": "object",
            "properties": {
                "contenido": {"type": "string", "maxLength": 255},
                "calificacion": {"type": "integer", "minimum": 1, "maximum": 5},
                "fecha": {"type": "string"},
                "usuario_id": {"type": "integer"},
                "producto_id": {"type": "integer"}
            }
        },
        "api.StatsResponse": {
            "type": "object",
            "properties": {
                "users": {"type": "integer"},
                "new_users_last_month": {"type": "integer"},
                "products": {"type": "integer"},
                "comments": {"type": "integer"},
                "average_rating": {"type": "number"}
            }
        },
        "api.listResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "data": {},
                "meta": {"$ref": "#/definitions/paging.Meta"}
            }
        },
        "paging.Meta": {
            "type": "object",
            "properties": {
                "current_page": {"type": "integer"},
                "per_page": {"type": "integer"},
                "total": {"type": "integer"},
                "last_page": {"type": "integer"}
            }
        },
        "product.Product": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "description": {"type": "string"},
                "price": {"type": "number"},
                "stock": {"type": "integer"},
                "image": {"type": "string"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "user.User": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "email": {"type": "string"},
                "role_id": {"type": "integer", "enum": [1, 2, 3]},
                "profile_picture": {"type": "string"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
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
	Title:            "go-shop API",
	Description:      "Users, products and product comments for the shop back office.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
