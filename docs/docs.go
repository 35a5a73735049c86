// Package docs holds the OpenAPI description served at /swagger/*.
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
        "/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Exchange credentials for tokens",
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/handler.Credentials"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.TokenResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Issue a new access token",
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/handler.RefreshRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.TokenResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Revoke the refresh token and the current access token",
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/handler.RefreshRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.MessageResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/cats": {
            "get": {
                "produces": ["application/json"],
                "tags": ["cats"],
                "summary": "List cats",
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.Cat"}}}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json", "multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["cats"],
                "summary": "Create cat",
                "parameters": [{"in": "body", "name": "cat", "required": true, "schema": {"$ref": "#/definitions/handler.CreateCatRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.MessageResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/cats/area": {
            "get": {
                "produces": ["application/json"],
                "tags": ["cats"],
                "summary": "List cats inside a bounding box",
                "parameters": [
                    {"type": "string", "description": "lat,lng", "name": "topRight", "in": "query", "required": true},
                    {"type": "string", "description": "lat,lng", "name": "bottomLeft", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.Cat"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/cats/user": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["cats"],
                "summary": "List cats owned by the caller",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.Cat"}}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/cats/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["cats"],
                "summary": "Get cat by id",
                "parameters": [{"type": "string", "description": "Cat ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Cat"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["cats"],
                "summary": "Update one of the caller's cats",
                "parameters": [
                    {"type": "string", "description": "Cat ID", "name": "id", "in": "path", "required": true},
                    {"in": "body", "name": "cat", "required": true, "schema": {"$ref": "#/definitions/handler.UpdateCatRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.MessageResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["cats"],
                "summary": "Delete one of the caller's cats",
                "parameters": [{"type": "string", "description": "Cat ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.MessageResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/cats/{id}/admin": {
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["cats"],
                "summary": "Update any cat",
                "parameters": [
                    {"type": "string", "description": "Cat ID", "name": "id", "in": "path", "required": true},
                    {"in": "body", "name": "cat", "required": true, "schema": {"$ref": "#/definitions/handler.AdminUpdateCatRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.MessageResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["cats"],
                "summary": "Delete any cat",
                "parameters": [{"type": "string", "description": "Cat ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.MessageResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/users": {
            "get": {
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "List users",
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.UserOutput"}}}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Create user",
                "parameters": [{"in": "body", "name": "user", "required": true, "schema": {"$ref": "#/definitions/handler.CreateUserRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.MessageResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/users/current": {
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Update the caller's account",
                "parameters": [{"in": "body", "name": "user", "required": true, "schema": {"$ref": "#/definitions/handler.UpdateUserRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.MessageResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Delete the caller's account",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.MessageResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/users/token": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Describe the caller's token",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.UserOutput"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/users/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Get user by id",
                "parameters": [{"type": "string", "description": "User ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.UserOutput"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "errors.ErrorResponse": {
            "type": "object",
            "properties": {"message": {"type": "string"}, "status": {"type": "integer"}}
        },
        "geo.Location": {
            "type": "object",
            "properties": {"type": {"type": "string", "example": "Point"}, "coordinates": {"type": "array", "items": {"type": "number"}}}
        },
        "handler.TokenResponse": {
            "type": "object",
            "properties": {"access_token": {"type": "string"}, "refresh_token": {"type": "string"}, "user": {"$ref": "#/definitions/model.UserOutput"}}
        },
        "handler.Credentials": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {"email": {"type": "string"}, "password": {"type": "string"}}
        },
        "handler.RefreshRequest": {
            "type": "object",
            "required": ["refresh_token"],
            "properties": {"refresh_token": {"type": "string"}}
        },
        "handler.MessageResponse": {
            "type": "object",
            "properties": {"message": {"type": "string"}, "data": {}}
        },
        "handler.CreateCatRequest": {
            "type": "object",
            "required": ["cat_name", "weight", "filename", "birthdate"],
            "properties": {
                "cat_name": {"type": "string"},
                "weight": {"type": "number"},
                "filename": {"type": "string"},
                "birthdate": {"type": "string", "example": "2020-02-02"},
                "location": {"$ref": "#/definitions/geo.Location"},
                "owner": {"type": "string"}
            }
        },
        "handler.UpdateCatRequest": {
            "type": "object",
            "properties": {
                "cat_name": {"type": "string"},
                "weight": {"type": "number"},
                "filename": {"type": "string"},
                "birthdate": {"type": "string"},
                "location": {"$ref": "#/definitions/geo.Location"}
            }
        },
        "handler.AdminUpdateCatRequest": {
            "type": "object",
            "properties": {
                "cat_name": {"type": "string"},
                "weight": {"type": "number"},
                "filename": {"type": "string"},
                "birthdate": {"type": "string"},
                "location": {"$ref": "#/definitions/geo.Location"},
                "owner": {"type": "string"}
            }
        },
        "handler.CreateUserRequest": {
            "type": "object",
            "required": ["user_name", "email", "password"],
            "properties": {
                "user_name": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string", "minLength": 6},
                "role": {"type": "string", "enum": ["user", "admin"]}
            }
        },
        "handler.UpdateUserRequest": {
            "type": "object",
            "properties": {"user_name": {"type": "string"}, "email": {"type": "string"}, "password": {"type": "string", "minLength": 6}}
        },
        "model.Cat": {
            "type": "object",
            "properties": {
                "_id": {"type": "string"},
                "cat_name": {"type": "string"},
                "weight": {"type": "number"},
                "filename": {"type": "string"},
                "birthdate": {"type": "string"},
                "location": {"$ref": "#/definitions/geo.Location"},
                "owner": {}
            }
        },
        "model.UserOutput": {
            "type": "object",
            "properties": {"_id": {"type": "string"}, "user_name": {"type": "string"}, "email": {"type": "string"}}
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
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "Cat Registry API",
	Description:      "Cats owned by users, with geospatial search and JWT authentication.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
