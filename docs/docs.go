// Package docs registers the OpenAPI description of the host bridge API with
// swag so gin-swagger can serve it under /swagger. Regenerate with
// `swag init -g cmd/rentald/main.go` after changing handler annotations.
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
        "/listings/{id}/rating": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Ratings"],
                "summary": "Average rating of a listing",
                "operationId": "getRating",
                "parameters": [{"type": "string", "description": "Listing ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.RatingResponse"}}}
            }
        },
        "/listings/{id}/rating/reload": {
            "post": {
                "produces": ["application/json"],
                "tags": ["Ratings"],
                "summary": "Recompute a listing's cached rating",
                "operationId": "reloadRating",
                "parameters": [{"type": "string", "description": "Listing ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.RatingResponse"}}}
            }
        },
        "/listings/rating": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Ratings"],
                "summary": "Average ratings of several listings",
                "operationId": "getRatings",
                "parameters": [{"description": "Listing ids", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.BatchRatingRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.BatchRatingResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/listings/{id}/comments": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Comments"],
                "summary": "List a listing's comments",
                "operationId": "listComments",
                "parameters": [
                    {"type": "string", "description": "Listing ID", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "default": 50, "description": "Max comments (1..200)", "name": "limit", "in": "query"},
                    {"type": "integer", "default": 0, "description": "Comments to skip", "name": "offset", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.ListCommentsResponse"}}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Comments"],
                "summary": "Submit a comment with a rating",
                "operationId": "addComment",
                "parameters": [
                    {"type": "string", "description": "Listing ID", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "Retry key", "name": "Idempotency-Key", "in": "header"},
                    {"type": "string", "description": "Calling device", "name": "X-Device-ID", "in": "header"},
                    {"description": "Comment", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.AddCommentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handlers.AddCommentResponse"}},
                    "400": {"description": "Invalid rating or text", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "503": {"description": "Comment log unavailable", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/favorites": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Favorites"],
                "summary": "List favorite listings",
                "operationId": "listFavorites",
                "parameters": [{"type": "string", "description": "Set to 'listings' to include catalog entries", "name": "expand", "in": "query"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.FavoritesResponse"}}}
            }
        },
        "/favorites/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Favorites"],
                "summary": "Is a listing a favorite",
                "operationId": "getFavorite",
                "parameters": [{"type": "string", "description": "Listing ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.FavoriteResponse"}}}
            }
        },
        "/favorites/{id}/toggle": {
            "post": {
                "produces": ["application/json"],
                "tags": ["Favorites"],
                "summary": "Toggle a listing's favorite membership",
                "operationId": "toggleFavorite",
                "parameters": [
                    {"type": "string", "description": "Listing ID", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "Retry key", "name": "Idempotency-Key", "in": "header"},
                    {"type": "string", "description": "Calling device", "name": "X-Device-ID", "in": "header"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.FavoriteResponse"}},
                    "404": {"description": "Listing not in catalog", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "503": {"description": "Favorites could not be saved", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/directions": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Directions"],
                "summary": "Plan directions to a listing, address or coordinate",
                "operationId": "directions",
                "parameters": [{"description": "Destination and preferences", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.DirectionsRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.DirectionsResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "Listing not in catalog", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "domain.Comment": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "user": {"type": "string"},
                "rating": {"type": "integer"},
                "text": {"type": "string"},
                "createdAt": {"type": "integer", "description": "ms since epoch"}
            }
        },
        "domain.Listing": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "address": {"type": "string"},
                "lat": {"type": "number"},
                "lng": {"type": "number"}
            }
        },
        "handlers.ErrorResponse": {
            "type": "object",
            "properties": {
                "request_id": {"type": "string"},
                "code": {"type": "string", "example": "invalid_rating"},
                "message": {"type": "string"}
            }
        },
        "handlers.RatingResponse": {
            "type": "object",
            "properties": {
                "listing_id": {"type": "string", "example": "p1"},
                "average": {"type": "number", "x-nullable": true, "example": 4.3},
                "has_reviews": {"type": "boolean"}
            }
        },
        "handlers.BatchRatingRequest": {
            "type": "object",
            "required": ["ids"],
            "properties": {"ids": {"type": "array", "items": {"type": "string"}}}
        },
        "handlers.BatchRatingResponse": {
            "type": "object",
            "properties": {"ratings": {"type": "object", "additionalProperties": {"type": "number", "x-nullable": true}}}
        },
        "handlers.AddCommentRequest": {
            "type": "object",
            "properties": {
                "user": {"type": "string"},
                "rating": {"type": "integer", "example": 4},
                "text": {"type": "string"}
            }
        },
        "handlers.AddCommentResponse": {
            "type": "object",
            "properties": {
                "comment": {"$ref": "#/definitions/domain.Comment"},
                "average": {"type": "number", "x-nullable": true}
            }
        },
        "handlers.ListCommentsResponse": {
            "type": "object",
            "properties": {
                "listing_id": {"type": "string"},
                "comments": {"type": "array", "items": {"$ref": "#/definitions/domain.Comment"}},
                "total": {"type": "integer"}
            }
        },
        "handlers.FavoritesResponse": {
            "type": "object",
            "properties": {
                "ids": {"type": "array", "items": {"type": "string"}},
                "listings": {"type": "array", "items": {"$ref": "#/definitions/domain.Listing"}}
            }
        },
        "handlers.FavoriteResponse": {
            "type": "object",
            "properties": {
                "listing_id": {"type": "string"},
                "favorite": {"type": "boolean"},
                "ids": {"type": "array", "items": {"type": "string"}}
            }
        },
        "handlers.DestinationBody": {
            "type": "object",
            "properties": {
                "listing_id": {"type": "string"},
                "address": {"type": "string"},
                "lat": {"type": "number"},
                "lng": {"type": "number"},
                "label": {"type": "string"}
            }
        },
        "handlers.DirectionsRequest": {
            "type": "object",
            "properties": {
                "destination": {"$ref": "#/definitions/handlers.DestinationBody"},
                "preferred": {"type": "string", "enum": ["auto", "google", "apple"]},
                "mode": {"type": "string", "enum": ["driving", "walking", "transit", "bicycling"]},
                "platform": {"type": "string", "enum": ["ios", "android"]},
                "installed": {"type": "array", "items": {"type": "string"}}
            }
        },
        "navigation.Candidate": {
            "type": "object",
            "properties": {
                "provider": {"type": "string"},
                "kind": {"type": "string", "enum": ["app", "web"]},
                "uri": {"type": "string"},
                "probe": {"type": "boolean"}
            }
        },
        "handlers.AttemptView": {
            "type": "object",
            "properties": {"uri": {"type": "string"}, "outcome": {"type": "string"}}
        },
        "handlers.OpenView": {
            "type": "object",
            "properties": {
                "uri": {"type": "string"},
                "provider": {"type": "string"},
                "fallback": {"type": "boolean"},
                "attempts": {"type": "array", "items": {"$ref": "#/definitions/handlers.AttemptView"}},
                "code": {"type": "string", "example": "navigation_failed"},
                "error": {"type": "string"}
            }
        },
        "handlers.DirectionsResponse": {
            "type": "object",
            "properties": {
                "candidates": {"type": "array", "items": {"$ref": "#/definitions/navigation.Candidate"}},
                "open": {"$ref": "#/definitions/handlers.OpenView"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Rental Core API",
	Description:      "Local data core for the rental listing app: ratings, comments, favorites and directions.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
