// Package gateway holds the OpenAPI document served at /swagger/. It is
// kept by hand in swag init layout and can be replaced by running swag init
// against the handler annotations.
package gateway

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "AussieBroadWAN Team",
            "url": "https://github.com/aussiebroadwan/authgate"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/{provider}/callback": {
            "get": {
                "description": "Exchanges the authorization code for a token set and relays it to the application named in state.\nWhen the relay does not land the refresh token is saved to the secret file and a warning is returned.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Providers"
                ],
                "summary": "Provider OAuth Callback",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Provider name, e.g. microsoft",
                        "name": "provider",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Authorization code",
                        "name": "code",
                        "in": "query",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Application name",
                        "name": "state",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "delivery outcome",
                        "schema": {
                            "$ref": "#/definitions/relaysdk.CallbackResponse"
                        }
                    },
                    "400": {
                        "description": "error, error_description",
                        "schema": {
                            "$ref": "#/definitions/relaysdk.ErrorResponse"
                        }
                    },
                    "500": {
                        "description": "error, error_description, upstream diagnostics",
                        "schema": {
                            "$ref": "#/definitions/relaysdk.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/{provider}/authorize": {
            "get": {
                "description": "Redirects to the provider's consent page. The app parameter comes back as state on the callback.",
                "tags": [
                    "Providers"
                ],
                "summary": "Start Provider Consent",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Provider name, e.g. microsoft",
                        "name": "provider",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Application to relay the tokens to",
                        "name": "app",
                        "in": "query"
                    }
                ],
                "responses": {
                    "303": {
                        "description": "See Other"
                    },
                    "500": {
                        "description": "error, error_description",
                        "schema": {
                            "$ref": "#/definitions/relaysdk.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/magic": {
            "get": {
                "description": "Consumes a single-use magic link and redirects to the application's callback URL with a signed assertion as ?token=.\nUnknown, expired and used links all receive the same denial.",
                "tags": [
                    "Magic Links"
                ],
                "summary": "Redeem Magic Link",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Magic link token",
                        "name": "token",
                        "in": "query",
                        "required": true
                    }
                ],
                "responses": {
                    "303": {
                        "description": "See Other"
                    },
                    "400": {
                        "description": "error, error_description",
                        "schema": {
                            "$ref": "#/definitions/relaysdk.ErrorResponse"
                        }
                    },
                    "403": {
                        "description": "error, error_description",
                        "schema": {
                            "$ref": "#/definitions/relaysdk.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/admin": {
            "get": {
                "description": "With ?token= verifies a signed login assertion, sets the session cookie and redirects to /admin.\nWithout it lists principals, applications, the 20 newest magic links and the 50 newest access log entries.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Admin"
                ],
                "summary": "Administrator Login and Dashboard",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Signed login assertion",
                        "name": "token",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/relaysdk.AdminDashboard"
                        }
                    },
                    "303": {
                        "description": "See Other"
                    },
                    "401": {
                        "description": "error, error_description",
                        "schema": {
                            "$ref": "#/definitions/relaysdk.ErrorResponse"
                        }
                    },
                    "403": {
                        "description": "error, error_description",
                        "schema": {
                            "$ref": "#/definitions/relaysdk.ErrorResponse"
                        }
                    }
                }
            },
            "post": {
                "description": "Form post performing one of add_email, toggle_email, delete_email, add_app, toggle_app or create_magic_link.",
                "consumes": [
                    "application/x-www-form-urlencoded"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Admin"
                ],
                "summary": "Administrator Action",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Action name",
                        "name": "action",
                        "in": "formData",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Principal or application id",
                        "name": "id",
                        "in": "formData"
                    },
                    {
                        "type": "string",
                        "description": "Principal email",
                        "name": "email",
                        "in": "formData"
                    },
                    {
                        "type": "string",
                        "description": "Principal display name or application name",
                        "name": "name",
                        "in": "formData"
                    },
                    {
                        "type": "string",
                        "description": "Grant admin when present",
                        "name": "is_admin",
                        "in": "formData"
                    },
                    {
                        "type": "string",
                        "description": "Application callback URL",
                        "name": "callback_url",
                        "in": "formData"
                    },
                    {
                        "type": "string",
                        "description": "Application for a magic link",
                        "name": "app",
                        "in": "formData"
                    },
                    {
                        "type": "integer",
                        "description": "Magic link validity in hours",
                        "name": "hours",
                        "in": "formData"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/relaysdk.AdminActionResponse"
                        }
                    },
                    "400": {
                        "description": "error, error_description",
                        "schema": {
                            "$ref": "#/definitions/relaysdk.ErrorResponse"
                        }
                    },
                    "403": {
                        "description": "error, error_description",
                        "schema": {
                            "$ref": "#/definitions/relaysdk.ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "error, error_description",
                        "schema": {
                            "$ref": "#/definitions/relaysdk.ErrorResponse"
                        }
                    },
                    "409": {
                        "description": "error, error_description",
                        "schema": {
                            "$ref": "#/definitions/relaysdk.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/admin/logout": {
            "get": {
                "description": "Clears the session cookie.",
                "tags": [
                    "Admin"
                ],
                "summary": "Administrator Logout",
                "responses": {
                    "303": {
                        "description": "See Other"
                    }
                }
            }
        },
        "/status": {
            "get": {
                "description": "Reports which providers are configured and whether a fallback refresh token is stored. Only booleans are exposed.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Health"
                ],
                "summary": "Provider Status",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/relaysdk.StatusResponse"
                        }
                    }
                }
            }
        },
        "/livez": {
            "get": {
                "description": "Liveness check returning uptime and version. Always 200 while the process runs.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Health"
                ],
                "summary": "Health Check Endpoint",
                "responses": {
                    "200": {
                        "description": "status, uptime, version",
                        "schema": {
                            "$ref": "#/definitions/relaysdk.HealthResponse"
                        }
                    }
                }
            }
        },
        "/readyz": {
            "get": {
                "description": "Readiness check verifying the database and that the secret file is readable.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Health"
                ],
                "summary": "Readiness Check Endpoint",
                "responses": {
                    "200": {
                        "description": "status, uptime, version, checks",
                        "schema": {
                            "$ref": "#/definitions/relaysdk.HealthResponse"
                        }
                    },
                    "503": {
                        "description": "status, uptime, version, checks - service not ready",
                        "schema": {
                            "$ref": "#/definitions/relaysdk.HealthResponse"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "relaysdk.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {
                    "type": "string"
                },
                "error_description": {
                    "type": "string"
                },
                "upstream_body": {
                    "type": "string"
                },
                "upstream_status": {
                    "type": "integer"
                }
            }
        },
        "relaysdk.CallbackResponse": {
            "type": "object",
            "properties": {
                "app": {
                    "type": "string"
                },
                "delivery": {
                    "type": "string"
                },
                "persisted": {
                    "type": "boolean"
                },
                "provider": {
                    "type": "string"
                },
                "status_code": {
                    "type": "integer"
                },
                "success": {
                    "type": "boolean"
                },
                "warning": {
                    "type": "string"
                }
            }
        },
        "relaysdk.ProviderStatus": {
            "type": "object",
            "properties": {
                "configured": {
                    "type": "boolean"
                },
                "has_refresh_token": {
                    "type": "boolean"
                }
            }
        },
        "relaysdk.StatusResponse": {
            "type": "object",
            "properties": {
                "providers": {
                    "type": "object",
                    "additionalProperties": {
                        "$ref": "#/definitions/relaysdk.ProviderStatus"
                    }
                },
                "service": {
                    "type": "string"
                },
                "status": {
                    "type": "string"
                },
                "timestamp": {
                    "type": "string"
                }
            }
        },
        "relaysdk.HealthChecks": {
            "type": "object",
            "properties": {
                "database": {
                    "type": "string"
                },
                "secrets": {
                    "type": "string"
                }
            }
        },
        "relaysdk.HealthResponse": {
            "type": "object",
            "properties": {
                "checks": {
                    "$ref": "#/definitions/relaysdk.HealthChecks"
                },
                "status": {
                    "type": "string"
                },
                "uptime": {
                    "type": "string"
                },
                "version": {
                    "type": "string"
                }
            }
        },
        "relaysdk.AdminPrincipal": {
            "type": "object",
            "properties": {
                "active": {
                    "type": "boolean"
                },
                "created_at": {
                    "type": "string"
                },
                "email": {
                    "type": "string"
                },
                "id": {
                    "type": "string"
                },
                "is_admin": {
                    "type": "boolean"
                },
                "name": {
                    "type": "string"
                }
            }
        },
        "relaysdk.AdminApplication": {
            "type": "object",
            "properties": {
                "active": {
                    "type": "boolean"
                },
                "callback_url": {
                    "type": "string"
                },
                "created_at": {
                    "type": "string"
                },
                "id": {
                    "type": "string"
                },
                "name": {
                    "type": "string"
                }
            }
        },
        "relaysdk.AdminMagicLink": {
            "type": "object",
            "properties": {
                "app": {
                    "type": "string"
                },
                "created_at": {
                    "type": "string"
                },
                "created_by": {
                    "type": "string"
                },
                "email": {
                    "type": "string"
                },
                "expires_at": {
                    "type": "string"
                },
                "id": {
                    "type": "string"
                },
                "status": {
                    "type": "string"
                },
                "used_at": {
                    "type": "string"
                }
            }
        },
        "relaysdk.AdminAccessLog": {
            "type": "object",
            "properties": {
                "app": {
                    "type": "string"
                },
                "created_at": {
                    "type": "string"
                },
                "email": {
                    "type": "string"
                },
                "ip_address": {
                    "type": "string"
                },
                "method": {
                    "type": "string"
                },
                "user_agent": {
                    "type": "string"
                }
            }
        },
        "relaysdk.AdminDashboard": {
            "type": "object",
            "properties": {
                "access_logs": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/relaysdk.AdminAccessLog"
                    }
                },
                "admin": {
                    "type": "string"
                },
                "applications": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/relaysdk.AdminApplication"
                    }
                },
                "magic_links": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/relaysdk.AdminMagicLink"
                    }
                },
                "principals": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/relaysdk.AdminPrincipal"
                    }
                }
            }
        },
        "relaysdk.AdminActionResponse": {
            "type": "object",
            "properties": {
                "action": {
                    "type": "string"
                },
                "id": {
                    "type": "string"
                },
                "magic_link": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "0.1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "authgate API",
	Description:      "Personal multi-tenant authentication gateway: provider token exchange and relay, magic links and an administration surface.\n\nRelays are signed with HMAC-SHA256 over the body using the shared webhook secret (X-Auth-Signature).",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
