// Package openapi builds the OpenAPI 3.1 document describing the KeyGate
// HTTP surface. The document is assembled programmatically so it can never
// drift from the route table without the generator changing too.
package openapi

import (
	"github.com/getkin/kin-openapi/openapi3"
)

// Generator assembles the API document. It carries no state today but keeps
// the handler wiring uniform with the other components.
type Generator struct{}

// NewGenerator creates a new Generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// Generate builds the complete OpenAPI document for the service.
func (g *Generator) Generate() *openapi3.T {
	doc := &openapi3.T{
		OpenAPI: "3.1.0",
		Info: &openapi3.Info{
			Title:       "KeyGate API",
			Description: "API key issuance, validation, and admin management.",
			Version:     "1.0.0",
		},
	}

	components := openapi3.NewComponents()
	components.Schemas = openapi3.Schemas{}
	components.SecuritySchemes = openapi3.SecuritySchemes{}
	doc.Components = &components

	doc.Components.SecuritySchemes["bearerAuth"] = &openapi3.SecuritySchemeRef{
		Value: openapi3.NewJWTSecurityScheme(),
	}

	doc.Components.Schemas["ErrorResponse"] = errorResponseSchema()
	doc.Components.Schemas["UserWithKey"] = userWithKeySchema()

	doc.Paths = openapi3.NewPaths()
	addStatusPath(doc)
	addAdminPaths(doc)
	addUserPaths(doc)
	addValidatePath(doc)

	return doc
}

func addStatusPath(doc *openapi3.T) {
	schema := &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type: &openapi3.Types{"object"},
			Properties: openapi3.Schemas{
				"message": stringSchema(),
				"status":  stringSchema(),
				"endpoints": &openapi3.SchemaRef{
					Value: &openapi3.Schema{
						Type:  &openapi3.Types{"array"},
						Items: stringSchema(),
					},
				},
			},
		},
	}
	doc.Paths.Set("/", &openapi3.PathItem{
		Get: &openapi3.Operation{
			Tags:        []string{"status"},
			Summary:     "Service status",
			OperationID: "get_status",
			Responses:   newResponses("200", "Service is running", schema),
		},
	})
}

func addAdminPaths(doc *openapi3.T) {
	credentials := &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type:     &openapi3.Types{"object"},
			Required: []string{"email", "password"},
			Properties: openapi3.Schemas{
				"email":    stringSchema(),
				"password": stringSchema(),
			},
		},
	}

	doc.Paths.Set("/admin/register", &openapi3.PathItem{
		Post: &openapi3.Operation{
			Tags:        []string{"admin"},
			Summary:     "Register an administrator",
			OperationID: "admin_register",
			RequestBody: jsonBody("Admin credentials", credentials),
			Responses: newResponses("201", "Admin registered", &openapi3.SchemaRef{
				Value: &openapi3.Schema{
					Type:       &openapi3.Types{"object"},
					Properties: openapi3.Schemas{"message": stringSchema()},
				},
			}),
		},
	})

	loginResponse := &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type: &openapi3.Types{"object"},
			Properties: openapi3.Schemas{
				"token":      stringSchema(),
				"token_type": stringSchema(),
				"expires_in": &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"integer"}, Format: "int32"}},
				"message":    stringSchema(),
			},
		},
	}
	doc.Paths.Set("/admin/login", &openapi3.PathItem{
		Post: &openapi3.Operation{
			Tags:        []string{"admin"},
			Summary:     "Log in and obtain a session token",
			OperationID: "admin_login",
			RequestBody: jsonBody("Admin credentials", credentials),
			Responses:   newResponses("200", "Login successful", loginResponse),
		},
	})

	usersResponse := &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type:  &openapi3.Types{"array"},
			Items: openapi3.NewSchemaRef("#/components/schemas/UserWithKey", userWithKeySchema().Value),
		},
	}
	doc.Paths.Set("/admin/users", &openapi3.PathItem{
		Get: &openapi3.Operation{
			Tags:        []string{"admin"},
			Summary:     "List users with their API keys",
			OperationID: "admin_list_users",
			Security:    &openapi3.SecurityRequirements{{"bearerAuth": {}}},
			Responses:   newResponses("200", "Registered users with key details", usersResponse),
		},
	})
}

func addUserPaths(doc *openapi3.T) {
	request := &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type:     &openapi3.Types{"object"},
			Required: []string{"firstName", "lastName", "email"},
			Properties: openapi3.Schemas{
				"firstName": stringSchema(),
				"lastName":  stringSchema(),
				"email":     stringSchema(),
			},
		},
	}
	response := &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type: &openapi3.Types{"object"},
			Properties: openapi3.Schemas{
				"message": stringSchema(),
				"apiKey":  stringSchema(),
				"expires": dateTimeSchema(),
			},
		},
	}
	doc.Paths.Set("/user/register", &openapi3.PathItem{
		Post: &openapi3.Operation{
			Tags:        []string{"user"},
			Summary:     "Register a user and issue an API key",
			OperationID: "user_register",
			RequestBody: jsonBody("User details", request),
			Responses:   newResponses("201", "User registered with a new key", response),
		},
	})
}

func addValidatePath(doc *openapi3.T) {
	request := &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type:     &openapi3.Types{"object"},
			Required: []string{"apiKeyToValidate"},
			Properties: openapi3.Schemas{
				"apiKeyToValidate": stringSchema(),
			},
		},
	}
	response := &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type: &openapi3.Types{"object"},
			Properties: openapi3.Schemas{
				"valid":   &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"boolean"}}},
				"message": stringSchema(),
				"status":  stringSchema(),
				"expires": dateTimeSchema(),
			},
		},
	}
	doc.Paths.Set("/validate-apikey", &openapi3.PathItem{
		Post: &openapi3.Operation{
			Tags:        []string{"validation"},
			Summary:     "Validate an API key",
			OperationID: "validate_apikey",
			RequestBody: jsonBody("Key to validate", request),
			Responses:   newResponses("200", "Key is valid and active", response),
		},
	})
}

func userWithKeySchema() *openapi3.SchemaRef {
	return &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type: &openapi3.Types{"object"},
			Properties: openapi3.Schemas{
				"user_id":    &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"integer"}, Format: "int64"}},
				"first_name": stringSchema(),
				"last_name":  stringSchema(),
				"email":      stringSchema(),
				"api_key":    stringSchema(),
				"start_date": dateTimeSchema(),
				"expires_at": dateTimeSchema(),
				"status":     stringSchema(),
			},
		},
	}
}

func errorResponseSchema() *openapi3.SchemaRef {
	return &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type: &openapi3.Types{"object"},
			Properties: openapi3.Schemas{
				"error": &openapi3.SchemaRef{
					Value: &openapi3.Schema{
						Type: &openapi3.Types{"object"},
						Properties: openapi3.Schemas{
							"code":    &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"integer"}, Format: "int32"}},
							"message": stringSchema(),
						},
					},
				},
			},
		},
	}
}

func stringSchema() *openapi3.SchemaRef {
	return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"string"}}}
}

func dateTimeSchema() *openapi3.SchemaRef {
	return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"string"}, Format: "date-time"}}
}

func jsonBody(description string, schema *openapi3.SchemaRef) *openapi3.RequestBodyRef {
	return &openapi3.RequestBodyRef{
		Value: &openapi3.RequestBody{
			Description: description,
			Required:    true,
			Content:     openapi3.NewContentWithJSONSchemaRef(schema),
		},
	}
}

// newResponses builds a response set with the given success response plus the
// standard error responses.
func newResponses(statusCode, description string, schema *openapi3.SchemaRef) *openapi3.Responses {
	responses := openapi3.NewResponses()

	successDesc := description
	responses.Set(statusCode, &openapi3.ResponseRef{
		Value: &openapi3.Response{
			Description: &successDesc,
			Content:     openapi3.NewContentWithJSONSchemaRef(schema),
		},
	})

	errorRef := openapi3.NewSchemaRef("#/components/schemas/ErrorResponse", errorResponseSchema().Value)

	badReqDesc := "Bad request"
	responses.Set("400", &openapi3.ResponseRef{
		Value: &openapi3.Response{
			Description: &badReqDesc,
			Content:     openapi3.NewContentWithJSONSchemaRef(errorRef),
		},
	})

	unauthDesc := "Unauthorized"
	responses.Set("401", &openapi3.ResponseRef{
		Value: &openapi3.Response{
			Description: &unauthDesc,
			Content:     openapi3.NewContentWithJSONSchemaRef(errorRef),
		},
	})

	forbiddenDesc := "Forbidden"
	responses.Set("403", &openapi3.ResponseRef{
		Value: &openapi3.Response{
			Description: &forbiddenDesc,
			Content:     openapi3.NewContentWithJSONSchemaRef(errorRef),
		},
	})

	serverErrDesc := "Internal server error"
	responses.Set("500", &openapi3.ResponseRef{
		Value: &openapi3.Response{
			Description: &serverErrDesc,
			Content:     openapi3.NewContentWithJSONSchemaRef(errorRef),
		},
	})

	return responses
}
