package mcp

import (
	"context"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/keygate/keygate/internal/service"
	"github.com/keygate/keygate/internal/store"
)

// registerTools registers all KeyGate MCP tools on the given server.
func (s *MCPServer) registerTools(srv *server.MCPServer) {

	srv.AddTool(
		mcp.NewTool("keygate_validate_key",
			mcp.WithDescription(
				"Check whether an API key is currently valid. Reports the key's "+
					"status and expiry without changing anything. An expired key is "+
					"reported invalid even when its stored status is still Active.",
			),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
			mcp.WithString("api_key",
				mcp.Required(),
				mcp.Description("The API key token to validate"),
			),
		),
		s.handleValidateKey,
	)

	srv.AddTool(
		mcp.NewTool("keygate_list_users",
			mcp.WithDescription(
				"List every registered user together with their API key token, "+
					"status, start date, and expiry. Use this to see who holds keys "+
					"and which keys are close to expiring.",
			),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
		),
		s.handleListUsers,
	)

	srv.AddTool(
		mcp.NewTool("keygate_register_user",
			mcp.WithDescription(
				"Register a new user and issue them a fresh API key. The key and "+
					"its expiry are returned once; the plaintext token is not "+
					"retrievable later except through the user listing.",
			),
			mcp.WithToolAnnotation(mutatingAnnotation()),
			mcp.WithString("first_name",
				mcp.Required(),
				mcp.Description("User's first name"),
			),
			mcp.WithString("last_name",
				mcp.Required(),
				mcp.Description("User's last name"),
			),
			mcp.WithString("email",
				mcp.Required(),
				mcp.Description("User's email address (must be unique)"),
			),
		),
		s.handleRegisterUser,
	)
}

// handleValidateKey checks a presented API key.
func (s *MCPServer) handleValidateKey(
	ctx context.Context,
	request mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {

	token, err := requireString(request, "api_key")
	if err != nil {
		return toolError("%v", err)
	}

	verdict, err := s.keySvc.Validate(ctx, token)
	if err != nil {
		return toolError("Validation failed: %v", err)
	}

	return successJSON(map[string]interface{}{
		"valid":   verdict.Valid,
		"status":  verdict.Status,
		"expires": verdict.ExpiresAt,
		"message": verdict.Message,
	})
}

// handleListUsers returns all users joined to their keys.
func (s *MCPServer) handleListUsers(
	ctx context.Context,
	request mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {

	rows, err := s.keySvc.ListUsersWithKeys(ctx)
	if err != nil {
		return toolError("Listing users failed: %v", err)
	}
	return successJSON(rows)
}

// handleRegisterUser creates a user with a new API key.
func (s *MCPServer) handleRegisterUser(
	ctx context.Context,
	request mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {

	firstName, err := requireString(request, "first_name")
	if err != nil {
		return toolError("%v", err)
	}
	lastName, err := requireString(request, "last_name")
	if err != nil {
		return toolError("%v", err)
	}
	email, err := requireString(request, "email")
	if err != nil {
		return toolError("%v", err)
	}

	issued, err := s.keySvc.Issue(ctx, firstName, lastName, email)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			return toolError("first_name, last_name and email must all be non-empty")
		case errors.Is(err, store.ErrDuplicate):
			return toolError("A user with email %q already exists", email)
		default:
			return toolError("Registration failed: %v", err)
		}
	}

	return successJSON(map[string]interface{}{
		"message": "User registered successfully",
		"api_key": issued.Token,
		"expires": issued.ExpiresAt,
	})
}
