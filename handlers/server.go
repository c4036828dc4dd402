// ABOUTME: MCP server assembly
// ABOUTME: Registers the onboarding tools and resources on one server
package handlers

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewServer builds the MCP server exposing onboarding tools and resources.
func NewServer(version string, tools *OnboardingHandlers, resources *ResourceHandlers) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "onboard",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "submit_form",
		Description: "Reconcile a Billing Contact or Proposal Agreement form submission into users, contacts and clients",
	}, tools.SubmitForm)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "check_user_login",
		Description: "Look up the user id registered with a login",
	}, tools.CheckUserLogin)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_contacts",
		Description: "Find contact records by email address",
	}, tools.FindContacts)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_clients",
		Description: "Find client records by company name",
	}, tools.FindClients)

	if resources != nil {
		server.AddResource(&mcp.Resource{
			URI:         resourceScheme + "submissions",
			Name:        "submissions",
			Description: "Most recent form submissions and their outcome",
			MIMEType:    "application/json",
		}, resources.ReadResource)

		server.AddResourceTemplate(&mcp.ResourceTemplate{
			URITemplate: resourceScheme + "submissions/{id}",
			Name:        "submission",
			Description: "One logged form submission",
			MIMEType:    "application/json",
		}, resources.ReadResource)

		server.AddResource(&mcp.Resource{
			URI:         resourceScheme + "settings",
			Name:        "notification settings",
			Description: "Effective activation email settings",
			MIMEType:    "application/json",
		}, resources.ReadResource)
	}

	return server
}
