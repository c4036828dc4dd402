// ABOUTME: MCP resource handlers for the submission log and notification settings
// ABOUTME: Serves read-only JSON under onboarding:// URIs
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/whitefoxstudios/onboarding/models"
)

const resourceScheme = "onboarding://"

// SubmissionReader reads the submission log.
type SubmissionReader interface {
	Get(ctx context.Context, id string) (*models.SubmissionRecord, error)
	List(ctx context.Context, status string, limit int) ([]models.SubmissionRecord, error)
}

// SettingsReader reads the effective activation email settings.
type SettingsReader interface {
	NotificationSettings(ctx context.Context) (models.NotificationSettings, error)
}

type ResourceHandlers struct {
	submissions SubmissionReader
	settings    SettingsReader
}

func NewResourceHandlers(submissions SubmissionReader, settings SettingsReader) *ResourceHandlers {
	return &ResourceHandlers{submissions: submissions, settings: settings}
}

// ReadResource handles resource read requests
func (h *ResourceHandlers) ReadResource(ctx context.Context, request *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := request.Params.URI
	if !strings.HasPrefix(uri, resourceScheme) {
		return nil, fmt.Errorf("invalid URI scheme: expected %s", resourceScheme)
	}

	parts := strings.Split(strings.TrimPrefix(uri, resourceScheme), "/")
	switch parts[0] {
	case "submissions":
		if len(parts) == 1 || parts[1] == "" {
			records, err := h.submissions.List(ctx, "", 0)
			if err != nil {
				return nil, fmt.Errorf("failed to list submissions: %w", err)
			}
			return jsonResource(uri, records)
		}
		record, err := h.submissions.Get(ctx, parts[1])
		if err != nil {
			return nil, fmt.Errorf("failed to fetch submission: %w", err)
		}
		return jsonResource(uri, record)

	case "settings":
		settings, err := h.settings.NotificationSettings(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to read settings: %w", err)
		}
		return jsonResource(uri, settings)

	default:
		return nil, fmt.Errorf("unknown resource: %s", parts[0])
	}
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource: %w", err)
	}
	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}}, nil
}
