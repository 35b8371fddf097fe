// Governing: SPEC-0005 REQ "API Response Structures", ADR-0008
package api

import "time"

// ErrorResponse documents the standard error body for swagger.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// --- Workspace types ---

// CreateWorkspaceRequest is the request body for POST /api/v1/workspaces.
type CreateWorkspaceRequest struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// UpdateWorkspaceRequest is the request body for PATCH /api/v1/workspaces/{id}.
type UpdateWorkspaceRequest struct {
	Name string `json:"name"`
}

// WorkspaceResponse is the JSON representation of a workspace. The role
// field is the caller's role in that workspace, when known.
type WorkspaceResponse struct {
	ID        string    `json:"id"`
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	Role      string    `json:"role,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WorkspaceListResponse is the response for workspace list endpoints.
type WorkspaceListResponse struct {
	Workspaces []WorkspaceResponse `json:"workspaces"`
}

// --- Member types ---

// InviteMemberRequest is the request body for POST /api/v1/workspaces/{id}/members.
// Role may be "member" or "admin"; owners are created only with the workspace.
type InviteMemberRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// UpdateMemberRoleRequest is the request body for PATCH /api/v1/workspaces/{id}/members/{uid}.
type UpdateMemberRoleRequest struct {
	Role string `json:"role"`
}

// MemberResponse is the JSON representation of a workspace member.
type MemberResponse struct {
	UserID      string    `json:"user_id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Role        string    `json:"role"`
	JoinedAt    time.Time `json:"joined_at"`
}

// MemberListResponse is the response for member list endpoints.
type MemberListResponse struct {
	Members []MemberResponse `json:"members"`
}

// --- Link types ---

// CreateLinkRequest is the request body for POST /api/v1/workspaces/{id}/links.
type CreateLinkRequest struct {
	Slug        string   `json:"slug"`
	URL         string   `json:"url"`
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// UpdateLinkRequest is the request body for PUT /api/v1/workspaces/{id}/links/{lid}.
// Slug is intentionally omitted (immutable).
type UpdateLinkRequest struct {
	URL         string   `json:"url"`
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// LinkResponse is the JSON representation of a single link.
type LinkResponse struct {
	ID          string    `json:"id"`
	WorkspaceID string    `json:"workspace_id"`
	Slug        string    `json:"slug"`
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedBy   string    `json:"created_by,omitempty"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// LinkListResponse is the response for link list endpoints.
type LinkListResponse struct {
	Links []LinkResponse `json:"links"`
}

// BulkDeleteRequest is the request body for POST /api/v1/workspaces/{id}/links/bulk-delete.
type BulkDeleteRequest struct {
	IDs []string `json:"ids"`
}

// BulkDeleteResponse reports how many links were actually removed.
type BulkDeleteResponse struct {
	Deleted int64 `json:"deleted"`
}

// --- Tag types ---

// CreateTagRequest is the request body for POST /api/v1/workspaces/{id}/tags.
type CreateTagRequest struct {
	Name string `json:"name"`
}

// TagResponse is the JSON representation of a tag.
type TagResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TagListResponse is the response for tag list endpoints.
type TagListResponse struct {
	Tags []TagResponse `json:"tags"`
}

// --- Token types ---

// CreateTokenRequest is the request body for POST /api/v1/tokens.
type CreateTokenRequest struct {
	Name      string     `json:"name"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// TokenResponse is the JSON representation of an API token.
type TokenResponse struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	LastUsedAt *time.Time `json:"last_used_at"`
	ExpiresAt  *time.Time `json:"expires_at"`
	CreatedAt  time.Time  `json:"created_at"`
}

// TokenCreatedResponse is the one response that carries the plaintext token.
type TokenCreatedResponse struct {
	TokenResponse
	Token string `json:"token"`
}

// TokenListResponse is the response for token list endpoints.
type TokenListResponse struct {
	Tokens []TokenResponse `json:"tokens"`
}
