package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/linkdeck/linkdeck/internal/api"
	"github.com/linkdeck/linkdeck/internal/permissions"
)

func TestWorkspaces_List_OK(t *testing.T) {
	env := newTestEnv(t)
	user := seedUser(t, env, "alice@example.com")
	token := seedToken(t, env, user.ID)
	seedWorkspace(t, env, "acme", user.ID)

	req := httptest.NewRequest("GET", "/workspaces", nil)
	authRequest(req, token)
	rec := httptest.NewRecorder()
	env.Router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var resp api.WorkspaceListResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Workspaces) != 1 {
		t.Errorf("len(workspaces) = %d, want 1", len(resp.Workspaces))
	}
}

func TestWorkspaces_List_Unauthenticated(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest("GET", "/workspaces", nil)
	rec := httptest.NewRecorder()
	env.Router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestWorkspaces_Create_CallerBecomesOwner(t *testing.T) {
	env := newTestEnv(t)
	user := seedUser(t, env, "alice@example.com")
	token := seedToken(t, env, user.ID)

	body := `{"slug":"acme","name":"Acme Inc"}`
	req := httptest.NewRequest("POST", "/workspaces", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	authRequest(req, token)
	rec := httptest.NewRecorder()
	env.Router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}

	var resp api.WorkspaceResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Slug != "acme" {
		t.Errorf("slug = %q, want %q", resp.Slug, "acme")
	}
	if resp.Role != "owner" {
		t.Errorf("role = %q, want %q", resp.Role, "owner")
	}
}

func TestWorkspaces_Create_DuplicateSlug(t *testing.T) {
	env := newTestEnv(t)
	user := seedUser(t, env, "alice@example.com")
	token := seedToken(t, env, user.ID)
	seedWorkspace(t, env, "acme", user.ID)

	body := `{"slug":"acme","name":"Another"}`
	req := httptest.NewRequest("POST", "/workspaces", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	authRequest(req, token)
	rec := httptest.NewRecorder()
	env.Router.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d; body: %s", rec.Code, http.StatusConflict, rec.Body.String())
	}
}

func TestWorkspaces_Get_NonMemberForbidden(t *testing.T) {
	env := newTestEnv(t)
	owner := seedUser(t, env, "alice@example.com")
	outsider := seedUser(t, env, "bob@example.com")
	token := seedToken(t, env, outsider.ID)
	ws := seedWorkspace(t, env, "acme", owner.ID)

	req := httptest.NewRequest("GET", "/workspaces/"+ws.ID, nil)
	authRequest(req, token)
	rec := httptest.NewRecorder()
	env.Router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, http.StatusForbidden, rec.Body.String())
	}

	var errResp api.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&errResp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if errResp.Error != "You do not have access to this workspace" {
		t.Errorf("error = %q", errResp.Error)
	}
	if errResp.Code != "FORBIDDEN" {
		t.Errorf("code = %q, want FORBIDDEN", errResp.Code)
	}
}

func TestWorkspaces_Update_MemberDenied(t *testing.T) {
	env := newTestEnv(t)
	owner := seedUser(t, env, "alice@example.com")
	member := seedUser(t, env, "bob@example.com")
	token := seedToken(t, env, member.ID)
	ws := seedWorkspace(t, env, "acme", owner.ID)
	addMember(t, env, member.ID, ws.ID, "member")

	body := `{"name":"Renamed"}`
	req := httptest.NewRequest("PATCH", "/workspaces/"+ws.ID, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	authRequest(req, token)
	rec := httptest.NewRecorder()
	env.Router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, http.StatusForbidden, rec.Body.String())
	}

	var errResp api.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&errResp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if want := permissions.ErrorMessage(permissions.PermWorkspaceUpdate); errResp.Error != want {
		t.Errorf("error = %q, want %q", errResp.Error, want)
	}
}

func TestWorkspaces_Update_AdminAllowed(t *testing.T) {
	env := newTestEnv(t)
	owner := seedUser(t, env, "alice@example.com")
	admin := seedUser(t, env, "bob@example.com")
	token := seedToken(t, env, admin.ID)
	ws := seedWorkspace(t, env, "acme", owner.ID)
	addMember(t, env, admin.ID, ws.ID, "admin")

	body := `{"name":"Renamed"}`
	req := httptest.NewRequest("PATCH", "/workspaces/"+ws.ID, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	authRequest(req, token)
	rec := httptest.NewRecorder()
	env.Router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var resp api.WorkspaceResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Name != "Renamed" {
		t.Errorf("name = %q, want %q", resp.Name, "Renamed")
	}
}

func TestWorkspaces_Delete_AdminDenied(t *testing.T) {
	env := newTestEnv(t)
	owner := seedUser(t, env, "alice@example.com")
	admin := seedUser(t, env, "bob@example.com")
	token := seedToken(t, env, admin.ID)
	ws := seedWorkspace(t, env, "acme", owner.ID)
	addMember(t, env, admin.ID, ws.ID, "admin")

	req := httptest.NewRequest("DELETE", "/workspaces/"+ws.ID, nil)
	authRequest(req, token)
	rec := httptest.NewRecorder()
	env.Router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, http.StatusForbidden, rec.Body.String())
	}

	var errResp api.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&errResp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if errResp.Error != "Only workspace owners can perform this action" {
		t.Errorf("error = %q", errResp.Error)
	}
}

func TestWorkspaces_Delete_OwnerAllowed(t *testing.T) {
	env := newTestEnv(t)
	owner := seedUser(t, env, "alice@example.com")
	token := seedToken(t, env, owner.ID)
	ws := seedWorkspace(t, env, "acme", owner.ID)

	req := httptest.NewRequest("DELETE", "/workspaces/"+ws.ID, nil)
	authRequest(req, token)
	rec := httptest.NewRecorder()
	env.Router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, http.StatusNoContent, rec.Body.String())
	}

	// Deleted workspaces stop granting access entirely.
	req = httptest.NewRequest("GET", "/workspaces/"+ws.ID, nil)
	authRequest(req, token)
	rec = httptest.NewRecorder()
	env.Router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status after delete = %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestWorkspaces_Permissions_MemberSnapshot(t *testing.T) {
	env := newTestEnv(t)
	owner := seedUser(t, env, "alice@example.com")
	member := seedUser(t, env, "bob@example.com")
	token := seedToken(t, env, member.ID)
	ws := seedWorkspace(t, env, "acme", owner.ID)
	addMember(t, env, member.ID, ws.ID, "member")

	req := httptest.NewRequest("GET", "/workspaces/"+ws.ID+"/permissions", nil)
	authRequest(req, token)
	rec := httptest.NewRecorder()
	env.Router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var snap permissions.Snapshot
	if err := json.NewDecoder(rec.Body).Decode(&snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.Role != permissions.RoleMember {
		t.Errorf("role = %q, want member", snap.Role)
	}
	if snap.IsLoading {
		t.Error("expected isLoading = false")
	}
	if !snap.IsMember {
		t.Error("expected isMember = true")
	}
	if snap.CanManageWorkspace {
		t.Error("member must not manage the workspace")
	}
	if !snap.Permissions[permissions.PermLinksCreate] {
		t.Error("member should hold links:create")
	}
	if snap.Permissions[permissions.PermMembersInvite] {
		t.Error("member must not hold members:invite")
	}
}

func TestWorkspaces_Permissions_NonMemberNoAccess(t *testing.T) {
	env := newTestEnv(t)
	owner := seedUser(t, env, "alice@example.com")
	outsider := seedUser(t, env, "bob@example.com")
	token := seedToken(t, env, outsider.ID)
	ws := seedWorkspace(t, env, "acme", owner.ID)

	req := httptest.NewRequest("GET", "/workspaces/"+ws.ID+"/permissions", nil)
	authRequest(req, token)
	rec := httptest.NewRecorder()
	env.Router.ServeHTTP(rec, req)

	// Non-members get a resolved no-access snapshot, not an error.
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var snap permissions.Snapshot
	if err := json.NewDecoder(rec.Body).Decode(&snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.Role != permissions.RoleNone {
		t.Errorf("role = %q, want none", snap.Role)
	}
	if snap.IsMember || snap.IsAdmin || snap.IsOwner {
		t.Error("non-member snapshot must deny all role predicates")
	}
	for p, held := range snap.Permissions {
		if held {
			t.Errorf("non-member snapshot grants %q", p)
		}
	}
}
