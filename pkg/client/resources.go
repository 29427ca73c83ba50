package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// list fetches a list endpoint and normalizes it with DecodeList.
func list[T any](ctx context.Context, c *Client, path string, q ListQuery, keys ...string) (Page[T], error) {
	var raw json.RawMessage
	if err := c.get(ctx, path, q.Values(), &raw); err != nil {
		return Page[T]{}, err
	}
	page, err := DecodeList[T](raw, keys...)
	if err != nil {
		return Page[T]{}, &APIError{Code: CodeDecode, Message: err.Error()}
	}
	return page, nil
}

// Login signs in and stores the issued token on the client.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	var out LoginResult
	if err := c.post(ctx, "/auth/login", req, &out); err != nil {
		return nil, err
	}
	c.SetToken(out.Token)
	return &out, nil
}

// Me returns the signed-in profile.
func (c *Client) Me(ctx context.Context) (*Profile, error) {
	var out Profile
	if err := c.get(ctx, "/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Categories

func (c *Client) ListCategories(ctx context.Context, q ListQuery) (Page[Category], error) {
	return list[Category](ctx, c, "/categories", q, "categories")
}

func (c *Client) CreateCategory(ctx context.Context, name string, status bool) (*Category, error) {
	var out Category
	if err := c.post(ctx, "/categories", map[string]any{"name": name, "status": status}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateCategory(ctx context.Context, id uint, name string, status *bool) (*Category, error) {
	var out Category
	if err := c.put(ctx, idPath("/categories", id), map[string]any{"name": name, "status": status}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteCategory(ctx context.Context, id uint) error {
	return c.delete(ctx, idPath("/categories", id))
}

// Roles

// RolePayload is the role create/update body.
type RolePayload struct {
	Name       string `json:"name,omitempty"`
	CategoryID uint   `json:"category_id,omitempty"`
	Status     *bool  `json:"status,omitempty"`
}

func (c *Client) ListRoles(ctx context.Context, q ListQuery) (Page[Role], error) {
	return list[Role](ctx, c, "/roles", q, "roles")
}

// ApprovalRoles lists the roles selectable in approval hierarchies.
func (c *Client) ApprovalRoles(ctx context.Context) ([]Role, error) {
	page, err := list[Role](ctx, c, "/roles/approval", ListQuery{}, "roles")
	return page.Items, err
}

func (c *Client) GetRole(ctx context.Context, id uint) (*Role, error) {
	var out Role
	if err := c.get(ctx, idPath("/roles", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateRole(ctx context.Context, p RolePayload) (*Role, error) {
	var out Role
	if err := c.post(ctx, "/roles", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateRole(ctx context.Context, id uint, p RolePayload) (*Role, error) {
	var out Role
	if err := c.put(ctx, idPath("/roles", id), p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteRole(ctx context.Context, id uint) error {
	return c.delete(ctx, idPath("/roles", id))
}

// Modules and permissions

func (c *Client) ListModules(ctx context.Context, q ListQuery) (Page[Module], error) {
	return list[Module](ctx, c, "/modules", q, "modules")
}

// ModuleTree returns parents with their sorted children.
func (c *Client) ModuleTree(ctx context.Context) ([]Module, error) {
	page, err := list[Module](ctx, c, "/modules/tree", ListQuery{}, "modules")
	return page.Items, err
}

func (c *Client) RolePermissions(ctx context.Context, roleID uint) (*RolePermissions, error) {
	var out RolePermissions
	if err := c.get(ctx, idPath("/permissions", roleID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateRolePermissions(ctx context.Context, roleID uint, grants []PermissionGrant) (*RolePermissions, error) {
	var out RolePermissions
	if err := c.put(ctx, idPath("/permissions", roleID), map[string]any{"permissions": grants}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Approval hierarchies

func (c *Client) ListHierarchies(ctx context.Context, q ListQuery) (Page[Hierarchy], error) {
	return list[Hierarchy](ctx, c, "/hierarchy", q, "items")
}

func (c *Client) HierarchyTable(ctx context.Context) (*HierarchyTable, error) {
	var out HierarchyTable
	if err := c.get(ctx, "/hierarchy/table", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) HierarchyBounds(ctx context.Context) (LevelBounds, error) {
	var out LevelBounds
	err := c.get(ctx, "/hierarchy/bounds", nil, &out)
	return out, err
}

func (c *Client) GetHierarchy(ctx context.Context, id uint) (*Hierarchy, error) {
	var out Hierarchy
	if err := c.get(ctx, idPath("/hierarchy", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateHierarchy(ctx context.Context, p HierarchyPayload) (*Hierarchy, error) {
	var out Hierarchy
	if err := c.post(ctx, "/hierarchy", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateHierarchy(ctx context.Context, id uint, p HierarchyPayload) (*Hierarchy, error) {
	var out Hierarchy
	if err := c.put(ctx, idPath("/hierarchy", id), p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SetHierarchyStatus(ctx context.Context, id uint, active bool) (*Hierarchy, error) {
	var out Hierarchy
	if err := c.patch(ctx, idPath("/hierarchy", id)+"/status", map[string]bool{"status": active}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteHierarchy(ctx context.Context, id uint) error {
	return c.delete(ctx, idPath("/hierarchy", id))
}

// Users and section allocation

func (c *Client) ListUsers(ctx context.Context, q ListQuery) (Page[User], error) {
	return list[User](ctx, c, "/users", q, "items")
}

func (c *Client) CreateUser(ctx context.Context, p UserPayload) (*User, error) {
	var out User
	if err := c.post(ctx, "/users", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateUser(ctx context.Context, id uint, p UserPayload) (*User, error) {
	var out User
	if err := c.put(ctx, idPath("/users", id), p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteUser(ctx context.Context, id uint) error {
	return c.delete(ctx, idPath("/users", id))
}

// ListAssignments returns every allocation. Paging is done by the caller.
func (c *Client) ListAssignments(ctx context.Context, roleID uint) ([]Assignment, error) {
	q := ListQuery{}
	if roleID > 0 {
		q.Filters = map[string]string{"role_id": strconv.FormatUint(uint64(roleID), 10)}
	}
	page, err := list[Assignment](ctx, c, "/assigned-permissions", q, "items")
	return page.Items, err
}

func (c *Client) GetAssignment(ctx context.Context, id uint) (*Assignment, error) {
	var out Assignment
	if err := c.get(ctx, idPath("/assigned-permissions", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Allocate merges one MCC/MPP pair and sections into the user's allocation.
func (c *Client) Allocate(ctx context.Context, req AllocateRequest) (*Assignment, error) {
	var out Assignment
	if err := c.post(ctx, "/assigned-permissions", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateAssignment(ctx context.Context, id uint, req AssignmentUpdate) (*Assignment, error) {
	var out Assignment
	if err := c.put(ctx, idPath("/assigned-permissions", id), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteAssignment(ctx context.Context, id uint) error {
	return c.delete(ctx, idPath("/assigned-permissions", id))
}

// Masters

func (c *Client) ListBanks(ctx context.Context, q ListQuery) (Page[Bank], error) {
	return list[Bank](ctx, c, "/banks", q, "banks")
}

func (c *Client) CreateBank(ctx context.Context, b Bank) (*Bank, error) {
	var out Bank
	if err := c.post(ctx, "/banks", b, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteBank(ctx context.Context, id uint) error {
	return c.delete(ctx, idPath("/banks", id))
}

func (c *Client) ListVillages(ctx context.Context, q ListQuery) (Page[Village], error) {
	return list[Village](ctx, c, "/villages", q, "villages")
}

func (c *Client) CreateVillage(ctx context.Context, v Village) (*Village, error) {
	var out Village
	if err := c.post(ctx, "/villages", v, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListMCCs(ctx context.Context, q ListQuery) (Page[OrgUnit], error) {
	return list[OrgUnit](ctx, c, "/mccs", q, "items")
}

// ListMPPs lists MPPs, restricted to one MCC when mccCode is set.
func (c *Client) ListMPPs(ctx context.Context, mccCode string, q ListQuery) (Page[OrgUnit], error) {
	if mccCode != "" {
		filters := make(map[string]string, len(q.Filters)+1)
		for k, v := range q.Filters {
			filters[k] = v
		}
		filters["mcc_code"] = mccCode
		q.Filters = filters
	}
	return list[OrgUnit](ctx, c, "/mpps", q, "items")
}

func (c *Client) ListFormSteps(ctx context.Context) ([]FormStep, error) {
	page, err := list[FormStep](ctx, c, "/form-steps", ListQuery{}, "items")
	return page.Items, err
}

// Reports

func (c *Client) Summary(ctx context.Context) (*Summary, error) {
	var out Summary
	if err := c.get(ctx, "/reports/summary", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AuditLogs(ctx context.Context, q ListQuery) (Page[AuditLog], error) {
	return list[AuditLog](ctx, c, "/audit-logs", q, "items")
}

// Resource fetches any list endpoint by its resource path as raw rows.
// The console store uses it for features without a typed method.
func (c *Client) Resource(ctx context.Context, resource string, q ListQuery) (Page[json.RawMessage], error) {
	resource = strings.Trim(strings.TrimSpace(resource), "/")
	if resource == "" {
		return Page[json.RawMessage]{}, fmt.Errorf("client: resource is required")
	}
	return list[json.RawMessage](ctx, c, "/"+resource, q, resourceKeys(resource)...)
}

// resourceKeys names the items key of endpoints that do not use "items".
func resourceKeys(resource string) []string {
	switch resource {
	case "roles", "roles/approval":
		return []string{"roles"}
	case "modules", "modules/tree":
		return []string{"modules"}
	case "categories", "banks", "villages":
		return []string{resource}
	}
	return nil
}
