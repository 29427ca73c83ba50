package client

import "time"

// Category groups roles (approval, web, field users).
type Category struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Status    bool      `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Role is a user role within one category.
type Role struct {
	ID         uint      `json:"id"`
	Name       string    `json:"name"`
	CategoryID uint      `json:"category_id"`
	Category   *Category `json:"category,omitempty"`
	Status     bool      `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

// CategoryName returns the resolved category label, or "" when not loaded.
func (r Role) CategoryName() string {
	if r.Category == nil {
		return ""
	}
	return r.Category.Name
}

// Module is a node of the two-level navigation tree.
type Module struct {
	ID        uint     `json:"id"`
	Name      string   `json:"name"`
	Route     string   `json:"route"`
	ParentID  *uint    `json:"parent_id"`
	SortOrder int      `json:"sort_order"`
	Status    bool     `json:"status"`
	Children  []Module `json:"children,omitempty"`
}

// RolePermissions lists the modules granted to a role.
type RolePermissions struct {
	RoleID    uint   `json:"role_id"`
	ModuleIDs []uint `json:"module_ids"`
}

// PermissionGrant toggles one module for a role.
type PermissionGrant struct {
	ModuleID uint `json:"module_id"`
	Status   bool `json:"status"`
}

// HierarchyLevel binds a level number to a role.
type HierarchyLevel struct {
	Level  int   `json:"level"`
	RoleID uint  `json:"role_id"`
	Role   *Role `json:"role,omitempty"`
}

// Hierarchy is an approval chain.
type Hierarchy struct {
	ID        uint             `json:"id"`
	Level     int              `json:"level"`
	Status    bool             `json:"status"`
	Levels    []HierarchyLevel `json:"levels"`
	CreatedAt time.Time        `json:"created_at"`
}

// HierarchyPayload is the create/update body.
type HierarchyPayload struct {
	Level  int              `json:"level"`
	Levels []HierarchyLevel `json:"levels"`
	Status *bool            `json:"status,omitempty"`
}

// HierarchyTable is the server-rendered hierarchy table.
type HierarchyTable struct {
	Columns []struct {
		Key   string `json:"key"`
		Title string `json:"title"`
	} `json:"columns"`
	Rows []struct {
		ID     uint     `json:"id"`
		Cells  []string `json:"cells"`
		Status struct {
			Label      string `json:"label"`
			Color      string `json:"color"`
			Background string `json:"background"`
		} `json:"status"`
	} `json:"rows"`
}

// LevelBounds is the server's accepted level-count range.
type LevelBounds struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// User is an operator account.
type User struct {
	ID           uint       `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Mobile       string     `json:"mobile"`
	RoleID       *uint      `json:"role_id"`
	Role         *Role      `json:"role,omitempty"`
	IsSuperAdmin bool       `json:"is_super_admin"`
	Status       bool       `json:"status"`
	LastLoginAt  *time.Time `json:"last_login_at"`
}

// UserPayload is the create/update body.
type UserPayload struct {
	Name     string  `json:"name,omitempty"`
	Email    string  `json:"email,omitempty"`
	Mobile   *string `json:"mobile,omitempty"`
	Password string  `json:"password,omitempty"`
	RoleID   *uint   `json:"role_id,omitempty"`
	Status   *bool   `json:"status,omitempty"`
}

// Assignment is a user's section allocation.
type Assignment struct {
	ID          uint     `json:"id"`
	UserID      uint     `json:"user_id"`
	UserName    string   `json:"user_name"`
	RoleID      uint     `json:"role_id"`
	RoleName    string   `json:"role_name"`
	MCCCodes    []string `json:"mcc_codes"`
	MPPCodes    []string `json:"mpp_codes"`
	FormStepIDs []uint   `json:"formsteps_ids"`
	AssignedMCC string   `json:"assigned_mcc"`
	AssignedMPP string   `json:"assigned_mpp"`
	Status      bool     `json:"status"`
}

// AllocateRequest is one submission of the section allocation form.
type AllocateRequest struct {
	Role       uint   `json:"role"`
	UserID     uint   `json:"user_id"`
	SectionIDs []uint `json:"section_ids"`
	MCCCode    string `json:"mcc_code"`
	MPPCode    string `json:"mpp_code"`
}

// AssignmentUpdate replaces an allocation's sets.
type AssignmentUpdate struct {
	RoleID     uint     `json:"role_id"`
	MCCCodes   []string `json:"mcc_codes"`
	MPPCodes   []string `json:"mpp_codes"`
	SectionIDs []uint   `json:"formsteps_ids"`
	Status     *bool    `json:"status,omitempty"`
}

// Bank is a payout bank branch.
type Bank struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Branch   string `json:"branch"`
	IFSCCode string `json:"ifsc_code"`
	Status   bool   `json:"status"`
}

// Village is a member village.
type Village struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	Code    string `json:"code"`
	MCCCode string `json:"mcc_code"`
	Status  bool   `json:"status"`
}

// OrgUnit is an MCC or MPP. MCCCode is empty for MCCs.
type OrgUnit struct {
	ID      uint   `json:"id"`
	Code    string `json:"code"`
	Name    string `json:"name"`
	MCCCode string `json:"mcc_code,omitempty"`
	Status  bool   `json:"status"`
}

// FormStep is an allocatable member-form section.
type FormStep struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	SortOrder int    `json:"sort_order"`
	Status    bool   `json:"status"`
}

// LoginRequest is the login form.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      User      `json:"user"`
	Role      string    `json:"role"`
	Redirect  string    `json:"redirect"`
}

// Profile is the signed-in user with granted module routes.
type Profile struct {
	User    User     `json:"user"`
	Modules []string `json:"modules"`
}

// EntityCount is one row of the summary report.
type EntityCount struct {
	Entity   string `json:"entity"`
	Total    int64  `json:"total"`
	Active   int64  `json:"active"`
	Inactive int64  `json:"inactive"`
}

// Summary is the dashboard report.
type Summary struct {
	GeneratedAt time.Time     `json:"generated_at"`
	Entities    []EntityCount `json:"entities"`
}

// AuditLog is one recorded action.
type AuditLog struct {
	ID        uint      `json:"id"`
	UserID    *uint     `json:"user_id"`
	Action    string    `json:"action"`
	Resource  string    `json:"resource"`
	Result    string    `json:"result"`
	IPAddress string    `json:"ip_address"`
	Metadata  string    `json:"metadata"`
	CreatedAt time.Time `json:"created_at"`
}

// RowError reports why one spreadsheet row was rejected.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportResult summarizes a master-data import.
type ImportResult struct {
	Type     string     `json:"type"`
	Inserted int        `json:"inserted"`
	Updated  int        `json:"updated"`
	Failed   int        `json:"failed"`
	Errors   []RowError `json:"errors"`
}

// MasterDataType describes an importable master.
type MasterDataType struct {
	Type    string `json:"type"`
	Columns []struct {
		Header   string `json:"header"`
		Field    string `json:"field"`
		Required bool   `json:"required"`
	} `json:"columns"`
}
