package permissions

// Console module routes referenced by the API route guards.
const (
	RouteDashboard = "dashboard"

	RouteAdministration      = "administration"
	RouteRoles               = "roles"
	RouteCategories          = "categories"
	RouteModules             = "modules"
	RoutePermissions         = "permissions"
	RouteApprovalHierarchy   = "approval-hierarchy"
	RouteUsers               = "users"
	RouteAssignedPermissions = "assigned-permissions"
	RouteAuditLogs           = "audit-logs"

	RouteMasters   = "masters"
	RouteBanks     = "banks"
	RouteVillages  = "villages"
	RouteMCCs      = "mccs"
	RouteMPPs      = "mpps"
	RouteFormSteps = "form-steps"

	RouteMasterData       = "master-data"
	RouteMasterDataImport = "master-data-import"
	RouteMasterDataExport = "master-data-export"

	RouteReports        = "reports"
	RouteReportsSummary = "reports-summary"
)

func init() {
	modules := []*Module{
		{Route: RouteDashboard, Name: "Dashboard", SortOrder: 1},

		{Route: RouteAdministration, Name: "Administration", SortOrder: 2},
		{Route: RouteCategories, Name: "Categories", Parent: RouteAdministration, SortOrder: 1},
		{Route: RouteRoles, Name: "Roles", Parent: RouteAdministration, SortOrder: 2, DependsOn: []string{RouteCategories}},
		{Route: RouteModules, Name: "Modules", Parent: RouteAdministration, SortOrder: 3},
		{Route: RoutePermissions, Name: "Permissions", Parent: RouteAdministration, SortOrder: 4, DependsOn: []string{RouteRoles, RouteModules}},
		{Route: RouteApprovalHierarchy, Name: "Approval Hierarchy", Parent: RouteAdministration, SortOrder: 5, DependsOn: []string{RouteRoles}},
		{Route: RouteUsers, Name: "Users", Parent: RouteAdministration, SortOrder: 6, DependsOn: []string{RouteRoles}},
		{Route: RouteAssignedPermissions, Name: "Section Allocation", Parent: RouteAdministration, SortOrder: 7, DependsOn: []string{RouteUsers}},
		{Route: RouteAuditLogs, Name: "Audit Log", Parent: RouteAdministration, SortOrder: 8},

		{Route: RouteMasters, Name: "Masters", SortOrder: 3},
		{Route: RouteBanks, Name: "Banks", Parent: RouteMasters, SortOrder: 1},
		{Route: RouteVillages, Name: "Villages", Parent: RouteMasters, SortOrder: 2},
		{Route: RouteMCCs, Name: "MCC", Parent: RouteMasters, SortOrder: 3},
		{Route: RouteMPPs, Name: "MPP", Parent: RouteMasters, SortOrder: 4, DependsOn: []string{RouteMCCs}},
		{Route: RouteFormSteps, Name: "Form Sections", Parent: RouteMasters, SortOrder: 5},

		{Route: RouteMasterData, Name: "Master Data", SortOrder: 4},
		{Route: RouteMasterDataImport, Name: "Import", Parent: RouteMasterData, SortOrder: 1},
		{Route: RouteMasterDataExport, Name: "Export", Parent: RouteMasterData, SortOrder: 2},

		{Route: RouteReports, Name: "Reports", SortOrder: 5},
		{Route: RouteReportsSummary, Name: "Summary", Parent: RouteReports, SortOrder: 1},
	}

	for _, mod := range modules {
		if err := Register(mod); err != nil {
			panic(err)
		}
	}
}
