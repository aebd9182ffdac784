package domain

// Role is a named bundle of permissions. The set is fixed: roles carry a base
// tier plus optional paid upgrades whose permission sets are strict supersets
// of the tier below them.
type Role string

const (
	RoleAdmin           Role = "admin"
	RoleCoach           Role = "coach"
	RoleCoachPro        Role = "coach-pro"
	RoleCoachEnterprise Role = "coach-enterprise"
	RoleUser            Role = "user"
	RoleUserPremium     Role = "user-premium"
)

// Permission names gate individual actions. They are matched as exact strings;
// anything unknown is denied.
const (
	PermManageUsers         = "manage_users"
	PermManageCoaches       = "manage_coaches"
	PermManageSubscriptions = "manage_subscriptions"
	PermViewAnalytics       = "view_analytics"
	PermManageSettings      = "manage_settings"
	PermExportData          = "export_data"

	PermViewProfile    = "view_profile"
	PermEditProfile    = "edit_profile"
	PermManageSchedule = "manage_schedule"
	PermViewClients    = "view_clients"
	PermMessageClients = "message_clients"
	PermViewReports    = "view_reports"

	PermBookSession   = "book_session"
	PermViewSessions  = "view_sessions"
	PermCancelSession = "cancel_session"
	PermRateCoach     = "rate_coach"
	PermViewHistory   = "view_history"

	PermAccessAPI = "access_api"
	PermAccessWeb = "access_web"
)

var coachPerms = []string{
	PermAccessAPI,
	PermViewProfile,
	PermEditProfile,
	PermManageSchedule,
	PermViewClients,
	PermMessageClients,
	PermViewReports,
}

var userPerms = []string{
	PermAccessAPI,
	PermBookSession,
	PermViewSessions,
	PermCancelSession,
	PermRateCoach,
	PermViewHistory,
}

// rolePermissions is the static role -> permission table. Upgraded tiers are
// built from the tier below so the superset invariant holds by construction.
var rolePermissions = map[Role]map[string]struct{}{
	RoleAdmin: permSet(
		PermManageUsers, PermManageCoaches, PermManageSubscriptions,
		PermViewAnalytics, PermManageSettings, PermExportData,
		PermViewProfile, PermEditProfile, PermManageSchedule,
		PermViewClients, PermMessageClients, PermViewReports,
		PermBookSession, PermViewSessions, PermCancelSession,
		PermRateCoach, PermViewHistory,
		PermAccessAPI, PermAccessWeb,
	),
	RoleCoach:           permSet(coachPerms...),
	RoleCoachPro:        permSet(append(coachPerms, PermViewAnalytics, PermExportData)...),
	RoleCoachEnterprise: permSet(append(coachPerms, PermViewAnalytics, PermExportData, PermManageSettings)...),
	RoleUser:            permSet(userPerms...),
	RoleUserPremium:     permSet(append(userPerms, PermViewReports)...),
}

func permSet(perms ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return set
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := rolePermissions[r]
	return ok
}

// HasPermission looks up the static role table. Unknown roles and unknown
// permission names answer false: this is an authorization gate and the safe
// default is deny.
func (r Role) HasPermission(permission string) bool {
	perms, ok := rolePermissions[r]
	if !ok {
		return false
	}
	_, ok = perms[permission]
	return ok
}

// Permissions returns the permission names granted to r, for introspection
// endpoints. The returned slice is a copy.
func (r Role) Permissions() []string {
	perms, ok := rolePermissions[r]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(perms))
	for p := range perms {
		out = append(out, p)
	}
	return out
}

// Roles returns every known role.
func Roles() []Role {
	return []Role{
		RoleAdmin,
		RoleCoach, RoleCoachPro, RoleCoachEnterprise,
		RoleUser, RoleUserPremium,
	}
}

// HasAnyRole reports whether the account's assigned role is a member of set.
func HasAnyRole(a Account, set ...Role) bool {
	for _, r := range set {
		if a.Role == r {
			return true
		}
	}
	return false
}

// CoachRoles is the coach tier ladder, base first.
func CoachRoles() []Role {
	return []Role{RoleCoach, RoleCoachPro, RoleCoachEnterprise}
}
