package auth

type Role string

const (
	RoleVoter      Role = "voter"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleVoter, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

type Capability string

const (
	CapVote            Capability = "vote"
	CapViewResults     Capability = "view_results"
	CapManageRoster    Capability = "manage_roster"
	CapManageElections Capability = "manage_elections"
	CapManageAdmins    Capability = "manage_admins"
	CapResetElection   Capability = "reset_election"
)

var capabilities = map[Role]map[Capability]bool{
	RoleVoter: {
		CapVote:        true,
		CapViewResults: true,
	},
	RoleAdmin: {
		CapViewResults:     true,
		CapManageRoster:    true,
		CapManageElections: true,
	},
	RoleSuperAdmin: {
		CapViewResults:     true,
		CapManageRoster:    true,
		CapManageElections: true,
		CapManageAdmins:    true,
		CapResetElection:   true,
	},
}

// Allows is the only authorization decision in the service.
func Allows(role Role, capability Capability) bool {
	return capabilities[role][capability]
}
