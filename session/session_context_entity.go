package session

import (
	"strings"
	"time"

	"repairx/authority"
	"repairx/domain/state"

	"github.com/fundwit/go-commons/types"
)

type Context struct {
	Token    string                `json:"token"`
	Identity Identity              `json:"identity"`
	Perms    authority.Permissions `json:"perms"`
	OrgRoles authority.OrgRoles    `json:"orgRoles"`

	SigningTime time.Time `json:"-"`
}

type Identity struct {
	ID       types.ID `json:"id"`
	Name     string   `json:"name"`
	Nickname string   `json:"nickname"`
}

// VisibleOrganizations parse visible organization ids from Context.Perms
func (c *Context) VisibleOrganizations() []types.ID {
	var orgIds []types.ID
	for _, v := range c.Perms {
		pairs := strings.Split(v, "_")
		role := strings.Join(pairs[0:len(pairs)-1], "_")
		if len(pairs) < 2 || !isPlatformRole(role) {
			continue
		}
		id, err := types.ParseID(pairs[len(pairs)-1])
		if err != nil {
			continue
		}
		orgIds = append(orgIds, id)
	}
	if orgIds == nil {
		return []types.ID{}
	}
	return orgIds
}

func (c *Context) HasRole(role string) bool {
	return c.Perms.HasRole(role)
}

func (c *Context) HasRoleSuffix(suffix string) bool {
	return c.Perms.HasRoleSuffix(suffix)
}

func (c *Context) HasOrgViewPerm(orgId types.ID) bool {
	return c.Perms.HasOrgViewPerm(orgId)
}

// rolePriority most privileged first
var rolePriority = []state.Role{state.RoleOrgOwner, state.RoleOrgManager, state.RoleTechnician, state.RoleCustomer}

// OrgRole resolves the acting role of this session for one organization.
// SAAS_ADMIN is global; otherwise the most privileged role granted for the
// organization wins.
func (c *Context) OrgRole(orgId types.ID) (state.Role, bool) {
	if c.Perms.HasRole(string(state.RoleSaasAdmin)) {
		return state.RoleSaasAdmin, true
	}
	for _, role := range rolePriority {
		if c.Perms.HasRole(string(role) + "_" + orgId.String()) {
			return role, true
		}
	}
	return "", false
}

func isPlatformRole(role string) bool {
	for _, r := range state.AllRoles {
		if strings.EqualFold(string(r), role) {
			return true
		}
	}
	return false
}
