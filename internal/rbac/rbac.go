package rbac

import (
	"github.com/escrowdesk/backend/internal/models"
	"github.com/google/uuid"
)

// Role constants
const (
	RoleInitiator = "initiator"
	RoleRecipient = "recipient"
	RoleAdmin     = "admin"
)

// Permission constants
const (
	PermSubmitFunding  = "submit_funding"
	PermOpenDispute    = "open_dispute"
	PermSetStatus      = "set_status"
	PermResolveDispute = "resolve_dispute"
	PermViewDeal       = "view_deal"
)

// RolePermissions defines what each role can do on a deal. Funding and
// dispute opening belong to the deal parties; status overrides and dispute
// resolution are administrator-only.
var RolePermissions = map[string][]string{
	RoleInitiator: {PermSubmitFunding, PermOpenDispute, PermViewDeal},
	RoleRecipient: {PermSubmitFunding, PermOpenDispute, PermViewDeal},
	RoleAdmin:     {PermSetStatus, PermResolveDispute, PermViewDeal},
}

// HasPermission checks if a role has a specific permission.
func HasPermission(role, permission string) bool {
	perms, ok := RolePermissions[role]
	if !ok {
		return false
	}
	for _, p := range perms {
		if p == permission {
			return true
		}
	}
	return false
}

// RolesForDeal returns every role the actor holds on the deal. An
// administrator who is also a party holds both roles.
func RolesForDeal(deal *models.Deal, actorID uuid.UUID, isAdmin bool) []string {
	var roles []string
	if deal.InitiatorUserID == actorID {
		roles = append(roles, RoleInitiator)
	}
	if deal.RecipientUserID == actorID {
		roles = append(roles, RoleRecipient)
	}
	if isAdmin {
		roles = append(roles, RoleAdmin)
	}
	return roles
}

// Can reports whether any of the actor's roles grants the permission.
func Can(deal *models.Deal, actorID uuid.UUID, isAdmin bool, permission string) bool {
	for _, role := range RolesForDeal(deal, actorID, isAdmin) {
		if HasPermission(role, permission) {
			return true
		}
	}
	return false
}
