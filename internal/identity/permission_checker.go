package identity

type PermissionChecker interface {
	CanVerifyClaims(userPermissions []string) bool
	CanApproveClaims(userPermissions []string) bool
	CanViewAllClaims(userPermissions []string) bool
	IsReviewer(userPermissions []string) bool
	IsAdmin(userPermissions []string) bool
	HasAnyPermission(userPermissions []string, requiredPermissions []string) bool
}

type DefaultPermissionChecker struct{}

func NewPermissionChecker() PermissionChecker {
	return &DefaultPermissionChecker{}
}

func (c *DefaultPermissionChecker) CanVerifyClaims(userPermissions []string) bool {
	return c.HasAnyPermission(userPermissions, []string{PermVerifyClaims, PermAdmin})
}

func (c *DefaultPermissionChecker) CanApproveClaims(userPermissions []string) bool {
	return c.HasAnyPermission(userPermissions, []string{PermApproveClaims, PermAdmin})
}

func (c *DefaultPermissionChecker) CanViewAllClaims(userPermissions []string) bool {
	reviewerPerms := []string{PermVerifyClaims, PermApproveClaims, PermViewAllClaims, PermAdmin}
	return c.HasAnyPermission(userPermissions, reviewerPerms)
}

func (c *DefaultPermissionChecker) IsReviewer(userPermissions []string) bool {
	return c.CanVerifyClaims(userPermissions) || c.CanApproveClaims(userPermissions)
}

func (c *DefaultPermissionChecker) IsAdmin(userPermissions []string) bool {
	return c.HasAnyPermission(userPermissions, []string{PermAdmin})
}

func (c *DefaultPermissionChecker) HasAnyPermission(userPermissions []string, requiredPermissions []string) bool {
	for _, userPerm := range userPermissions {
		for _, requiredPerm := range requiredPermissions {
			if userPerm == requiredPerm {
				return true
			}
		}
	}
	return false
}
