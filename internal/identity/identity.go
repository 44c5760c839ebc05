package identity

// Permission tags recognised by the claim workflow. A reviewer holds
// verify_claims (coordinator track), approve_claims (manager track), or both.
const (
	PermSubmitClaims  = "submit_claims"
	PermVerifyClaims  = "verify_claims"
	PermApproveClaims = "approve_claims"
	PermViewAllClaims = "view_all_claims"
	PermAdmin         = "admin"
)

type User struct {
	ID          int64    `json:"id"`
	Email       string   `json:"email"`
	Permissions []string `json:"permissions,omitempty"`
}

func (u *User) HasPermission(permission string) bool {
	for _, p := range u.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

func (u *User) HasAnyPermission(permissions []string) bool {
	for _, userPerm := range u.Permissions {
		for _, requiredPerm := range permissions {
			if userPerm == requiredPerm {
				return true
			}
		}
	}
	return false
}

func (u *User) IsReviewer() bool {
	return u.HasAnyPermission([]string{PermVerifyClaims, PermApproveClaims, PermAdmin})
}

func (u *User) IsAdmin() bool {
	return u.HasPermission(PermAdmin)
}
