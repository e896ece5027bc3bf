package domain

// Profile is the subset of /api/auth/me the client cares about.
type Profile struct {
	ID              string   `json:"id"`
	Email           string   `json:"email"`
	FullName        string   `json:"fullName,omitempty"`
	ProfileComplete bool     `json:"profileComplete"`
	Roles           []string `json:"roles,omitempty"`
}

func (p Profile) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}
