package domain

// TokenPair is the authenticated session credential. Both fields are present
// or the pair is treated as absent; a partial pair is never handed out.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

func (p TokenPair) Valid() bool {
	return p.AccessToken != "" && p.RefreshToken != ""
}
