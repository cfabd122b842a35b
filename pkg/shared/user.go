package shared

import "fmt"

// GitHubUser is the identity attached to a GitHub access token.
type GitHubUser struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

// Validate checks that the user carries an id and a login.
func (u GitHubUser) Validate() error {
	if u.ID == 0 {
		return fmt.Errorf("github user id is missing")
	}
	if u.Login == "" {
		return fmt.Errorf("github user login is missing")
	}
	return nil
}
