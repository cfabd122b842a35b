package shared

import "fmt"

// Repository references the GitHub repository a flow analyzes.
type Repository struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	URL      string `json:"html_url"`
	Private  bool   `json:"private"`
}

// PublicRepository synthesizes a reference for an unauthenticated, URL-addressed repository.
func PublicRepository(owner, repo, rawURL string) Repository {
	return Repository{
		ID:       0,
		Name:     repo,
		FullName: fmt.Sprintf("%s/%s", owner, repo),
		URL:      rawURL,
		Private:  false,
	}
}
