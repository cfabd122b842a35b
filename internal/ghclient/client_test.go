package ghclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bulwark-sec/bulwark/pkg/shared"
	"github.com/bulwark-sec/bulwark/pkg/shared/config"
	bwerrors "github.com/bulwark-sec/bulwark/pkg/shared/errors"
)

func newTestClient(t *testing.T, token string, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{Github: config.Github{APIURL: srv.URL}}
	c, err := New(cfg, hclog.NewNullLogger(), token)
	require.NoError(t, err)
	return c
}

func TestParseRepoURL(t *testing.T) {
	tests := []struct {
		name  string
		input string
		owner string
		repo  string
		err   bool
	}{
		{name: "https url", input: "https://github.com/solana-labs/example", owner: "solana-labs", repo: "example"},
		{name: "git suffix", input: "https://github.com/a/b.git", owner: "a", repo: "b"},
		{name: "deep link", input: "github.com/a/b/tree/main/src", owner: "a", repo: "b"},
		{name: "query string", input: "https://github.com/a/b?tab=readme", owner: "a", repo: "b"},
		{name: "ssh remote", input: "git@github.com:octo/vault.git", owner: "octo", repo: "vault"},
		{name: "missing repo", input: "https://github.com/a", err: true},
		{name: "other host", input: "https://gitlab.com/a/b", err: true},
		{name: "other host ssh", input: "git@gitlab.com:a/b.git", err: true},
		{name: "empty", input: "", err: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owner, repo, err := ParseRepoURL(tt.input)
			if tt.err {
				var ie *bwerrors.InputError
				assert.ErrorAs(t, err, &ie)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.owner, owner)
			assert.Equal(t, tt.repo, repo)
		})
	}
}

func TestResolvePublicRepository(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/octo/vault", func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"name":"vault","default_branch":"develop"}`))
	})
	mux.HandleFunc("/repos/octo/vault/git/trees/develop", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("recursive"))
		_, _ = w.Write([]byte(`{"sha":"abc","tree":[
			{"path":"programs/vault/src/lib.rs","type":"blob"},
			{"path":"programs/vault/src","type":"tree"},
			{"path":"contracts/Token.sol","type":"blob"},
			{"path":"build.rs.bak","type":"blob"},
			{"path":"fake.rs","type":"tree"}
		]}`))
	})
	c := newTestClient(t, "", mux)

	repo, files, err := c.ResolvePublicRepository(context.Background(), "https://github.com/octo/vault")
	require.NoError(t, err)
	assert.Equal(t, shared.Repository{
		ID:       0,
		Name:     "vault",
		FullName: "octo/vault",
		URL:      "https://github.com/octo/vault",
		Private:  false,
	}, repo)
	assert.Equal(t, []shared.ContractFile{
		{Path: "programs/vault/src/lib.rs", Name: "lib.rs", Size: 0, Language: "Rust"},
	}, files)
}

func TestResolvePublicRepositoryNotFound(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "repository missing",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte(`{"message":"Not Found"}`))
			},
		},
		{
			name: "tree rate limited",
			handler: func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path == "/repos/octo/vault" {
					_, _ = w.Write([]byte(`{"default_branch":"main"}`))
					return
				}
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"message":"API rate limit exceeded"}`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, "", tt.handler)
			_, _, err := c.ResolvePublicRepository(context.Background(), "https://github.com/octo/vault")
			assert.ErrorIs(t, err, bwerrors.ErrRepositoryNotFound)
		})
	}
}

func TestResolvePublicRepositoryRejectsBadURLWithoutRequest(t *testing.T) {
	called := false
	c := newTestClient(t, "", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))

	_, _, err := c.ResolvePublicRepository(context.Background(), "not a url")
	var ie *bwerrors.InputError
	assert.ErrorAs(t, err, &ie)
	assert.False(t, called)
}

func TestListUserRepositories(t *testing.T) {
	c := newTestClient(t, "tok", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/user/repos", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "updated", r.URL.Query().Get("sort"))
		assert.Equal(t, "100", r.URL.Query().Get("per_page"))
		_, _ = w.Write([]byte(`[{"id":5,"name":"vault","full_name":"octo/vault","html_url":"https://github.com/octo/vault","private":true}]`))
	}))

	repos, err := c.ListUserRepositories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []shared.Repository{
		{ID: 5, Name: "vault", FullName: "octo/vault", URL: "https://github.com/octo/vault", Private: true},
	}, repos)
}

func TestListContractFilesWalksDirectories(t *testing.T) {
	c := newTestClient(t, "tok", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repos/octo/vault/contents/":
			_, _ = w.Write([]byte(`[
				{"type":"dir","path":"src","name":"src"},
				{"type":"file","path":"README.md","name":"README.md","size":10}
			]`))
		case "/repos/octo/vault/contents/src":
			_, _ = w.Write([]byte(`[
				{"type":"file","path":"src/lib.rs","name":"lib.rs","size":300},
				{"type":"file","path":"src/Token.sol","name":"Token.sol","size":120}
			]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	files, err := c.ListContractFiles(context.Background(), "octo", "vault")
	require.NoError(t, err)
	assert.Equal(t, []shared.ContractFile{
		{Path: "src/lib.rs", Name: "lib.rs", Size: 300, Language: shared.LanguageRust},
		{Path: "src/Token.sol", Name: "Token.sol", Size: 120, Language: shared.LanguageSolidity},
	}, files)
}

func TestAuthenticatedUser(t *testing.T) {
	c := newTestClient(t, "tok", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/user", r.URL.Path)
		_, _ = w.Write([]byte(`{"id":7,"login":"octo","name":"Octo Cat","email":"o@example.com","avatar_url":"https://a"}`))
	}))

	u, err := c.AuthenticatedUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, shared.GitHubUser{ID: 7, Login: "octo", Name: "Octo Cat", Email: "o@example.com", AvatarURL: "https://a"}, u)
}
