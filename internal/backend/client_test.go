package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bulwark-sec/bulwark/pkg/shared"
	"github.com/bulwark-sec/bulwark/pkg/shared/config"
	bwerrors "github.com/bulwark-sec/bulwark/pkg/shared/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{Backend: config.Backend{URL: srv.URL + "/"}}
	c, err := New(cfg, hclog.NewNullLogger())
	require.NoError(t, err)
	return c
}

func TestHealth(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/scoping/health", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	status, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", status["status"])
}

func TestBackendErrorCarriesStatusAndMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":["repositoryUrl must be a URL"]}`))
	})

	_, err := c.GenerateReport(context.Background(), GenerateReportRequest{RepositoryURL: "x"})
	var be *bwerrors.BackendError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, http.StatusBadRequest, be.StatusCode)
	assert.Equal(t, "repositoryUrl must be a URL", be.Body)
}

func TestTransportErrorHasNoStatus(t *testing.T) {
	cfg := &config.Config{Backend: config.Backend{URL: "http://127.0.0.1:1"}}
	c, err := New(cfg, hclog.NewNullLogger())
	require.NoError(t, err)

	_, err = c.GetAllReports(context.Background())
	var be *bwerrors.BackendError
	require.ErrorAs(t, err, &be)
	assert.Zero(t, be.StatusCode)
	assert.Error(t, be.Unwrap())
}

func TestMalformedPayloadIsResponseShapeError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not":"a list"}`))
	})

	_, err := c.GetAllReports(context.Background())
	var se *bwerrors.ResponseShapeError
	assert.ErrorAs(t, err, &se)
}

func TestAnalyzeRustContract(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/static-analysis/analyze-rust-contract", r.URL.Path)
		var req AnalyzeRustContractRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "https://github.com/a/b", req.RepositoryURL)
		assert.Equal(t, []string{"src/lib.rs"}, req.SelectedFiles)
		assert.Equal(t, "tok", req.AccessToken)
		_, _ = w.Write([]byte(`{"id":"r1","status":"completed","findings":[{"id":"f1","title":"Overflow","severity":"high"}]}`))
	})

	out, err := c.AnalyzeRustContract(context.Background(), AnalyzeRustContractRequest{
		RepositoryURL: "https://github.com/a/b",
		SelectedFiles: []string{"src/lib.rs"},
		AccessToken:   "tok",
	})
	require.NoError(t, err)
	assert.Equal(t, "r1", out.ID)
	require.Len(t, out.Findings, 1)
	assert.Equal(t, "high", out.Findings[0].Severity)
}

func TestGetReportByID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/static-analysis/reports/r-42", r.URL.Path)
		_, _ = w.Write([]byte(`{"id":"r-42"}`))
	})

	out, err := c.GetReportByID(context.Background(), "r-42")
	require.NoError(t, err)
	assert.Equal(t, "r-42", out.ID)

	_, err = c.GetReportByID(context.Background(), " ")
	var ie *bwerrors.InputError
	assert.ErrorAs(t, err, &ie)
}

func TestGetAvailableFactorsSendsEmptyObject(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{}`, string(body))
		_, _ = w.Write([]byte(`{"security":{"category":"Security","description":"Finding counts","factors":{"critical_count":{"name":"Critical findings","type":"number","description":"Critical severity findings"}}}}`))
	})

	groups, err := c.GetAvailableFactors(context.Background())
	require.NoError(t, err)
	require.Contains(t, groups, "security")
	assert.Equal(t, "number", groups["security"].Factors["critical_count"].Type)
}

func TestExportReportsCSV(t *testing.T) {
	t.Run("json payload", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			var body map[string][]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, []string{"r1"}, body["reportIds"])
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"csv":"id\nr1\n","filename":"export.csv"}`))
		})

		out, err := c.ExportReportsCSV(context.Background(), []string{"r1"}, nil)
		require.NoError(t, err)
		assert.Equal(t, "export.csv", out.Filename)
		assert.Equal(t, "id\nr1\n", string(out.Data))
	})

	t.Run("raw csv", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/csv")
			_, _ = w.Write([]byte("id,score\nr1,3\n"))
		})

		out, err := c.ExportReportsCSV(context.Background(), nil, nil)
		require.NoError(t, err)
		assert.Regexp(t, `^analysis-reports-\d{4}-\d{2}-\d{2}\.csv$`, out.Filename)
		assert.Equal(t, "id,score\nr1,3\n", string(out.Data))
	})

	t.Run("json without fields", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"ok":true}`))
		})

		_, err := c.ExportReportsCSV(context.Background(), nil, nil)
		var se *bwerrors.ResponseShapeError
		assert.ErrorAs(t, err, &se)
	})
}

func TestParseExportRawFilenameUsesDate(t *testing.T) {
	now := time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)
	out, err := parseExport("export", "text/csv", []byte("a,b\n"), now)
	require.NoError(t, err)
	assert.Equal(t, "analysis-reports-2024-03-09.csv", out.Filename)
}

func TestParseExportDetectsFormat(t *testing.T) {
	now := time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name        string
		contentType string
		body        string
		wantName    string
		wantData    string
	}{
		{name: "numeric csv body", contentType: "text/csv", body: "42", wantName: "analysis-reports-2024-03-09.csv", wantData: "42"},
		{name: "quoted csv cell", contentType: "text/csv; charset=utf-8", body: `"id"`, wantName: "analysis-reports-2024-03-09.csv", wantData: `"id"`},
		{name: "untyped number", body: "42\n", wantName: "analysis-reports-2024-03-09.csv", wantData: "42\n"},
		{name: "untyped object", body: `{"csv":"a\n","filename":"x.csv"}`, wantName: "x.csv", wantData: "a\n"},
		{name: "json content type", contentType: "application/json", body: `{"csv":"b","filename":"y.csv"}`, wantName: "y.csv", wantData: "b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := parseExport("export", tt.contentType, []byte(tt.body), now)
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, out.Filename)
			assert.Equal(t, tt.wantData, string(out.Data))
		})
	}
}

func writeArchive(t *testing.T) shared.Archive {
	t.Helper()
	p := filepath.Join(t.TempDir(), "contracts.zip")
	require.NoError(t, os.WriteFile(p, []byte("PK\x03\x04"), 0o600))
	return shared.Archive{Path: p}
}

func TestDiscoverFiles(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/uploads/discover-files", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		_, header, err := r.FormFile("file")
		require.NoError(t, err)
		assert.Equal(t, "contracts.zip", header.Filename)
		_, _ = w.Write([]byte(`{
			"extractedPath": "/tmp/up-1",
			"contract_files": ["programs/vault/src/lib.rs", "contracts/Token.sol"],
			"contents": [
				{"name": "programs", "path": "programs", "type": "directory", "contents": [
					{"name": "vault", "path": "programs/vault", "type": "directory", "contents": [
						{"name": "src", "path": "programs/vault/src", "type": "directory", "contents": [
							{"name": "lib.rs", "path": "programs/vault/src/lib.rs", "type": "file", "size": 2048}
						]}
					]}
				]},
				{"name": "contracts", "path": "contracts", "type": "directory", "contents": [
					{"name": "Token.sol", "path": "contracts/Token.sol", "type": "file", "size": 512}
				]}
			]
		}`))
	})

	out, err := c.DiscoverFiles(context.Background(), writeArchive(t))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/up-1", out.ExtractedPath)
	assert.Equal(t, []shared.ContractFile{
		{Path: "programs/vault/src/lib.rs", Name: "lib.rs", Size: 2048, Language: shared.LanguageRust},
		{Path: "contracts/Token.sol", Name: "Token.sol", Size: 512, Language: shared.LanguageSolidity},
	}, out.ContractFiles)
}

func TestDiscoverFilesRejectsInvalidContractPaths(t *testing.T) {
	for _, path := range []string{"", "/etc/vault/lib.rs"} {
		t.Run(path, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				body, err := json.Marshal(map[string]any{
					"extractedPath":  "/tmp/up-1",
					"contract_files": []string{"src/lib.rs", path},
				})
				require.NoError(t, err)
				_, _ = w.Write(body)
			})

			_, err := c.DiscoverFiles(context.Background(), writeArchive(t))
			var se *bwerrors.ResponseShapeError
			assert.ErrorAs(t, err, &se)
		})
	}
}

func TestDiscoverFilesRejectsBadArchive(t *testing.T) {
	called := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) { called = true })

	_, err := c.DiscoverFiles(context.Background(), shared.Archive{Path: "notes.txt"})
	var ie *bwerrors.InputError
	assert.ErrorAs(t, err, &ie)
	assert.False(t, called)
}

func TestAnalyzeUploadedContracts(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/static-analysis/analyze-uploaded-contract", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{
			"extractedPath": "/tmp/up-1",
			"selectedFiles": ["src/lib.rs"],
			"analysisOptions": {"includeTests": false, "includeDependencies": true, "depth": "deep"}
		}`, string(body))
		_, _ = w.Write([]byte(`{"id":"r9"}`))
	})

	out, err := c.AnalyzeUploadedContracts(context.Background(), "/tmp/up-1", []string{"src/lib.rs"})
	require.NoError(t, err)
	assert.Equal(t, "r9", out.ID)
}

func TestAnalyzeUploadedContractsExpired(t *testing.T) {
	for _, status := range []int{http.StatusNotFound, http.StatusGone} {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		})

		_, err := c.AnalyzeUploadedContracts(context.Background(), "/tmp/up-1", []string{"a.rs"})
		var ee *bwerrors.UploadExpiredError
		require.ErrorAs(t, err, &ee, "status %d", status)
		assert.Equal(t, "/tmp/up-1", ee.ExtractedPath)
	}
}

func TestGetGitHubAuthURL(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/github/url", r.URL.Path)
		_, _ = w.Write([]byte(`{"authUrl":"https://github.com/login/oauth/authorize?client_id=x"}`))
	})

	u, err := c.GetGitHubAuthURL(context.Background())
	require.NoError(t, err)
	assert.Contains(t, u, "github.com/login/oauth")
}

func TestValidateToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/validate", r.URL.Path)
		if r.URL.Query().Get("token") == "good" {
			_, _ = w.Write([]byte(`{"valid":true,"user":{"id":7,"login":"octo","name":"Octo","email":"o@example.com","avatar_url":"https://a"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"valid":false,"error":"Bad credentials"}`))
	})

	ok, err := c.ValidateToken(context.Background(), "good")
	require.NoError(t, err)
	require.True(t, ok.Valid)
	assert.Equal(t, "octo", ok.User.Login)

	bad, err := c.ValidateToken(context.Background(), "bad")
	require.NoError(t, err)
	assert.False(t, bad.Valid)
	assert.Equal(t, "Bad credentials", bad.Error)
}
