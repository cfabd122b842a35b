package version

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bulwark-sec/bulwark/pkg/shared/config"
)

func TestPrintVersionInfo(t *testing.T) {
	Init(&config.Config{Backend: config.Backend{URL: "http://localhost:3000"}})
	t.Cleanup(func() { Init(nil) })

	var buf bytes.Buffer
	printVersionInfo(&buf, Versions{Version: "1.2.0", GolangVersion: "go1.24.4", BuildTime: "2025-01-01"})

	out := buf.String()
	assert.Contains(t, out, "Core Version: v1.2.0")
	assert.Contains(t, out, "Go Version: go1.24.4")
	assert.Contains(t, out, "Audit Service: http://localhost:3000")
}
