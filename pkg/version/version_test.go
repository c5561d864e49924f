package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	Version, GitCommit, BuildTime = "1.2.3", "abc123", "2026-01-01"
	t.Cleanup(func() { Version, GitCommit, BuildTime = "dev", "unknown", "unknown" })

	assert.Equal(t, "1.2.3 (commit abc123, built 2026-01-01)", String())
}
