package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShort(t *testing.T) {
	origV, origSHA := Version, GitSHA
	t.Cleanup(func() { Version, GitSHA = origV, origSHA })

	assert.Equal(t, "dev (unknown)", Short())

	Version, GitSHA = "v1.2.0", "abc1234def5678"
	assert.Equal(t, "v1.2.0 (abc1234)", Short())
}
