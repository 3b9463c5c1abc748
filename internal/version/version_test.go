package version

import (
	"strings"
	"testing"
)

func TestInfo(t *testing.T) {
	oldVersion, oldCommit := Version, Commit
	t.Cleanup(func() { Version, Commit = oldVersion, oldCommit })
	Version, Commit = "9.9.9", "abc1234"

	info := Info()
	if !strings.HasPrefix(info, "codetr 9.9.9\n") || !strings.Contains(info, "commit: abc1234") {
		t.Fatalf("Info() = %q", info)
	}
}
