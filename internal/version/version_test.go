package version

import (
	"strings"
	"testing"
)

func TestStringIncludesCommitWhenSet(t *testing.T) {
	if s := String(); s == "" {
		t.Fatal("version string is empty")
	}
	old := Commit
	Commit = "abc1234"
	defer func() { Commit = old }()
	if s := String(); !strings.Contains(s, "abc1234") {
		t.Fatalf("commit missing from %q", s)
	}
}
