package buildinfo

import (
	"strings"
	"testing"
)

func TestTemplate(t *testing.T) {
	old := Version
	defer func() { Version = old }()
	Version = "v9.9.9"

	if got := Template(); !strings.Contains(got, "v9.9.9") || !strings.HasPrefix(got, "{{.Name}}") {
		t.Errorf("Template() = %q", got)
	}
	if got := Get().Version; got != "v9.9.9" {
		t.Errorf("Get().Version = %q, want v9.9.9", got)
	}
}
