package buildinfo

import (
	"strings"
	"testing"
)

func TestTemplate(t *testing.T) {
	old := Version
	t.Cleanup(func() { Version = old })
	Version = "v1.2.3"

	tmpl := Template()
	if !strings.HasPrefix(tmpl, "{{.Name}} version: v1.2.3\n") {
		t.Errorf("Template() = %q", tmpl)
	}
	if got := UserAgent(); got != "cladding/v1.2.3" {
		t.Errorf("UserAgent() = %q", got)
	}
}
