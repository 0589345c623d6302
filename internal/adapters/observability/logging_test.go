package observability

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewLogger_JSONCarriesService(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, "prod", "importer")
	l.Info().Int64("number", 36325).Msg("import starting")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("not JSON: %q", buf.String())
	}
	if line["service"] != "importer" || line["message"] != "import starting" || line["time"] == nil {
		t.Fatalf("unexpected fields: %v", line)
	}
}

func TestNewLogger_ConsoleInDev(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, "dev", "api")
	l.Warn().Msg("redis unavailable")

	out := buf.String()
	if strings.HasPrefix(out, "{") || !strings.Contains(out, "redis unavailable") || !strings.Contains(out, "service=api") {
		t.Fatalf("expected console output, got %q", out)
	}
}
