package logsvc

import (
	"bytes"
	"log"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pkg/errors"

	"github.com/trezcool/edupay/core"
)

func TestRollbarLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewRollbarLogger(log.New(&buf, "API : ", 0), &core.Config{Env: "TEST"})
	logger.Enable(false)

	req := httptest.NewRequest("GET", "/v1/payments", nil)
	logger.Error("error fetching payments", errors.New("connection refused"), map[string]interface{}{"id": "x"}, req)

	out := buf.String()
	for _, want := range []string{"API : error fetching payments", "connection refused", "map[id:x]"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "/v1/payments") {
		t.Errorf("output should not dump the request:\n%s", out)
	}

	args := logger.prepare("msg", []interface{}{42, errors.New("x")})
	if len(args) != 3 {
		t.Fatalf("prepare() = %v, want 3 args", args)
	}
	if _, ok := args[1].(map[string]interface{}); !ok {
		t.Errorf("prepare() should wrap unknown args, got %T", args[1])
	}
}
