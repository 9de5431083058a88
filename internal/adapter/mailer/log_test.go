package mailer

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestLog_SendPasswordReset(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	m := NewLog("http://localhost:5173", slog.New(slog.NewJSONHandler(&buf, nil)))

	if err := m.SendPasswordReset(context.Background(), "a@b.c", "tok+en/="); err != nil {
		t.Fatalf("SendPasswordReset: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, `"email":"a@b.c"`) {
		t.Errorf("missing email in %s", out)
	}
	if !strings.Contains(out, "reset-password?token=tok%2Ben%2F%3D") {
		t.Errorf("token not escaped in %s", out)
	}
}
