package main

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/jeanogram/storefront-cli/internal/config"
	"github.com/jeanogram/storefront-cli/internal/model"
)

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	old := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = old }()

	fn()
	_ = w.Close()

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

func testApp(t *testing.T) *app {
	t.Helper()
	return newApp(&config.Config{
		BaseURL:   "http://127.0.0.1:1", // never dialed in these tests
		ConfigDir: t.TempDir(),
	}, nil)
}

func Test_printJSON_WritesPretty(t *testing.T) {
	out := captureStdout(t, func() {
		printJSON(map[string]int{"n": 7})
	})
	if !strings.Contains(out, "\"n\": 7") {
		t.Fatalf("printJSON output: %q", out)
	}
	if !strings.HasSuffix(out, "\n") {
		t.Fatalf("missing trailing newline: %q", out)
	}
}

func Test_newApp_Wiring(t *testing.T) {
	a := testApp(t)
	if a.sess == nil || a.bus == nil || a.auth == nil || a.products == nil {
		t.Fatalf("incomplete app: %+v", a)
	}
	if a.cart == nil || a.wishlist == nil || a.orders == nil || a.clients == nil {
		t.Fatalf("incomplete app: %+v", a)
	}
	if a.log == nil {
		t.Fatalf("nil logger must be replaced, not kept")
	}
}

func Test_cmdWhoami(t *testing.T) {
	a := testApp(t)

	out := captureStdout(t, a.cmdWhoami)
	if !strings.Contains(out, "not signed in") {
		t.Fatalf("signed-out whoami: %q", out)
	}

	if err := a.sess.Persist("a.b.c", &model.User{ID: "u-1", Email: "a@b.c", Role: model.RoleAdmin}); err != nil {
		t.Fatalf("Persist: %v", err)
	}
	out = captureStdout(t, a.cmdWhoami)
	if !strings.Contains(out, "a@b.c") || !strings.Contains(out, "admin") {
		t.Fatalf("signed-in whoami: %q", out)
	}
}

func Test_newLogger(t *testing.T) {
	if newLogger(true) == nil || newLogger(false) == nil {
		t.Fatalf("newLogger returned nil")
	}
}
