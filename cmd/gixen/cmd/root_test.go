package cmd

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
)

// fakeGixenServer は操作ごとのパラメータを見て固定の本文を返します
func fakeGixenServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("username") != "test" || q.Get("password") != "test" {
			_, _ = w.Write([]byte("ERROR (101): COULD NOT LOG IN\r\n"))
			return
		}
		switch {
		case q.Get("itemid") != "":
			if q.Get("maxbid") == "12.50" && q.Get("bidoffset") == "10" {
				_, _ = w.Write([]byte("OK " + q.Get("itemid") + " ADDED\r\n"))
				return
			}
			_, _ = w.Write([]byte("\r\n"))
		case q.Get("ditemid") != "":
			_, _ = w.Write([]byte("OK " + q.Get("ditemid") + " DELETED\r\n"))
		case q.Get("listsnipesmain") == "1":
			_, _ = w.Write([]byte("<br>|#!#|111|#!#|1700000000|#!#|10.00|#!#|A|#!#|ACTIVE|#!#|Main item|#!#|0|#!#|1|#!#|6\r\nOK MAIN LISTED\r\n"))
		case q.Get("listsnipesmirror") == "1":
			_, _ = w.Write([]byte("<br>|#!#|222|#!#|1700000000|#!#|20.00|#!#|A|#!#|ACTIVE|#!#|Mirror &amp; item|#!#|0|#!#|1|#!#|6\r\nOK MIRROR LISTED\r\n"))
		case q.Get("purgecompleted") == "1":
			_, _ = w.Write([]byte("OK COMPLETEDPURGED\r\n"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func run(t *testing.T, srv *httptest.Server, args ...string) (string, error) {
	t.Helper()
	base := []string{
		"--config", filepath.Join(t.TempDir(), "missing.toml"),
		"--base-url", srv.URL,
		"-u", "test",
	}
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append(args, base...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCLI_snipe(t *testing.T) {
	srv := fakeGixenServer(t)

	out, err := run(t, srv, "snipe", "123456789", "12.5", "--offset", "10", "-p", "test")
	if err != nil {
		t.Fatalf("snipe returned error: %v", err)
	}
	if strings.TrimSpace(out) != "snipe added" {
		t.Fatalf("output = %q", out)
	}

	out, err = run(t, srv, "snipe", "123456789", "99", "-p", "test")
	if err != nil {
		t.Fatalf("snipe returned error: %v", err)
	}
	if strings.TrimSpace(out) != "snipe not confirmed" {
		t.Fatalf("output = %q", out)
	}
}

func TestCLI_unsnipeAndPurge(t *testing.T) {
	srv := fakeGixenServer(t)

	out, err := run(t, srv, "unsnipe", "123", "-p", "test")
	if err != nil || strings.TrimSpace(out) != "snipe deleted" {
		t.Fatalf("unsnipe = %q, %v", out, err)
	}
	out, err = run(t, srv, "purge", "-p", "test")
	if err != nil || strings.TrimSpace(out) != "completed snipes purged" {
		t.Fatalf("purge = %q, %v", out, err)
	}
}

func TestCLI_list(t *testing.T) {
	srv := fakeGixenServer(t)

	out, err := run(t, srv, "list", "-p", "test")
	if err != nil {
		t.Fatalf("list returned error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want 3:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[1], "main") || !strings.Contains(lines[1], "111") {
		t.Fatalf("main row = %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "mirror") || !strings.Contains(lines[2], "Mirror & item") {
		t.Fatalf("mirror row = %q", lines[2])
	}
	if !strings.Contains(lines[1], "2023-11-14T22:13:20Z") {
		t.Fatalf("end time not formatted: %q", lines[1])
	}

	out, err = run(t, srv, "list", "--server", "mirror", "-p", "test")
	if err != nil {
		t.Fatalf("list returned error: %v", err)
	}
	if strings.Contains(out, "111") || !strings.Contains(out, "222") {
		t.Fatalf("mirror list = %q", out)
	}
}

func TestCLI_verbose(t *testing.T) {
	srv := fakeGixenServer(t)

	cases := [][]string{
		{"snipe", "123456789", "12.5", "--offset", "10", "-v", "-p", "test"},
		{"unsnipe", "123", "--verbose", "-p", "test"},
		{"list", "-v", "-p", "test"},
		{"purge", "-v", "-p", "test"},
	}
	for _, args := range cases {
		out, err := run(t, srv, args...)
		if err != nil {
			t.Fatalf("%s -v returned error: %v", args[0], err)
		}
		if strings.TrimSpace(out) == "" {
			t.Fatalf("%s -v wrote no output", args[0])
		}
	}
}

func TestCLI_errors(t *testing.T) {
	srv := fakeGixenServer(t)

	if _, err := run(t, srv, "purge", "-p", "wrong"); err == nil || !strings.Contains(err.Error(), "101 - COULD NOT LOG IN") {
		t.Fatalf("bad login err = %v", err)
	}
	if _, err := run(t, srv, "list", "--server", "backup", "-p", "test"); err == nil {
		t.Fatalf("expected error for unknown server")
	}
	if _, err := run(t, srv, "snipe", "abc", "1.00", "-p", "test"); err == nil {
		t.Fatalf("expected validation error")
	}
	if _, err := run(t, srv, "snipe", "123", "12.505", "-p", "test"); err == nil {
		t.Fatalf("expected error for bid with more than two decimals")
	}
	if _, err := run(t, srv, "snipe", "123", "12.50", "--group", "11", "-p", "test"); err == nil {
		t.Fatalf("expected error for group over 10")
	}
}
