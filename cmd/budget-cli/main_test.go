package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"budget/internal/core"
	apphttp "budget/internal/http"
	applog "budget/internal/log"
	"budget/internal/services"
	"budget/internal/store/memory"
)

func newBackend(t *testing.T) (string, *memory.Store) {
	t.Helper()
	st := memory.NewSeeded(core.SampleTransactions())
	srv := apphttp.NewServer(apphttp.Config{RateLimitPerMinute: 1000}, services.NewTransactionService(st))
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(func() {
		ts.Close()
		_ = srv.Shutdown(context.Background())
	})
	return ts.URL, st
}

func runCLI(t *testing.T, url, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(context.Background(), args, url, strings.NewReader(stdin), &out, applog.Discard())
	return out.String(), err
}

func TestListAndSummary(t *testing.T) {
	url, _ := newBackend(t)

	out, err := runCLI(t, url, "", "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if strings.Index(out, "Groceries") > strings.Index(out, "Salary") {
		t.Fatalf("list not newest first:\n%s", out)
	}

	out, err = runCLI(t, url, "", "summary")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	for _, want := range []string{"$5,000.00", "$1,500.00", "$3,500.00"} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestAddAndEdit(t *testing.T) {
	url, st := newBackend(t)
	ctx := context.Background()

	if _, err := runCLI(t, url, "", "add", "-text", "Coffee", "-amount", "3.50", "-category", "Food", "-date", "2023-10-05"); err != nil {
		t.Fatalf("add: %v", err)
	}
	list, _ := st.List(ctx)
	if got := list[len(list)-1]; got.ID != 4 || got.Amount != -3.5 {
		t.Fatalf("unexpected added record: %+v", got)
	}

	if _, err := runCLI(t, url, "", "edit", "4", "-amount", "4", "-income"); err != nil {
		t.Fatalf("edit: %v", err)
	}
	list, _ = st.List(ctx)
	if got := list[3]; got.Amount != 4 || got.Text != "Coffee" || got.Date != "2023-10-05" {
		t.Fatalf("unexpected edited record: %+v", got)
	}
}

func TestAddIncomplete(t *testing.T) {
	url, st := newBackend(t)
	if _, err := runCLI(t, url, "", "add", "-text", "Coffee"); err == nil {
		t.Fatal("expected error for missing amount and category")
	}
	if list, _ := st.List(context.Background()); len(list) != 3 {
		t.Fatalf("store changed: %+v", list)
	}
}

func TestEditUnknownID(t *testing.T) {
	url, _ := newBackend(t)
	if _, err := runCLI(t, url, "", "edit", "99", "-amount", "1"); err == nil {
		t.Fatal("expected error for unknown id")
	}
}

func TestDeleteConfirmation(t *testing.T) {
	tests := []struct {
		name      string
		stdin     string
		args      []string
		wantGone  bool
		wantInOut string
	}{
		{"declined", "n\n", []string{"delete", "2"}, false, "Cancelled"},
		{"empty answer", "", []string{"delete", "2"}, false, "Cancelled"},
		{"accepted", "y\n", []string{"delete", "2"}, true, "Deleted transaction 2"},
		{"yes flag", "", []string{"delete", "-yes", "2"}, true, "Deleted transaction 2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			url, st := newBackend(t)
			out, err := runCLI(t, url, tt.stdin, tt.args...)
			if err != nil {
				t.Fatalf("delete: %v", err)
			}
			if !strings.Contains(out, tt.wantInOut) {
				t.Fatalf("output %q missing %q", out, tt.wantInOut)
			}
			list, _ := st.List(context.Background())
			if gone := len(list) == 2; gone != tt.wantGone {
				t.Fatalf("gone = %v, want %v (%+v)", gone, tt.wantGone, list)
			}
		})
	}
}

func TestUsageErrors(t *testing.T) {
	tests := [][]string{
		nil,
		{"frobnicate"},
		{"delete"},
		{"delete", "abc"},
		{"edit", "0"},
		{"add", "-income", "-expense", "-text", "x", "-amount", "1", "-category", "c"},
		{"-api", "localhost:5000", "list"},
	}
	for _, args := range tests {
		if _, err := runCLI(t, "http://127.0.0.1:1", "", args...); err == nil {
			t.Errorf("args %q: expected error", args)
		}
	}
}
