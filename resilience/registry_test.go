package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestInvoker(t *testing.T, name string) *Invoker {
	t.Helper()
	inv, err := NewInvoker(name, Config{MaxRetries: -1, BaseTimeout: time.Hour})
	if err != nil {
		t.Fatalf("NewInvoker(%q) error = %v", name, err)
	}
	return inv
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()

	if err := r.Register(newTestInvoker(t, "payments")); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	err := r.Register(newTestInvoker(t, "payments"))
	if !errors.Is(err, ErrDependencyExists) {
		t.Errorf("Duplicate Register() error = %v, want ErrDependencyExists", err)
	}
}

func TestRegistry_Get(t *testing.T) {
	r := NewRegistry()
	inv := newTestInvoker(t, "payments")
	if err := r.Register(inv); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	got, err := r.Get("payments")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != inv {
		t.Error("Get() returned a different invoker")
	}

	_, err = r.Get("missing")
	if !errors.Is(err, ErrDependencyNotFound) {
		t.Errorf("Get() error = %v, want ErrDependencyNotFound", err)
	}
}

func TestRegistry_Execute(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(newTestInvoker(t, "payments")); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	ran := false
	if err := r.Execute(context.Background(), "payments", func(ctx context.Context) error {
		ran = true
		return nil
	}); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !ran {
		t.Error("Operation did not run")
	}

	err := r.Execute(context.Background(), "missing", func(ctx context.Context) error {
		t.Error("Operation must not run for an unknown dependency")
		return nil
	})
	if !errors.Is(err, ErrDependencyNotFound) {
		t.Errorf("Execute() error = %v, want ErrDependencyNotFound", err)
	}
}

func TestRegistry_NamesAndSnapshots(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"search", "payments", "auth"} {
		if err := r.Register(newTestInvoker(t, name)); err != nil {
			t.Fatalf("Register(%q) error = %v", name, err)
		}
	}

	names := r.Names()
	want := []string{"auth", "payments", "search"}
	if len(names) != len(want) {
		t.Fatalf("Names() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Names()[%d] = %q, want %q", i, names[i], want[i])
		}
	}

	snaps := r.Snapshots()
	if len(snaps) != 3 {
		t.Fatalf("Snapshots() has %d entries, want 3", len(snaps))
	}
	for name, snap := range snaps {
		if snap.State != StateClosed {
			t.Errorf("Snapshot[%q].State = %v, want closed", name, snap.State)
		}
	}
}
