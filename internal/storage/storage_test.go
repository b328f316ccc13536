package storage

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestKey(t *testing.T) {
	cases := []struct {
		identity string
		logical  string
		want     string
	}{
		{"alice", "transactions", "alice-transactions"},
		{"", "transactions", "transactions"},
		{"bob", "budgets", "bob-budgets"},
	}
	for _, tc := range cases {
		if got := Key(tc.identity, tc.logical); got != tc.want {
			t.Fatalf("Key(%q, %q) = %q, want %q", tc.identity, tc.logical, got, tc.want)
		}
	}
}

func TestMemoryKVRoundTrip(t *testing.T) {
	kv := NewMemoryKV()

	if _, ok, err := kv.Get("missing"); ok || err != nil {
		t.Fatalf("expected no value, got ok=%v err=%v", ok, err)
	}

	if err := kv.Set("k", []byte(`[1,2]`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	raw, ok, err := kv.Get("k")
	if err != nil || !ok || string(raw) != `[1,2]` {
		t.Fatalf("get: raw=%q ok=%v err=%v", raw, ok, err)
	}

	// Mutating the returned slice must not affect the stored value
	raw[0] = 'X'
	raw2, _, _ := kv.Get("k")
	if string(raw2) != `[1,2]` {
		t.Fatalf("stored value mutated: %q", raw2)
	}

	if err := kv.Delete("k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := kv.Get("k"); ok {
		t.Fatalf("expected key gone after delete")
	}
	// Deleting again is not an error
	if err := kv.Delete("k"); err != nil {
		t.Fatalf("second delete: %v", err)
	}
}

func TestFileKVRoundTrip(t *testing.T) {
	dir := t.TempDir()
	kv, err := NewFileKV(filepath.Join(dir, "data"))
	if err != nil {
		t.Fatalf("new file kv: %v", err)
	}

	if _, ok, err := kv.Get("alice-transactions"); ok || err != nil {
		t.Fatalf("expected no value, got ok=%v err=%v", ok, err)
	}

	if err := kv.Set("alice-transactions", []byte(`[]`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	raw, ok, err := kv.Get("alice-transactions")
	if err != nil || !ok || string(raw) != `[]` {
		t.Fatalf("get: raw=%q ok=%v err=%v", raw, ok, err)
	}

	if err := kv.Delete("alice-transactions"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := kv.Get("alice-transactions"); ok {
		t.Fatalf("expected key gone after delete")
	}
	if err := kv.Delete("alice-transactions"); err != nil {
		t.Fatalf("deleting absent key should be silent: %v", err)
	}
}

func TestSanitizeKey(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"alice-transactions", "alice-transactions"},
		{"a/b\\c", "a_b_c"},
		{"user name-budgets", "user_name-budgets"},
		{"..", ".."}, // dots are allowed but joined under the data dir
	}
	for _, tc := range cases {
		if got := sanitizeKey(tc.in); got != tc.want {
			t.Fatalf("sanitizeKey(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestAdapterReadWrite(t *testing.T) {
	a := NewAdapter(NewMemoryKV())

	type doc struct {
		Name string `json:"name"`
	}

	found, err := a.Read("alice", "categories", &[]doc{})
	if err != nil || found {
		t.Fatalf("expected not found, got found=%v err=%v", found, err)
	}

	in := []doc{{Name: "Food & Dining"}, {Name: "Salary"}}
	if err := a.Write("alice", "categories", in); err != nil {
		t.Fatalf("write: %v", err)
	}

	var out []doc
	found, err = a.Read("alice", "categories", &out)
	if err != nil || !found {
		t.Fatalf("read: found=%v err=%v", found, err)
	}
	if len(out) != 2 || out[0].Name != "Food & Dining" {
		t.Fatalf("unexpected read result: %+v", out)
	}

	// A different identity sees nothing
	found, _ = a.Read("bob", "categories", &out)
	if found {
		t.Fatalf("identity namespacing broken: bob sees alice's data")
	}

	if err := a.Delete("alice", "categories"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	found, _ = a.Read("alice", "categories", &out)
	if found {
		t.Fatalf("expected data gone after delete")
	}
}

func TestAdapterCorruptValueIsParseError(t *testing.T) {
	kv := NewMemoryKV()
	a := NewAdapter(kv)

	if err := kv.Set("alice-transactions", []byte(`{not json`)); err != nil {
		t.Fatalf("seed corrupt value: %v", err)
	}

	var out []struct{}
	_, err := a.Read("alice", "transactions", &out)
	if err == nil {
		t.Fatalf("expected parse error")
	}
	if !errors.Is(err, ErrParse) {
		t.Fatalf("expected error wrapping ErrParse, got %v", err)
	}
}
