package rulesets

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/wpblocks/ruleparser/internal/core/db"
	"github.com/wpblocks/ruleparser/internal/rules"
	"github.com/wpblocks/ruleparser/internal/types"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	conn, err := db.Open("sqlite://" + filepath.Join(t.TempDir(), "rulesets.db"))
	if err != nil {
		t.Fatalf("db.Open() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := db.MigrateUp(conn); err != nil {
		t.Fatalf("db.MigrateUp() error = %v", err)
	}
	repo, err := NewRepository(conn)
	if err != nil {
		t.Fatalf("NewRepository() error = %v", err)
	}
	fixed := time.Date(2026, 3, 4, 5, 6, 7, 890, time.UTC)
	repo.now = func() time.Time { return fixed }
	return repo
}

func mustDecode(t *testing.T, src string) types.Group[types.RawRule] {
	t.Helper()
	g, err := rules.DecodeRules([]byte(src))
	if err != nil {
		t.Fatalf("DecodeRules(%s) error = %v", src, err)
	}
	return g
}

func TestCreateAndGet(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	group := mustDecode(t, `["ALL",[["cart.total",">=",100],["ANY",[["tier","in",["gold","silver"]]]]]]`)

	created, err := repo.Create(ctx, "  big-cart  ", "free shipping", group)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.Name != "big-cart" {
		t.Errorf("Name = %q, want trimmed name", created.Name)
	}
	if !created.CreatedAt.Equal(time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)) {
		t.Errorf("CreatedAt = %v, want truncated fixed time", created.CreatedAt)
	}

	byID, err := repo.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if diff := cmp.Diff(created, byID, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("Get() mismatch (-created +got):\n%s", diff)
	}

	byName, err := repo.GetByName(ctx, "big-cart")
	if err != nil {
		t.Fatalf("GetByName() error = %v", err)
	}
	if byName.ID != created.ID {
		t.Errorf("GetByName() ID = %s, want %s", byName.ID, created.ID)
	}

	for _, ref := range []string{string(created.ID), "big-cart"} {
		rs, err := repo.Resolve(ctx, ref)
		if err != nil {
			t.Fatalf("Resolve(%q) error = %v", ref, err)
		}
		if rs.ID != created.ID {
			t.Errorf("Resolve(%q) ID = %s, want %s", ref, rs.ID, created.ID)
		}
	}
}

func TestStoredRulesEvaluate(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, "cart", "", mustDecode(t, `[["total","<",100],["sku","in",["a","b"]]]`))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	rs, err := repo.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	got, err := rules.Parse(rs.Rules, types.Store{"total": 40.0, "sku": "a"})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !got {
		t.Error("stored rule set evaluated to false, want true")
	}
}

func TestCreateErrors(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	group := mustDecode(t, `[]`)

	if _, err := repo.Create(ctx, "dup", "", group); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	tests := []struct {
		name    string
		ruleSet string
		wantErr error
	}{
		{"duplicate", "dup", ErrDuplicateName},
		{"empty", "   ", types.ErrInvalidRuleSetName},
		{"too long", strings.Repeat("x", types.MaxRuleSetNameLength+1), types.ErrInvalidRuleSetName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := repo.Create(ctx, tt.ruleSet, "", group)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Create() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNotFound(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	missing := types.NewRuleSetID()

	if _, err := repo.Get(ctx, missing); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
	if _, err := repo.Get(ctx, "not-a-uuid"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(invalid) error = %v, want ErrNotFound", err)
	}
	if _, err := repo.GetByName(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByName() error = %v, want ErrNotFound", err)
	}
	if err := repo.Delete(ctx, missing); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete() error = %v, want ErrNotFound", err)
	}
	if _, err := repo.Update(ctx, missing, "", mustDecode(t, `[]`)); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update() error = %v, want ErrNotFound", err)
	}
}

func TestListUpdateDelete(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	var ids []types.RuleSetID
	for _, name := range []string{"charlie", "alpha", "bravo"} {
		rs, err := repo.Create(ctx, name, "", mustDecode(t, `[]`))
		if err != nil {
			t.Fatalf("Create(%s) error = %v", name, err)
		}
		ids = append(ids, rs.ID)
	}

	list, err := repo.List(ctx, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	var names []string
	for _, rs := range list {
		names = append(names, rs.Name)
	}
	if diff := cmp.Diff([]string{"alpha", "bravo", "charlie"}, names); diff != "" {
		t.Errorf("List() names mismatch (-want +got):\n%s", diff)
	}

	limited, err := repo.List(ctx, 2)
	if err != nil {
		t.Fatalf("List(2) error = %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("List(2) returned %d rule sets", len(limited))
	}

	updated, err := repo.Update(ctx, ids[0], "now with rules", mustDecode(t, `["ANY",[["x","is",1]]]`))
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Description != "now with rules" || !updated.Rules.Explicit || len(updated.Rules.Nodes) != 1 {
		t.Errorf("Update() = %+v", updated)
	}

	if err := repo.Delete(ctx, ids[1]); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := repo.Get(ctx, ids[1]); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after Delete error = %v, want ErrNotFound", err)
	}
}
