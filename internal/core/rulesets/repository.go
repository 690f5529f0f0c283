// Package rulesets persists named rule trees so that callers can evaluate a
// stored rule set by id or name instead of shipping the tree on every request.
package rulesets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/wpblocks/ruleparser/internal/core/db"
	"github.com/wpblocks/ruleparser/internal/rules"
	"github.com/wpblocks/ruleparser/internal/types"
)

var (
	// ErrNotFound indicates no rule set matches the given id or name.
	ErrNotFound = errors.New("rule set not found")

	// ErrDuplicateName indicates a rule set with the same name already exists.
	ErrDuplicateName = errors.New("rule set name already exists")
)

// List bounds.
const (
	DefaultListLimit = 100
	MaxListLimit     = 1000
)

// RuleSet is a stored, named rule tree.
type RuleSet struct {
	ID          types.RuleSetID
	Name        string
	Description string
	Rules       types.Group[types.RawRule]
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// row mirrors the rule_sets table. Timestamps are RFC3339 text on every driver.
type row struct {
	ID          string `db:"rule_set_id"`
	Name        string `db:"name"`
	Description string `db:"description"`
	Expression  string `db:"expression"`
	CreatedAt   string `db:"created_at"`
	UpdatedAt   string `db:"updated_at"`
}

// Repository stores rule sets through the named queries in internal/core/db.
type Repository struct {
	queries *db.Queries
	now     func() time.Time
}

// NewRepository loads the named queries for conn.
func NewRepository(conn *sqlx.DB) (*Repository, error) {
	q, err := db.LoadQueries(conn)
	if err != nil {
		return nil, err
	}
	return &Repository{queries: q, now: time.Now}, nil
}

// Create stores a new rule set. The tree is not validated against a registry
// here; callers validate with the engine that will evaluate it.
func (r *Repository) Create(ctx context.Context, name, description string, group types.Group[types.RawRule]) (*RuleSet, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}
	expression, err := rules.EncodeRules(group)
	if err != nil {
		return nil, fmt.Errorf("encode rules: %w", err)
	}

	now := r.timestamp()
	rs := &RuleSet{
		ID:          types.NewRuleSetID(),
		Name:        name,
		Description: description,
		Rules:       group,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err = r.queries.ExecContext(ctx, "create-rule-set",
		string(rs.ID), rs.Name, rs.Description, string(expression),
		formatTime(now), formatTime(now))
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateName, name)
		}
		return nil, fmt.Errorf("create rule set: %w", err)
	}
	return rs, nil
}

// Get returns the rule set with the given id.
func (r *Repository) Get(ctx context.Context, id types.RuleSetID) (*RuleSet, error) {
	parsed, err := types.ParseRuleSetID(string(id))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return r.getOne(ctx, "get-rule-set", string(parsed))
}

// GetByName returns the rule set with the given name.
func (r *Repository) GetByName(ctx context.Context, name string) (*RuleSet, error) {
	return r.getOne(ctx, "get-rule-set-by-name", strings.TrimSpace(name))
}

// Resolve looks a rule set up by id when ref parses as one, else by name.
func (r *Repository) Resolve(ctx context.Context, ref string) (*RuleSet, error) {
	if id, err := types.ParseRuleSetID(ref); err == nil {
		return r.Get(ctx, id)
	}
	return r.GetByName(ctx, ref)
}

// List returns rule sets ordered by name. limit <= 0 selects DefaultListLimit.
func (r *Repository) List(ctx context.Context, limit int) ([]*RuleSet, error) {
	switch {
	case limit <= 0:
		limit = DefaultListLimit
	case limit > MaxListLimit:
		limit = MaxListLimit
	}

	var rows []row
	if err := r.queries.SelectContext(ctx, "list-rule-sets", &rows, limit); err != nil {
		return nil, fmt.Errorf("list rule sets: %w", err)
	}

	out := make([]*RuleSet, 0, len(rows))
	for _, rw := range rows {
		rs, err := rw.ruleSet()
		if err != nil {
			return nil, err
		}
		out = append(out, rs)
	}
	return out, nil
}

// Update replaces the description and rule tree of an existing rule set.
func (r *Repository) Update(ctx context.Context, id types.RuleSetID, description string, group types.Group[types.RawRule]) (*RuleSet, error) {
	expression, err := rules.EncodeRules(group)
	if err != nil {
		return nil, fmt.Errorf("encode rules: %w", err)
	}

	res, err := r.queries.ExecContext(ctx, "update-rule-set",
		description, string(expression), formatTime(r.timestamp()), string(id))
	if err != nil {
		return nil, fmt.Errorf("update rule set: %w", err)
	}
	if err := expectOneRow(res, id); err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

// Delete removes the rule set with the given id.
func (r *Repository) Delete(ctx context.Context, id types.RuleSetID) error {
	res, err := r.queries.ExecContext(ctx, "delete-rule-set", string(id))
	if err != nil {
		return fmt.Errorf("delete rule set: %w", err)
	}
	return expectOneRow(res, id)
}

func (r *Repository) getOne(ctx context.Context, query, arg string) (*RuleSet, error) {
	var rw row
	if err := r.queries.GetContext(ctx, query, &rw, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %q", ErrNotFound, arg)
		}
		return nil, fmt.Errorf("get rule set: %w", err)
	}
	return rw.ruleSet()
}

// timestamp truncates to seconds to match the stored RFC3339 precision.
func (r *Repository) timestamp() time.Time {
	return r.now().UTC().Truncate(time.Second)
}

func (rw row) ruleSet() (*RuleSet, error) {
	group, err := rules.DecodeRules([]byte(rw.Expression))
	if err != nil {
		return nil, fmt.Errorf("rule set %s: stored expression: %w", rw.ID, err)
	}
	created, err := time.Parse(time.RFC3339, rw.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("rule set %s: created_at: %w", rw.ID, err)
	}
	updated, err := time.Parse(time.RFC3339, rw.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("rule set %s: updated_at: %w", rw.ID, err)
	}
	return &RuleSet{
		ID:          types.RuleSetID(rw.ID),
		Name:        rw.Name,
		Description: rw.Description,
		Rules:       group,
		CreatedAt:   created,
		UpdatedAt:   updated,
	}, nil
}

func expectOneRow(res sql.Result, id types.RuleSetID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return nil
}

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: name is empty", types.ErrInvalidRuleSetName)
	}
	if len(name) > types.MaxRuleSetNameLength {
		return "", fmt.Errorf("%w: name exceeds %d bytes", types.ErrInvalidRuleSetName, types.MaxRuleSetNameLength)
	}
	return name, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
