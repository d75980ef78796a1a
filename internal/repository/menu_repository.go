package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/restaurant-kot/internal/model"
)

// MenuRepo serves the read-only catalog lookups a terminal needs while
// building a ticket: menu sections, the items of a section, service-mode
// labels and room labels.
type MenuRepo struct{ DB *sql.DB }

func NewMenuRepo(db *sql.DB) *MenuRepo { return &MenuRepo{DB: db} }

// Sections returns the distinct menu sections in alphabetical order.
func (r *MenuRepo) Sections(ctx context.Context) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT DISTINCT section FROM menu_items ORDER BY section")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sections []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		sections = append(sections, s)
	}
	return sections, rows.Err()
}

// ItemsBySection returns all menu items of one section.
func (r *MenuRepo) ItemsBySection(ctx context.Context, section string) ([]model.MenuItem, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, section, name, price FROM menu_items WHERE section=? ORDER BY name",
		section)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []model.MenuItem
	for rows.Next() {
		var m model.MenuItem
		if err := rows.Scan(&m.ID, &m.Section, &m.Name, &m.Price); err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

// ServiceModes returns the configured service-mode labels.
func (r *MenuRepo) ServiceModes(ctx context.Context) ([]string, error) {
	return r.labels(ctx, "SELECT name FROM service_modes ORDER BY id")
}

// Rooms returns the configured room/table labels.
func (r *MenuRepo) Rooms(ctx context.Context) ([]string, error) {
	return r.labels(ctx, "SELECT name FROM rooms ORDER BY name")
}

// labels runs a single-column query and collects the values.
func (r *MenuRepo) labels(ctx context.Context, query string) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
