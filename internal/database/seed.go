// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// defaultCategories and defaultTags are the starter taxonomy offered to
// editors on a fresh install. Slugs are written out so seeding does not
// depend on the slug package.
var (
	defaultCategories = [][2]string{
		{"Technology", "technology"},
		{"Lifestyle", "lifestyle"},
		{"Business", "business"},
		{"Entertainment", "entertainment"},
		{"Health", "health"},
		{"Coding", "coding"},
		{"Programming", "programming"},
		{"Food", "food"},
		{"Fashion", "fashion"},
		{"Sports", "sports"},
		{"Travel", "travel"},
		{"Other", "other"},
	}
	defaultTags = [][2]string{
		{"Python", "python"},
		{"JavaScript", "javascript"},
		{"Django", "django"},
		{"React", "react"},
	}
)

// Seed populates the database with initial development data: a default
// admin account and the starter categories and tags. Each part is only
// inserted when its table is empty.
func Seed(db *sql.DB) error {
	if err := seedAdmin(db); err != nil {
		return err
	}
	if err := seedTerms(db, "categories", defaultCategories); err != nil {
		return err
	}
	return seedTerms(db, "tags", defaultTags)
}

func seedAdmin(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}
	if count > 0 {
		slog.Info("users already seeded, skipping")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO users (email, password_hash, display_name, role)
		VALUES ($1, $2, $3, $4)
	`, "admin@blogify.local", string(hash), "Admin", "admin")
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	slog.Info("database seeded with default admin user",
		"email", "admin@blogify.local",
		"password", "admin",
	)
	return nil
}

// seedTerms fills a name/slug table. table is always a package constant.
func seedTerms(db *sql.DB, table string, terms [][2]string) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count); err != nil {
		return fmt.Errorf("seed check %s: %w", table, err)
	}
	if count > 0 {
		return nil
	}

	for _, term := range terms {
		_, err := db.Exec(
			"INSERT INTO "+table+" (name, slug) VALUES ($1, $2) ON CONFLICT (slug) DO NOTHING",
			term[0], term[1],
		)
		if err != nil {
			return fmt.Errorf("seed insert %s %q: %w", table, term[1], err)
		}
	}

	slog.Info("seeded default terms", "table", table, "count", len(terms))
	return nil
}
