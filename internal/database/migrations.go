package database

import "fmt"

// RunMigrations creates the schema. All statements are idempotent so the
// server can run them on every start.
func (d *Database) RunMigrations() error {
	statements := []struct {
		name string
		sql  string
	}{
		{"users table", `
			CREATE TABLE IF NOT EXISTS users (
				id TEXT PRIMARY KEY,
				name TEXT,
				email TEXT,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			);
		`},
		{"properties table", `
			CREATE TABLE IF NOT EXISTS properties (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL,
				title TEXT,
				city TEXT,
				status TEXT NOT NULL DEFAULT 'active',
				listing_type TEXT,
				property_type TEXT,
				price INTEGER,
				views INTEGER NOT NULL DEFAULT 0,
				latitude REAL,
				longitude REAL,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			);
		`},
		{"properties user index", `
			CREATE INDEX IF NOT EXISTS idx_properties_user ON properties(user_id);
		`},
		{"properties city index", `
			CREATE INDEX IF NOT EXISTS idx_properties_city ON properties(city, status);
		`},
		{"property_views table", `
			CREATE TABLE IF NOT EXISTS property_views (
				id TEXT PRIMARY KEY,
				property_id TEXT NOT NULL REFERENCES properties(id),
				user_id TEXT,
				session_id TEXT,
				viewed_at TIMESTAMP NOT NULL
			);
		`},
		// One row per (property, identity); the identity is the user id when
		// present, otherwise the anonymous session token. The unique index
		// turns a racing double-insert into a constraint violation that the
		// recorder treats as "already recorded".
		{"property_views identity index", `
			CREATE UNIQUE INDEX IF NOT EXISTS idx_property_views_identity
			ON property_views(property_id, COALESCE(user_id, session_id));
		`},
		{"property_views window index", `
			CREATE INDEX IF NOT EXISTS idx_property_views_window
			ON property_views(property_id, viewed_at);
		`},
		{"tours table", `
			CREATE TABLE IF NOT EXISTS tours (
				id TEXT PRIMARY KEY,
				property_id TEXT NOT NULL REFERENCES properties(id),
				property_owner_id TEXT NOT NULL,
				visitor_name TEXT NOT NULL,
				visitor_email TEXT NOT NULL,
				visitor_phone TEXT,
				visitor_message TEXT,
				tour_date TEXT NOT NULL,
				tour_time TEXT NOT NULL,
				status TEXT NOT NULL DEFAULT 'pending',
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				confirmed_at TIMESTAMP,
				cancelled_at TIMESTAMP,
				completed_at TIMESTAMP,
				agent_feedback TEXT,
				agent_rating INTEGER,
				agent_notes TEXT,
				follow_up_required INTEGER NOT NULL DEFAULT 0,
				follow_up_date TEXT,
				follow_up_notes TEXT
			);
		`},
		{"tours owner index", `
			CREATE INDEX IF NOT EXISTS idx_tours_owner ON tours(property_owner_id, status);
		`},
		{"user_stats table", `
			CREATE TABLE IF NOT EXISTS user_stats (
				user_id TEXT PRIMARY KEY,
				total_properties INTEGER NOT NULL DEFAULT 0,
				properties_for_sale INTEGER NOT NULL DEFAULT 0,
				properties_for_rent INTEGER NOT NULL DEFAULT 0,
				total_customers INTEGER NOT NULL DEFAULT 0,
				total_cities INTEGER NOT NULL DEFAULT 0,
				total_revenue REAL NOT NULL DEFAULT 0,
				monthly_revenue REAL NOT NULL DEFAULT 0,
				total_leads INTEGER NOT NULL DEFAULT 0,
				active_leads INTEGER NOT NULL DEFAULT 0,
				converted_leads INTEGER NOT NULL DEFAULT 0,
				updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			);
		`},
		{"leads table", `
			CREATE TABLE IF NOT EXISTS leads (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL,
				name TEXT NOT NULL,
				email TEXT,
				phone TEXT,
				status TEXT NOT NULL DEFAULT 'new',
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			);
		`},
		{"leads user index", `
			CREATE INDEX IF NOT EXISTS idx_leads_user ON leads(user_id, status);
		`},
		{"revenue table", `
			CREATE TABLE IF NOT EXISTS revenue (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL,
				property_id TEXT,
				amount REAL NOT NULL,
				recorded_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			);
		`},
		{"favorites table", `
			CREATE TABLE IF NOT EXISTS favorites (
				user_id TEXT NOT NULL,
				property_id TEXT NOT NULL REFERENCES properties(id),
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				PRIMARY KEY (user_id, property_id)
			);
		`},
	}

	for _, stmt := range statements {
		if _, err := d.db.Exec(stmt.sql); err != nil {
			return fmt.Errorf("failed to create %s: %w", stmt.name, err)
		}
	}

	return nil
}
