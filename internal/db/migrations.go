package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		employee_id VARCHAR(32) NOT NULL,
		name VARCHAR(255) NOT NULL,
		designation VARCHAR(32) NOT NULL CHECK (designation IN ('DCP', 'ACP', 'Inspector', 'Other')),
		role VARCHAR(32) NOT NULL CHECK (role IN ('Reception', 'EnquiryOfficer', 'HOD', 'Admin')),
		email VARCHAR(255) NOT NULL,
		phone VARCHAR(32),
		password_hash TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uniq_users_employee_id ON users (employee_id);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uniq_users_email ON users (LOWER(email));`,
	`CREATE INDEX IF NOT EXISTS idx_users_role ON users (role);`,
	`CREATE TABLE IF NOT EXISTS user_sessions (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		expires_at TIMESTAMPTZ NOT NULL,
		revoked_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_user_sessions_user_id ON user_sessions (user_id);`,
	`CREATE TABLE IF NOT EXISTS petition_sequences (
		year INT PRIMARY KEY,
		last_value INT NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS petitions (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		number VARCHAR(32) NOT NULL,
		year INT NOT NULL,
		sequence INT NOT NULL,
		type VARCHAR(128) NOT NULL,
		zone TEXT NOT NULL,
		time_bound VARCHAR(16) NOT NULL DEFAULT 'Normal' CHECK (time_bound IN ('Priority', 'Immediate', 'Normal')),
		source VARCHAR(32),
		submitted_by VARCHAR(32),
		received_on DATE NOT NULL,
		petitioner_name VARCHAR(255) NOT NULL,
		petitioner_phone VARCHAR(32) NOT NULL,
		petitioner_address TEXT NOT NULL,
		respondent_name VARCHAR(255),
		respondent_phone VARCHAR(32),
		respondent_address TEXT,
		encroachment_address TEXT NOT NULL,
		subject TEXT NOT NULL,
		complaint_details TEXT NOT NULL,
		initial_remark TEXT,
		status VARCHAR(32) NOT NULL DEFAULT 'Pending' CHECK (status IN ('Pending', 'Under Investigation', 'Decision Made')),
		assignment_instructions TEXT,
		assigned_by UUID REFERENCES users(id) ON DELETE SET NULL,
		assigned_at TIMESTAMPTZ,
		investigation_report TEXT,
		recommendation VARCHAR(32) CHECK (recommendation IN ('Action Required', 'No Action Required')),
		reported_by UUID REFERENCES users(id) ON DELETE SET NULL,
		reported_at TIMESTAMPTZ,
		decision_status VARCHAR(32) CHECK (decision_status IN ('Approved', 'Denied', 'Partially Approved', 'Invalid')),
		decision_remarks TEXT,
		decided_by UUID REFERENCES users(id) ON DELETE SET NULL,
		decision_date TIMESTAMPTZ,
		created_by UUID NOT NULL REFERENCES users(id),
		version INT NOT NULL DEFAULT 1,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT petitions_decision_matches_status
			CHECK ((decision_status IS NULL) = (status <> 'Decision Made'))
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uniq_petitions_number ON petitions (number);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uniq_petitions_year_sequence ON petitions (year, sequence);`,
	`CREATE INDEX IF NOT EXISTS idx_petitions_status ON petitions (status);`,
	`CREATE INDEX IF NOT EXISTS idx_petitions_zone ON petitions (LOWER(zone));`,
	`CREATE INDEX IF NOT EXISTS idx_petitions_created_at ON petitions (created_at);`,
	`CREATE TABLE IF NOT EXISTS petition_assignments (
		petition_id UUID NOT NULL REFERENCES petitions(id) ON DELETE CASCADE,
		officer_id UUID NOT NULL REFERENCES users(id),
		assigned_by UUID NOT NULL REFERENCES users(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (petition_id, officer_id)
	);`,
	`CREATE INDEX IF NOT EXISTS idx_petition_assignments_officer ON petition_assignments (officer_id);`,
	`CREATE TABLE IF NOT EXISTS petition_status_log (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		petition_id UUID NOT NULL REFERENCES petitions(id) ON DELETE CASCADE,
		old_status VARCHAR(32),
		new_status VARCHAR(32) NOT NULL,
		event VARCHAR(32) NOT NULL,
		note TEXT,
		changed_by UUID REFERENCES users(id) ON DELETE SET NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_petition_status_log_petition ON petition_status_log (petition_id, created_at);`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		type VARCHAR(32) NOT NULL,
		priority VARCHAR(16) NOT NULL CHECK (priority IN ('low', 'medium', 'high')),
		title TEXT NOT NULL,
		message TEXT NOT NULL,
		petition_id UUID NOT NULL REFERENCES petitions(id) ON DELETE CASCADE,
		petition_number VARCHAR(32) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_petition ON notifications (petition_id);`,
	`CREATE TABLE IF NOT EXISTS notification_deliveries (
		notification_id UUID NOT NULL REFERENCES notifications(id) ON DELETE CASCADE,
		recipient_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		petition_id UUID NOT NULL,
		type VARCHAR(32) NOT NULL,
		read_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (notification_id, recipient_id)
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uniq_notification_deliveries_dedupe
		ON notification_deliveries (petition_id, type, recipient_id);`,
	`CREATE INDEX IF NOT EXISTS idx_notification_deliveries_unread
		ON notification_deliveries (recipient_id)
		WHERE read_at IS NULL;`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
