package database

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"linux_challenge/internal/platform/config"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
)

var DB *sql.DB

func Connect() {
	var err error
	DB, err = sql.Open("pgx", config.AppConfig.DBConnStr)
	if err != nil {
		log.Fatalf("Error opening database: %v", err)
	}

	DB.SetMaxOpenConns(25)
	DB.SetMaxIdleConns(25)
	DB.SetConnMaxLifetime(5 * time.Minute)

	if err = DB.Ping(); err != nil {
		log.Fatalf("Error connecting to database: %v", err)
	}

	fmt.Println("Successfully connected to PostgreSQL database!")
}

func Close() {
	if DB != nil {
		DB.Close()
		fmt.Println("Database connection closed.")
	}
}

// Schema statements are executed one by one because the pgx stdlib driver
// runs the extended protocol, which rejects multi-statement strings.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS participants (
		id              UUID PRIMARY KEY,
		name            TEXT NOT NULL,
		register_number TEXT NOT NULL,
		score           INTEGER NOT NULL DEFAULT 0 CHECK (score >= 0),
		streak          INTEGER NOT NULL DEFAULT 0 CHECK (streak >= 0),
		joined_at       TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		seq             BIGSERIAL
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id                 UUID PRIMARY KEY,
		round              INTEGER NOT NULL CHECK (round > 0),
		seq                BIGSERIAL,
		slug               TEXT NOT NULL,
		text               TEXT NOT NULL,
		kind               TEXT NOT NULL,
		correct_answer     TEXT NOT NULL,
		acceptable_answers JSONB NOT NULL DEFAULT '[]',
		difficulty         TEXT NOT NULL DEFAULT 'medium',
		created_at         TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at         TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS submissions (
		id                  UUID PRIMARY KEY,
		participant_id      UUID NOT NULL REFERENCES participants(id),
		task_id             UUID NOT NULL REFERENCES tasks(id),
		answer              TEXT NOT NULL,
		is_correct          BOOLEAN NOT NULL,
		points              INTEGER NOT NULL DEFAULT 0,
		is_first_solver     BOOLEAN NOT NULL DEFAULT FALSE,
		client_submitted_at TIMESTAMPTZ,
		submitted_at        TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT submissions_participant_task_key UNIQUE (participant_id, task_id)
	)`,
	// At most one first-solver row per task; concurrent claims lose with a
	// unique violation instead of racing a read-then-write.
	`CREATE UNIQUE INDEX IF NOT EXISTS submissions_first_solver_idx
		ON submissions (task_id) WHERE is_first_solver`,
	`CREATE TABLE IF NOT EXISTS hint_usages (
		participant_id UUID NOT NULL REFERENCES participants(id),
		task_id        UUID NOT NULL REFERENCES tasks(id),
		cost           INTEGER NOT NULL,
		used_at        TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT hint_usages_pkey PRIMARY KEY (participant_id, task_id)
	)`,
	`CREATE TABLE IF NOT EXISTS session_state (
		id                     INTEGER PRIMARY KEY CHECK (id = 1),
		version                BIGINT NOT NULL DEFAULT 0,
		status                 TEXT NOT NULL DEFAULT 'waiting',
		current_round          INTEGER NOT NULL DEFAULT 0,
		current_task_index     INTEGER NOT NULL DEFAULT 0,
		round_end_time         TIMESTAMPTZ,
		round_duration_seconds INTEGER NOT NULL DEFAULT 300,
		base_points            INTEGER NOT NULL DEFAULT 5,
		max_speed_bonus        INTEGER NOT NULL DEFAULT 15,
		hint_cost              INTEGER NOT NULL DEFAULT 3,
		broadcast_message      TEXT,
		broadcast_at           TIMESTAMPTZ,
		updated_at             TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS operators (
		id              UUID PRIMARY KEY,
		username        TEXT NOT NULL UNIQUE,
		hashed_password TEXT NOT NULL,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
}

func Migrate() {
	for _, stmt := range schemaStatements {
		if _, err := DB.Exec(stmt); err != nil {
			log.Fatalf("Error applying schema: %v", err)
		}
	}
	fmt.Println("Database schema is up to date.")
}
