package database

import (
	"database/sql"
	"log"
	"sync"

	"github.com/pitchline/pitchline/internal/cache"

	"github.com/pitchline/pitchline/config"
)

// Declare a package-level variable to hold the singleton instance.
// Ensure the instance is not accessible outside the package.
var instance *Datasource
var once sync.Once

type Datasource struct {
	Conn  *sql.DB
	Cache cache.Cache
}

func NewDataSource(configuration *config.Configuration) (IDataSource, error) {
	con, err := GetDBConnection(configuration)
	if err != nil {
		return nil, err
	}
	return con, nil
}

// GetDBConnection provides a global access point to the instance and initializes it if it's not already.
func GetDBConnection(configuration *config.Configuration) (*Datasource, error) {
	var err error
	once.Do(func() {
		con, errConn := ConnectDB(configuration.DataSource.Dns)
		if errConn != nil {
			err = errConn
			return
		}
		newCache, errCache := cache.NewCache()
		if errCache != nil {
			err = errCache
			return
		}
		instance = &Datasource{Conn: con, Cache: newCache}
	})
	if err != nil {
		return nil, err
	}
	return instance, nil
}

func ConnectDB(dns string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dns)
	if err != nil {
		return nil, err
	}
	err = db.Ping()
	if err != nil {
		log.Printf("database Connection error ❌: %v", err)
		return nil, err
	}
	err = createMatchSuggestionTable(db)
	if err != nil {
		return nil, err
	}
	err = createReviewTaskTable(db)
	if err != nil {
		return nil, err
	}
	err = createPitchGenerationTable(db)
	if err != nil {
		return nil, err
	}
	err = createDraftTable(db)
	if err != nil {
		return nil, err
	}
	return db, nil
}

// createReviewTaskTable creates a PostgreSQL table for the ReviewTask struct
func createReviewTaskTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS review_tasks (
			id SERIAL PRIMARY KEY,
			review_task_id TEXT NOT NULL UNIQUE,
			task_type TEXT NOT NULL,
			related_id TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			reject_reason TEXT,
			notes TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			completed_at TIMESTAMP
		)
	`)
	return err
}

// createMatchSuggestionTable creates a PostgreSQL table for the MatchSuggestion struct
func createMatchSuggestionTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS match_suggestions (
			id SERIAL PRIMARY KEY,
			match_id TEXT NOT NULL UNIQUE,
			campaign_id TEXT NOT NULL,
			media_id TEXT NOT NULL,
			vetting_score FLOAT NOT NULL DEFAULT 0,
			reach_estimate BIGINT NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'pending',
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

// createPitchGenerationTable creates a PostgreSQL table for the PitchGeneration struct
func createPitchGenerationTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS pitch_generations (
			id SERIAL PRIMARY KEY,
			pitch_gen_id TEXT NOT NULL UNIQUE,
			campaign_id TEXT NOT NULL,
			media_id TEXT NOT NULL,
			match_id TEXT REFERENCES match_suggestions(match_id),
			draft_text TEXT,
			subject_line TEXT,
			recipient_email TEXT,
			pitch_type TEXT NOT NULL DEFAULT 'initial',
			parent_pitch_gen_id TEXT REFERENCES pitch_generations(pitch_gen_id),
			follow_up_count INT NOT NULL DEFAULT 0,
			generation_status TEXT NOT NULL DEFAULT 'draft',
			pitch_state TEXT,
			scheduled_send_at TIMESTAMP,
			sent_at TIMESTAMP,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			meta_data JSONB
		)
	`)
	return err
}

// createDraftTable creates a PostgreSQL table for the Draft struct
func createDraftTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS drafts (
			id SERIAL PRIMARY KEY,
			draft_id TEXT NOT NULL UNIQUE,
			thread_id TEXT NOT NULL,
			subject TEXT,
			body TEXT,
			recipients JSONB,
			scheduled_send_at TIMESTAMP,
			sent_at TIMESTAMP,
			last_saved_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	return err
}
