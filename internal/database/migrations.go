package database

import "fmt"

func (d *Database) RunMigrations() error {
	if err := d.gorm.AutoMigrate(&AnalysisRecord{}, &BatchJobRecord{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	// Recent lookups per address
	_, err := d.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_analysis_records_address_created
		ON analysis_records(address, created_at);
	`)
	if err != nil {
		return fmt.Errorf("failed to create address index: %w", err)
	}

	return nil
}
