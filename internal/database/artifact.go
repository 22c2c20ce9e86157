package database

import "database/sql"

// SaveModelArtifact stores the trained model JSON, replacing any prior one.
// There is exactly one artifact row; training is a full rebuild.
func (db *DB) SaveModelArtifact(payload string, sampleSize int) error {
	_, err := db.conn.Exec(
		`INSERT OR REPLACE INTO model_artifact (id, payload, sample_size, trained_at)
		VALUES (1, ?, ?, datetime('now'))`,
		payload, sampleSize,
	)
	return err
}

// LoadModelArtifact returns the stored model artifact, or nil if none exists.
func (db *DB) LoadModelArtifact() (*ModelArtifact, error) {
	row := db.conn.QueryRow(
		`SELECT payload, sample_size, trained_at FROM model_artifact WHERE id = 1`,
	)
	var a ModelArtifact
	if err := row.Scan(&a.Payload, &a.SampleSize, &a.TrainedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

// DeleteModelArtifact discards the trained model.
func (db *DB) DeleteModelArtifact() error {
	_, err := db.conn.Exec(`DELETE FROM model_artifact WHERE id = 1`)
	return err
}
