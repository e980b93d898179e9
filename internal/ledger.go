package internal

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/quietbit/keymint"
)

// IssuanceRecord is one row of the issuance ledger: the public facts of a
// minted certificate. No key material or password is ever stored.
type IssuanceRecord struct {
	SerialNumber    string    `db:"serial_number"`
	Subject         string    `db:"subject"`
	Issuer          string    `db:"issuer"`
	NotBefore       time.Time `db:"not_before"`
	NotAfter        time.Time `db:"not_after"`
	Format          string    `db:"format"`
	KeystorePath    string    `db:"keystore_path"`
	CertificatePath string    `db:"certificate_path"`
	CreatedAt       time.Time `db:"created_at"`
}

// Ledger records every successful mint in a SQLite database, giving a
// build-server audit trail of which trial certificates exist and when
// they expire.
type Ledger struct {
	*sqlx.DB
}

// OpenLedger opens (or creates) the ledger database at path.
func OpenLedger(path string) (*Ledger, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening ledger database: %w", err)
	}
	// Single writer, one-shot tool — no pooling needed.
	db.SetMaxOpenConns(1)

	l := &Ledger{DB: db}
	if err := l.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initializing ledger schema: %w", err)
	}

	slog.Debug("issuance ledger opened", "path", path)
	return l, nil
}

func (l *Ledger) initSchema() error {
	_, err := l.Exec(`
		CREATE TABLE IF NOT EXISTS issuances (
			serial_number    text NOT NULL,
			subject          text NOT NULL,
			issuer           text NOT NULL,
			not_before       timestamp NOT NULL,
			not_after        timestamp NOT NULL,
			format           text NOT NULL,
			keystore_path    text NOT NULL,
			certificate_path text NOT NULL,
			created_at       timestamp NOT NULL,
			PRIMARY KEY(serial_number, issuer)
		);
	`)
	return err
}

// Record inserts the result of a successful mint.
func (l *Ledger) Record(res *keymint.Result) error {
	_, err := l.NamedExec(`
		INSERT INTO issuances (
			serial_number, subject, issuer, not_before, not_after,
			format, keystore_path, certificate_path, created_at
		) VALUES (
			:serial_number, :subject, :issuer, :not_before, :not_after,
			:format, :keystore_path, :certificate_path, :created_at
		)`, IssuanceRecord{
		SerialNumber:    res.SerialNumber,
		Subject:         res.Subject,
		Issuer:          res.Issuer,
		NotBefore:       res.NotBefore,
		NotAfter:        res.NotAfter,
		Format:          string(res.Format),
		KeystorePath:    res.KeystorePath,
		CertificatePath: res.CertificatePath,
		CreatedAt:       time.Now(),
	})
	if err != nil {
		return fmt.Errorf("recording issuance: %w", err)
	}
	return nil
}

// All returns every ledger row, newest first.
func (l *Ledger) All() ([]IssuanceRecord, error) {
	var records []IssuanceRecord
	if err := l.Select(&records, "SELECT * FROM issuances ORDER BY created_at DESC"); err != nil {
		return nil, fmt.Errorf("reading ledger: %w", err)
	}
	return records, nil
}
