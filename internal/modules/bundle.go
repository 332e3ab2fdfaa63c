package modules

import (
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const bundleSchema = `
CREATE TABLE meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE modules (
	name   TEXT PRIMARY KEY,
	source TEXT NOT NULL
);
`

// Bundle is a single-file SQLite archive of module sources with the name
// of the entry module, so a program can be shipped and run as one file.
type Bundle struct {
	db      *sql.DB
	id      string
	entry   string
	created time.Time
}

// CreateBundle writes sources into a new bundle at path. An existing file is
// replaced. entry must be one of the modules.
func CreateBundle(path string, sources map[string]string, entry string) (*Bundle, error) {
	if _, ok := sources[entry]; !ok {
		return nil, fmt.Errorf("entry module %s not found among %d modules", entry, len(sources))
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("replacing bundle %s: %w", path, err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening bundle %s: %w", path, err)
	}
	b := &Bundle{db: db, id: uuid.NewString(), entry: entry, created: time.Now().UTC()}
	if err := b.write(sources); err != nil {
		db.Close()
		return nil, fmt.Errorf("writing bundle %s: %w", path, err)
	}
	return b, nil
}

func (b *Bundle) write(sources map[string]string) error {
	tx, err := b.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(bundleSchema); err != nil {
		return err
	}
	meta := map[string]string{
		"id":      b.id,
		"entry":   b.entry,
		"created": b.created.Format(time.RFC3339),
	}
	for k, v := range meta {
		if _, err := tx.Exec(`INSERT INTO meta (key, value) VALUES (?, ?)`, k, v); err != nil {
			return err
		}
	}
	for name, source := range sources {
		if _, err := tx.Exec(`INSERT INTO modules (name, source) VALUES (?, ?)`, name, source); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// OpenBundle opens an existing bundle.
func OpenBundle(path string) (*Bundle, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("opening bundle: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening bundle %s: %w", path, err)
	}
	b := &Bundle{db: db}
	if err := b.readMeta(); err != nil {
		db.Close()
		return nil, fmt.Errorf("reading bundle %s: %w", path, err)
	}
	return b, nil
}

func (b *Bundle) readMeta() error {
	rows, err := b.db.Query(`SELECT key, value FROM meta`)
	if err != nil {
		return err
	}
	defer rows.Close()

	meta := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return err
		}
		meta[k] = v
	}
	if err := rows.Err(); err != nil {
		return err
	}

	if _, err := uuid.Parse(meta["id"]); err != nil {
		return fmt.Errorf("bad bundle id %q: %w", meta["id"], err)
	}
	if meta["entry"] == "" {
		return fmt.Errorf("missing entry module")
	}
	created, err := time.Parse(time.RFC3339, meta["created"])
	if err != nil {
		return fmt.Errorf("bad creation time: %w", err)
	}
	b.id, b.entry, b.created = meta["id"], meta["entry"], created
	return nil
}

// Sources returns every module in the bundle.
func (b *Bundle) Sources() (map[string]string, error) {
	rows, err := b.db.Query(`SELECT name, source FROM modules`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sources := make(map[string]string)
	for rows.Next() {
		var name, source string
		if err := rows.Scan(&name, &source); err != nil {
			return nil, err
		}
		sources[name] = source
	}
	return sources, rows.Err()
}

// ID is the random identifier assigned when the bundle was created.
func (b *Bundle) ID() string { return b.id }

func (b *Bundle) Entry() string { return b.entry }

func (b *Bundle) Created() time.Time { return b.created }

func (b *Bundle) Close() error { return b.db.Close() }
