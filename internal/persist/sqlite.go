package persist

import (
	"fmt"
	"log/slog"
	"sync"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/zephyrtronium/calc"
)

const schema = `CREATE TABLE IF NOT EXISTS vars (
	letter TEXT PRIMARY KEY NOT NULL,
	value  TEXT NOT NULL
) STRICT;`

// SQLite stores variables in an SQLite database.
type SQLite struct {
	mu   sync.Mutex
	conn *sqlite.Conn
	prec uint
	// Log receives warnings about rows that can't be read. If nil, the
	// default logger is used.
	Log *slog.Logger
}

var _ calc.Persister = (*SQLite)(nil)

// OpenSQLite opens or creates a variable database at path. Loaded values have
// precision prec.
func OpenSQLite(path string, prec uint) (*SQLite, error) {
	conn, err := sqlite.OpenConn(path, sqlite.OpenReadWrite|sqlite.OpenCreate)
	if err != nil {
		return nil, fmt.Errorf("couldn't open variable database: %w", err)
	}
	if err := sqlitex.ExecuteScript(conn, schema, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("couldn't initialize variable database: %w", err)
	}
	return &SQLite{conn: conn, prec: prec}, nil
}

// Load reads all stored variables. A row whose value can't be parsed leaves
// its variable unset.
func (db *SQLite) Load() (calc.Snapshot, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	var s calc.Snapshot
	opts := sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			letter := stmt.ColumnText(0)
			if len(letter) != 1 || letter[0] < 'A' || letter[0] > 'Z' {
				return nil
			}
			x, err := calc.ParseLiteral(stmt.ColumnText(1), db.prec)
			if err != nil {
				log := db.Log
				if log == nil {
					log = slog.Default()
				}
				log.Warn("skipping unreadable variable", slog.String("var", letter), slog.Any("err", err))
				return nil
			}
			s[letter[0]-'A'] = x
			return nil
		},
	}
	if err := sqlitex.Execute(db.conn, `SELECT letter, value FROM vars ORDER BY letter`, &opts); err != nil {
		return calc.Snapshot{}, fmt.Errorf("couldn't load variables: %w", err)
	}
	return s, nil
}

// Save replaces all stored variables with s in one transaction.
func (db *SQLite) Save(s calc.Snapshot) (err error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	defer sqlitex.Save(db.conn)(&err)
	if err := sqlitex.Execute(db.conn, `DELETE FROM vars`, nil); err != nil {
		return fmt.Errorf("couldn't clear variables: %w", err)
	}
	for i, x := range s {
		if x == nil {
			continue
		}
		opts := sqlitex.ExecOptions{
			Args: []any{string(rune('A' + i)), x.Text('e', -1)},
		}
		if err := sqlitex.Execute(db.conn, `INSERT INTO vars (letter, value) VALUES (?, ?)`, &opts); err != nil {
			return fmt.Errorf("couldn't save variable %c: %w", 'A'+i, err)
		}
	}
	return nil
}

// Close closes the database.
func (db *SQLite) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.conn.Close()
}
