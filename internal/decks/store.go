// Package decks is the registry of generated slide decks. Each deck is a
// .pptx file in the decks directory plus a SQLite row holding its title,
// BLAKE3 hash and the xz-compressed lesson it was built from.
package decks

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/ulikunitz/xz"
	"github.com/zeebo/blake3"

	"github.com/FocuswithJustin/JuniperLessons/core/errors"
	"github.com/FocuswithJustin/JuniperLessons/core/pptx"
	"github.com/FocuswithJustin/JuniperLessons/core/sqlite"
	"github.com/FocuswithJustin/JuniperLessons/internal/logging"
	"github.com/FocuswithJustin/JuniperLessons/internal/validation"
)

// osRename is a variable to allow testing of rename errors.
var osRename = os.Rename

// migrations are applied in order; index i brings the schema to version i+1.
var migrations = []string{`
CREATE TABLE IF NOT EXISTS decks (
	id         TEXT PRIMARY KEY,
	filename   TEXT NOT NULL UNIQUE,
	title      TEXT NOT NULL,
	slides     INTEGER NOT NULL,
	size       INTEGER NOT NULL,
	blake3     TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	lesson_xz  BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_decks_created ON decks(created_at);
`}

// Deck describes one registered deck.
type Deck struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	Title     string    `json:"title"`
	Slides    int       `json:"slides"`
	Size      int64     `json:"size"`
	BLAKE3    string    `json:"blake3"`
	CreatedAt time.Time `json:"created_at"`
}

type deckRow struct {
	ID        string `db:"id"`
	Filename  string `db:"filename"`
	Title     string `db:"title"`
	Slides    int    `db:"slides"`
	Size      int64  `db:"size"`
	BLAKE3    string `db:"blake3"`
	CreatedAt int64  `db:"created_at"`
}

func (r deckRow) deck() Deck {
	return Deck{
		ID:        r.ID,
		Filename:  r.Filename,
		Title:     r.Title,
		Slides:    r.Slides,
		Size:      r.Size,
		BLAKE3:    r.BLAKE3,
		CreatedAt: time.Unix(r.CreatedAt, 0).UTC(),
	}
}

// Store is the deck registry.
type Store struct {
	dir string
	db  *sqlx.DB
	now func() time.Time
}

// Open opens or creates the registry. Deck files live in dir; the database
// is at dbPath.
func Open(ctx context.Context, dir, dbPath string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.NewIO("create", dir, err)
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, errors.NewIO("create", filepath.Dir(dbPath), err)
	}

	conn, err := sqlite.OpenWritable(ctx, dbPath)
	if err != nil {
		return nil, fmt.Errorf("open deck registry: %w", err)
	}
	if _, err := sqlite.Migrate(ctx, conn, migrations); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate deck registry: %w", err)
	}
	db := sqlx.NewDb(conn, sqlite.DriverName())

	return &Store{dir: dir, db: db, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Dir returns the decks directory.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes data as a new deck and registers it with the lesson JSON it
// was generated from. The file is written atomically before the row is
// inserted; a failed insert removes it again.
func (s *Store) Save(ctx context.Context, title string, data, lessonJSON []byte) (*Deck, error) {
	slides, err := pptx.Read(data)
	if err != nil {
		return nil, fmt.Errorf("refusing to register deck: %w", err)
	}

	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	filename := "lesson_" + id + ".pptx"
	path := filepath.Join(s.dir, filename)

	if err := writeAtomic(s.dir, path, data); err != nil {
		return nil, err
	}

	compressed, err := compress(lessonJSON)
	if err != nil {
		os.Remove(path)
		return nil, err
	}

	row := deckRow{
		ID:        id,
		Filename:  filename,
		Title:     title,
		Slides:    len(slides),
		Size:      int64(len(data)),
		BLAKE3:    Hash(data),
		CreatedAt: s.now().Unix(),
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO decks (id, filename, title, slides, size, blake3, created_at, lesson_xz)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		row.ID, row.Filename, row.Title, row.Slides, row.Size, row.BLAKE3, row.CreatedAt, compressed)
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("register deck: %w", err)
	}

	d := row.deck()
	logging.DeckWritten(ctx, d.ID, d.Filename, d.Size, d.Slides, "blake3", d.BLAKE3)
	return &d, nil
}

// Path resolves a download filename to its file. Only generated deck names
// are accepted; a missing file is a NotFoundError.
func (s *Store) Path(filename string) (string, error) {
	if err := validation.ValidateDeckFilename(filename); err != nil {
		return "", &errors.ValidationError{Field: "filename", Value: filename, Message: "not a deck filename", Err: err}
	}
	rel, err := validation.SanitizePath(s.dir, filename)
	if err != nil {
		return "", &errors.ValidationError{Field: "filename", Value: filename, Message: "invalid path", Err: err}
	}
	path := filepath.Join(s.dir, rel)
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return "", errors.NewNotFound("deck", filename)
	}
	return path, nil
}

// List returns all decks, newest first.
func (s *Store) List(ctx context.Context) ([]Deck, error) {
	var rows []deckRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT id, filename, title, slides, size, blake3, created_at
		 FROM decks ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, errors.Wrap(err, "list decks")
	}
	decks := make([]Deck, 0, len(rows))
	for _, r := range rows {
		decks = append(decks, r.deck())
	}
	return decks, nil
}

// Get returns one deck by id.
func (s *Store) Get(ctx context.Context, id string) (*Deck, error) {
	var row deckRow
	err := s.db.GetContext(ctx, &row,
		`SELECT id, filename, title, slides, size, blake3, created_at
		 FROM decks WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFound("deck", id)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get deck %s", id)
	}
	d := row.deck()
	return &d, nil
}

// Lesson returns the decompressed lesson JSON stored with a deck.
func (s *Store) Lesson(ctx context.Context, id string) ([]byte, error) {
	var compressed []byte
	err := s.db.GetContext(ctx, &compressed, `SELECT lesson_xz FROM decks WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFound("deck", id)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get lesson %s", id)
	}
	data, err := decompress(compressed)
	if err != nil {
		return nil, fmt.Errorf("%w: stored lesson %s: %w", errors.ErrInternal, id, err)
	}
	return data, nil
}

// Verify recomputes the BLAKE3 hash of a deck's file and compares it with
// the registered value.
func (s *Store) Verify(ctx context.Context, id string) (bool, error) {
	d, err := s.Get(ctx, id)
	if err != nil {
		return false, err
	}
	data, err := os.ReadFile(filepath.Join(s.dir, d.Filename))
	if err != nil {
		return false, errors.NewIO("read", d.Filename, err)
	}
	return Hash(data) == d.BLAKE3, nil
}

// Hash returns the hex BLAKE3-256 digest of data.
func Hash(data []byte) string {
	h := blake3.Sum256(data)
	return hex.EncodeToString(h[:])
}

func writeAtomic(dir, path string, data []byte) error {
	tempFile, err := os.CreateTemp(dir, ".deck-*")
	if err != nil {
		return errors.NewIO("create temp file in", dir, err)
	}
	tempPath := tempFile.Name()

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		os.Remove(tempPath)
		return errors.NewIO("write", tempPath, err)
	}
	if err := tempFile.Close(); err != nil {
		os.Remove(tempPath)
		return errors.NewIO("close", tempPath, err)
	}

	// Rename to final path (atomic on POSIX)
	if err := osRename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return errors.NewIO("rename", path, err)
	}
	return nil
}

func compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	if err != nil {
		return nil, fmt.Errorf("create xz writer: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("compress lesson: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("compress lesson: %w", err)
	}
	return buf.Bytes(), nil
}

func decompress(data []byte) ([]byte, error) {
	r, err := xz.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, &errors.ParseError{Format: "xz", Message: err.Error(), Err: err}
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, &errors.ParseError{Format: "xz", Message: err.Error(), Err: err}
	}
	return out, nil
}
