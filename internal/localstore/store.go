// Package localstore guarda el estado del cliente (carrito y cookies de
// sesión) en un archivo SQLite.
package localstore

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Store implementa cart.Storage y el frasco de cookies del CLI.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open crea o abre la base en path. Crea el directorio si falta.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("crear directorio de datos: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect sqlite: %w", err)
	}

	// SQLite admite un solo escritor.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("execute %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

func (store *Store) Close() error {
	if store.db == nil {
		return nil
	}
	return store.db.Close()
}

// GetItem implementa cart.Storage.
func (store *Store) GetItem(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := store.db.QueryRowContext(ctx, `SELECT value FROM local_storage WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// SetItem implementa cart.Storage. Pisa el valor anterior.
func (store *Store) SetItem(ctx context.Context, key, value string) error {
	_, err := store.db.ExecContext(ctx, `
		INSERT INTO local_storage (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	return err
}

// RemoveItem implementa cart.Storage.
func (store *Store) RemoveItem(ctx context.Context, key string) error {
	_, err := store.db.ExecContext(ctx, `DELETE FROM local_storage WHERE key = ?`, key)
	return err
}

// SaveCookies aplica los Set-Cookie recibidos. MaxAge < 0 borra la cookie.
func (store *Store) SaveCookies(ctx context.Context, cookies []*http.Cookie) error {
	for _, cookie := range cookies {
		if cookie.MaxAge < 0 {
			if err := store.DeleteCookie(ctx, cookie.Name); err != nil {
				return err
			}
			continue
		}

		var expiresAt int64
		switch {
		case cookie.MaxAge > 0:
			expiresAt = store.now().Add(time.Duration(cookie.MaxAge) * time.Second).Unix()
		case !cookie.Expires.IsZero():
			expiresAt = cookie.Expires.Unix()
		}

		_, err := store.db.ExecContext(ctx, `
			INSERT INTO cookies (name, value, expires_at) VALUES (?, ?, ?)
			ON CONFLICT(name) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at`,
			cookie.Name, cookie.Value, expiresAt)
		if err != nil {
			return fmt.Errorf("guardar cookie %s: %w", cookie.Name, err)
		}
	}
	return nil
}

// Cookie devuelve el valor de name. Una cookie vencida cuenta como ausente.
func (store *Store) Cookie(ctx context.Context, name string) (string, bool, error) {
	var (
		value     string
		expiresAt int64
	)
	err := store.db.QueryRowContext(ctx, `SELECT value, expires_at FROM cookies WHERE name = ?`, name).Scan(&value, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	if store.expired(expiresAt) {
		return "", false, store.DeleteCookie(ctx, name)
	}
	return value, true, nil
}

// Cookies devuelve las cookies vigentes para adjuntar a un request.
func (store *Store) Cookies(ctx context.Context) ([]*http.Cookie, error) {
	rows, err := store.db.QueryContext(ctx, `SELECT name, value, expires_at FROM cookies ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*http.Cookie
	for rows.Next() {
		var (
			name, value string
			expiresAt   int64
		)
		if err := rows.Scan(&name, &value, &expiresAt); err != nil {
			return nil, err
		}
		if store.expired(expiresAt) {
			continue
		}
		out = append(out, &http.Cookie{Name: name, Value: value})
	}
	return out, rows.Err()
}

func (store *Store) DeleteCookie(ctx context.Context, name string) error {
	_, err := store.db.ExecContext(ctx, `DELETE FROM cookies WHERE name = ?`, name)
	return err
}

// ClearCookies borra todas las cookies guardadas.
func (store *Store) ClearCookies(ctx context.Context) error {
	_, err := store.db.ExecContext(ctx, `DELETE FROM cookies`)
	return err
}

func (store *Store) expired(expiresAt int64) bool {
	return expiresAt != 0 && store.now().Unix() >= expiresAt
}
