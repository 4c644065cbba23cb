package store

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// CookieJar is an http.CookieJar that survives restarts. Cookies live in an in-memory
// cookiejar.Jar and every SetCookies is mirrored into sqlite; reopening replays the
// rows that have not expired. Cookies without an expiry are kept until Clear.
type CookieJar struct {
	db  *sql.DB
	log *zap.Logger

	mu  sync.Mutex
	jar *cookiejar.Jar
}

var _ http.CookieJar = (*CookieJar)(nil)

func (s Store) openSQLite(ctx context.Context) (*sql.DB, error) {
	if err := s.Ensure(); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", s.sqlitePath())
	if err != nil {
		return nil, err
	}
	// WAL lets the TUI and a CLI invocation share the file.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrateSQLite(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func migrateSQLite(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS cookies (
			host TEXT NOT NULL,
			name TEXT NOT NULL,
			path TEXT NOT NULL,
			domain TEXT NOT NULL,
			origin TEXT NOT NULL,
			value TEXT NOT NULL,
			expires_unixms INTEGER NOT NULL,
			secure INTEGER NOT NULL,
			http_only INTEGER NOT NULL,
			PRIMARY KEY (host, name, path, domain)
		);`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// OpenCookieJar opens (creating if needed) the jar in the store's sqlite file.
func (s Store) OpenCookieJar(ctx context.Context, log *zap.Logger) (*CookieJar, error) {
	if log == nil {
		log = zap.NewNop()
	}
	db, err := s.openSQLite(ctx)
	if err != nil {
		return nil, err
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	j := &CookieJar{db: db, log: log, jar: jar}
	if err := j.load(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return j, nil
}

func (j *CookieJar) load(ctx context.Context) error {
	now := time.Now().UnixMilli()
	if _, err := j.db.ExecContext(ctx,
		`DELETE FROM cookies WHERE expires_unixms > 0 AND expires_unixms <= ?`, now); err != nil {
		return err
	}
	rows, err := j.db.QueryContext(ctx,
		`SELECT origin, name, path, domain, value, expires_unixms, secure, http_only FROM cookies`)
	if err != nil {
		return err
	}
	defer rows.Close()

	byOrigin := map[string][]*http.Cookie{}
	var origins []string
	for rows.Next() {
		var (
			origin, name, path, domain, value string
			expires                           int64
			secure, httpOnly                  bool
		)
		if err := rows.Scan(&origin, &name, &path, &domain, &value, &expires, &secure, &httpOnly); err != nil {
			return err
		}
		c := &http.Cookie{
			Name:     name,
			Value:    value,
			Path:     path,
			Domain:   domain,
			Secure:   secure,
			HttpOnly: httpOnly,
		}
		if expires > 0 {
			c.Expires = time.UnixMilli(expires)
		}
		if _, ok := byOrigin[origin]; !ok {
			origins = append(origins, origin)
		}
		byOrigin[origin] = append(byOrigin[origin], c)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	for _, origin := range origins {
		u, err := url.Parse(origin)
		if err != nil {
			j.log.Warn("skip stored cookie origin", zap.String("origin", origin), zap.Error(err))
			continue
		}
		j.jar.SetCookies(u, byOrigin[origin])
	}
	return nil
}

func (j *CookieJar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.jar.Cookies(u)
}

func (j *CookieJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.jar.SetCookies(u, cookies)

	origin := (&url.URL{Scheme: u.Scheme, Host: u.Host, Path: u.Path}).String()
	host := strings.ToLower(u.Hostname())
	now := time.Now()
	for _, c := range cookies {
		if err := j.persist(host, origin, c, now); err != nil {
			j.log.Warn("persist cookie", zap.String("name", c.Name), zap.String("host", host), zap.Error(err))
		}
	}
}

func (j *CookieJar) persist(host, origin string, c *http.Cookie, now time.Time) error {
	ctx := context.Background()
	var expires int64
	switch {
	case c.MaxAge < 0:
		expires = -1
	case c.MaxAge > 0:
		expires = now.Add(time.Duration(c.MaxAge) * time.Second).UnixMilli()
	case !c.Expires.IsZero():
		expires = c.Expires.UnixMilli()
		if !c.Expires.After(now) {
			expires = -1
		}
	}
	if expires < 0 {
		_, err := j.db.ExecContext(ctx,
			`DELETE FROM cookies WHERE host = ? AND name = ? AND path = ? AND domain = ?`,
			host, c.Name, c.Path, c.Domain)
		return err
	}
	_, err := j.db.ExecContext(ctx, `INSERT INTO cookies
		(host, name, path, domain, origin, value, expires_unixms, secure, http_only)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(host, name, path, domain) DO UPDATE SET
			origin = excluded.origin,
			value = excluded.value,
			expires_unixms = excluded.expires_unixms,
			secure = excluded.secure,
			http_only = excluded.http_only`,
		host, c.Name, c.Path, c.Domain, origin, c.Value, expires, c.Secure, c.HttpOnly)
	return err
}

// Clear forgets every cookie, in memory and on disk.
func (j *CookieJar) Clear() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	jar, err := cookiejar.New(nil)
	if err != nil {
		return err
	}
	j.jar = jar
	_, err = j.db.ExecContext(context.Background(), `DELETE FROM cookies`)
	return err
}

// ClearHost forgets the cookies stored for host and keeps every other host's.
func (j *CookieJar) ClearHost(host string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	ctx := context.Background()
	if _, err := j.db.ExecContext(ctx, `DELETE FROM cookies WHERE host = ?`, strings.ToLower(host)); err != nil {
		return err
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return err
	}
	j.jar = jar
	return j.load(ctx)
}

// HostClearer clears one host's cookies; logout uses it scoped to the base URL.
type HostClearer struct {
	jar  *CookieJar
	host string
}

// ForURL scopes Clear to u's host.
func (j *CookieJar) ForURL(u *url.URL) HostClearer {
	return HostClearer{jar: j, host: strings.ToLower(u.Hostname())}
}

func (c HostClearer) Clear() error { return c.jar.ClearHost(c.host) }

func (j *CookieJar) Close() error {
	return j.db.Close()
}
