package sqldb

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/alexedwards/scs/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wansing/artigo/auth"
	"github.com/wansing/artigo/sqldb/sqlite3"
)

var _ auth.UserStore = (*UserDB)(nil)

func TestUserDB(t *testing.T) {
	userDB, err := NewUserDB(openTestDB(t))
	require.NoError(t, err)
	ctx := context.Background()

	u, err := userDB.InsertUser(ctx, " Alice@Example.com", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, u.UID)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.False(t, u.Disabled)

	_, err = userDB.InsertUser(ctx, "alice@example.com", "other1")
	assert.ErrorIs(t, err, auth.ErrMailTaken)

	_, err = userDB.InsertUser(ctx, "bob@example.com", "")
	assert.Error(t, err)

	got, err := userDB.GetUser(ctx, u.UID)
	require.NoError(t, err)
	assert.Equal(t, u, got)

	_, err = userDB.GetUser(ctx, "missing")
	assert.ErrorIs(t, err, auth.ErrUserNotFound)

	got, err = userDB.LoginUser(ctx, "ALICE@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, u.UID, got.UID)

	_, err = userDB.LoginUser(ctx, "alice@example.com", "wrong")
	assert.ErrorIs(t, err, auth.ErrWrongPassword)

	_, err = userDB.LoginUser(ctx, "carol@example.com", "secret1")
	assert.ErrorIs(t, err, auth.ErrUserNotFound)

	require.NoError(t, userDB.SetDisabled(ctx, "alice@example.com", true))
	got, err = userDB.LoginUser(ctx, "alice@example.com", "secret1")
	require.NoError(t, err)
	assert.True(t, got.Disabled)

	assert.ErrorIs(t, userDB.SetDisabled(ctx, "carol@example.com", true), auth.ErrUserNotFound)

	require.NoError(t, userDB.SetPassword(ctx, "alice@example.com", "changed"))
	_, err = userDB.LoginUser(ctx, "alice@example.com", "secret1")
	assert.ErrorIs(t, err, auth.ErrWrongPassword)
	_, err = userDB.LoginUser(ctx, "alice@example.com", "changed")
	assert.NoError(t, err)
}

func TestNewUserDB_Twice(t *testing.T) {
	db := openTestDB(t)
	_, err := NewUserDB(db)
	require.NoError(t, err)
	_, err = NewUserDB(db)
	require.NoError(t, err)
}

func TestOpen(t *testing.T) {
	db, err := Open(MemoryURL)
	require.NoError(t, err)
	defer db.Close()

	// the in-memory database is kept across statements
	_, err = NewDocumentStore(db)
	require.NoError(t, err)
	var count int
	require.NoError(t, db.QueryRow(`SELECT count(*) FROM document`).Scan(&count))
	assert.Equal(t, 0, count)

	_, err = Open("postgres://localhost/artigo")
	assert.Error(t, err)

	_, err = Open("::not a url")
	assert.Error(t, err)
}

func TestWithTimeFormat(t *testing.T) {
	assert.Equal(t, ":memory:?_time_format=sqlite", WithTimeFormat(":memory:"))
	assert.Equal(t, "a.db?_pragma=foreign_keys(1)&_time_format=sqlite", WithTimeFormat("a.db?_pragma=foreign_keys(1)"))
	assert.Equal(t, "a.db?_time_format=sqlite", WithTimeFormat("a.db?_time_format=sqlite"))
}

func TestSessionStore(t *testing.T) {
	testSessionStore(t, openTestDB(t))
}

func TestSessionStore_Open(t *testing.T) {
	for _, url := range []string{MemoryURL, "sqlite3:" + filepath.Join(t.TempDir(), "sessions.sqlite3")} {
		db, err := Open(url)
		require.NoError(t, err, url)
		t.Cleanup(func() { db.Close() })
		testSessionStore(t, db)
	}
}

// testSessionStore commits a session and reads it back. The expiry must be stored as a julian day.
func testSessionStore(t *testing.T, db *sql.DB) {
	t.Helper()

	store, err := sqlite3.NewSessionStore(db)
	require.NoError(t, err)
	_, err = sqlite3.NewSessionStore(db)
	require.NoError(t, err, "creating twice")

	sm := scs.New()
	sm.Store = store

	ctx, err := sm.Load(context.Background(), "")
	require.NoError(t, err)
	sm.Put(ctx, "client", "abc")
	token, _, err := sm.Commit(ctx)
	require.NoError(t, err)

	var expiry sql.NullFloat64
	require.NoError(t, db.QueryRow(`SELECT expiry FROM sessions WHERE token = ?`, token).Scan(&expiry))
	assert.True(t, expiry.Valid)

	ctx, err = sm.Load(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "abc", sm.GetString(ctx, "client"))
}
