package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wansing/artigo/auth"
	"golang.org/x/crypto/bcrypt"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

type UserDB struct {
	*sql.DB
	get         *sql.Stmt
	insert      *sql.Stmt
	login       *sql.Stmt
	setDisabled *sql.Stmt
	setPassword *sql.Stmt
}

func NewUserDB(db *sql.DB) (*UserDB, error) {

	_, err := db.Exec(
		`CREATE TABLE IF NOT EXISTS usr (
			id INTEGER PRIMARY KEY,
			uid TEXT NOT NULL,
			mail VARCHAR(128) NOT NULL,
			password VARCHAR(72) NOT NULL,
			disabled INTEGER NOT NULL DEFAULT 0,
			created INTEGER NOT NULL,
			UNIQUE(uid),
			UNIQUE(mail)
		);`)
	if err != nil {
		return nil, err
	}

	var userDB = &UserDB{}
	userDB.DB = db
	userDB.get = mustPrepare(db, "SELECT uid, mail, disabled, created FROM usr WHERE uid = ? LIMIT 1")
	userDB.insert = mustPrepare(db, "INSERT INTO usr (uid, mail, password, created) VALUES (?, ?, ?, ?)")
	userDB.login = mustPrepare(db, "SELECT uid, mail, password, disabled, created FROM usr WHERE mail = ?")
	userDB.setDisabled = mustPrepare(db, "UPDATE usr SET disabled = ? WHERE mail = ?")
	userDB.setPassword = mustPrepare(db, "UPDATE usr SET password = ? WHERE mail = ?")
	return userDB, nil
}

func clean(mail string) string {
	mail = strings.TrimSpace(mail)
	mail = strings.ToLower(mail)
	return mail
}

func (db *UserDB) GetUser(ctx context.Context, uid string) (auth.User, error) {
	var u = auth.User{}
	var created int64
	err := db.get.QueryRowContext(ctx, uid).Scan(&u.UID, &u.Email, &u.Disabled, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return auth.User{}, auth.ErrUserNotFound
	}
	if err != nil {
		return auth.User{}, err
	}
	u.Created = time.Unix(created, 0)
	return u, nil
}

func (db *UserDB) InsertUser(ctx context.Context, mail, password string) (auth.User, error) {

	if password == "" {
		return auth.User{}, errors.New("no password given")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return auth.User{}, err
	}

	var u = auth.User{
		UID:     uuid.NewString(),
		Email:   clean(mail),
		Created: time.Unix(time.Now().Unix(), 0),
	}

	_, err = db.insert.ExecContext(ctx, u.UID, u.Email, string(hash), u.Created.Unix())
	if isUniqueViolation(err) {
		return auth.User{}, auth.ErrMailTaken
	}
	if err != nil {
		return auth.User{}, err
	}
	return u, nil
}

func (db *UserDB) LoginUser(ctx context.Context, mail, password string) (auth.User, error) {

	var u = auth.User{}
	var hash string
	var created int64

	err := db.login.QueryRowContext(ctx, clean(mail)).Scan(&u.UID, &u.Email, &hash, &u.Disabled, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return auth.User{}, auth.ErrUserNotFound
	}
	if err != nil {
		return auth.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return auth.User{}, auth.ErrWrongPassword
	}

	u.Created = time.Unix(created, 0)
	return u, nil
}

func (db *UserDB) SetDisabled(ctx context.Context, mail string, disabled bool) error {
	return affectOne(db.setDisabled.ExecContext(ctx, disabled, clean(mail)))
}

func (db *UserDB) SetPassword(ctx context.Context, mail, password string) error {
	if password == "" {
		return errors.New("no password given")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return affectOne(db.setPassword.ExecContext(ctx, string(hash), clean(mail)))
}

func affectOne(result sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return auth.ErrUserNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
