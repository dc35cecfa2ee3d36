package main

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/wansing/artigo/auth"
	"github.com/wansing/artigo/backend"
	"github.com/wansing/artigo/config"
	"github.com/wansing/artigo/core"
	"github.com/wansing/artigo/frontend"
	"github.com/wansing/artigo/logging"
	"github.com/wansing/artigo/sqldb"
	"github.com/wansing/artigo/sqldb/sqlite3"
	"github.com/wansing/artigo/util"
	"golang.org/x/term"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1) // after deferred functions of run
	}
}

func run(args []string) error {

	// init FlagSet

	var name = "artigo"
	var isInit = len(args) > 0 && args[0] == "init"
	var initUser string
	var initDisable bool
	var extra func(*flag.FlagSet)

	if isInit {
		name = "artigo init"
		args = args[1:]
		extra = func(fs *flag.FlagSet) {
			fs.StringVar(&initUser, "user", "", "creates the author with this email `address`")
			fs.BoolVar(&initDisable, "disable", false, "disables the given author instead of creating it")
		}
	}

	cfg, err := config.Load(name, args, nil, extra)
	if err != nil {
		return err
	}

	log, err := logging.New(os.Stderr, cfg.LogLevel)
	if err != nil {
		return err
	}

	var ctx = context.Background()

	// database

	sqlDB, err := sqldb.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		log.Info(ctx, "closing database")
		sqlDB.Close()
	}()

	log.Info(ctx, "using database", "url", cfg.Database)

	users, err := sqldb.NewUserDB(sqlDB)
	if err != nil {
		return err
	}

	// init

	if isInit {
		if initUser == "" {
			return errors.New("init: missing -user")
		}
		if initDisable {
			if err := users.SetDisabled(ctx, initUser, true); err != nil {
				return fmt.Errorf("disabling author %s: %w", initUser, err)
			}
			log.Info(ctx, "author disabled", "email", auth.CleanEmail(initUser))
			return nil
		}
		return insertUser(ctx, users, initUser, log)
	}

	handler, err := assemble(ctx, sqlDB, users, cfg, log)
	if err != nil {
		return err
	}

	return listen(ctx, handler, cfg.Listen, log)
}

// assemble wires the stores, the session provider and the routers.
func assemble(ctx context.Context, sqlDB *sql.DB, users *sqldb.UserDB, cfg *config.Config, log logging.Logger) (http.Handler, error) {

	documents, err := sqldb.NewDocumentStore(sqlDB)
	if err != nil {
		return nil, err
	}

	var base = strings.Trim(cfg.Base, "/")
	if base != "" {
		base = "/" + base
	}

	sessions, err := newSessionManager(sqlDB, cfg, base)
	if err != nil {
		return nil, err
	}

	var secret = cfg.HMACSecret
	if secret == "" {
		if secret, err = util.RandomString32(); err != nil {
			return nil, err
		}
		log.Warn(ctx, "no hmac secret configured, sessions will end when the server restarts")
	}

	tokens := &auth.Tokens{
		Secret:   []byte(secret),
		Lifetime: cfg.TokenLifetime,
	}
	provider := auth.NewSessionProvider(sessions, users, tokens, log)

	repo := core.NewRepository(documents, log)
	if !cfg.SkipIndexes {
		if err := repo.EnsureIndexes(ctx); err != nil {
			return nil, err
		}
	}

	fe := &frontend.Frontend{
		Auth:     provider,
		Base:     base,
		Log:      log,
		PageSize: cfg.PageSize,
		Reader:   repo,
		Sessions: sessions,
	}

	be := &backend.Backend{
		Auth:        provider,
		Base:        base,
		GateTimeout: cfg.GateTimeout,
		Log:         log,
		Repo:        repo,
		Sessions:    sessions,
	}

	// mux
	//
	// golang mux recovers from panics, so the program won't crash

	var mux = http.NewServeMux()
	var backendRouter = sessions.LoadAndSave(be.Router())

	util.HandlePrefix(mux, base, "/admin/session", be.SessionEvents()) // loads the session itself
	util.HandlePrefix(mux, base, "/admin", backendRouter)
	util.HandlePrefix(mux, base, "/admin/", backendRouter)
	util.HandlePrefix(mux, base, "/", sessions.LoadAndSave(fe.Router()))

	return mux, nil
}

// newSessionManager is configured for base, which has no trailing slash.
func newSessionManager(sqlDB *sql.DB, cfg *config.Config, base string) (*scs.SessionManager, error) {

	store, err := sqlite3.NewSessionStore(sqlDB)
	if err != nil {
		return nil, err
	}

	sessions := scs.New()
	sessions.Store = store
	sessions.Cookie.Path = base + "/"
	sessions.Cookie.Persist = false                 // don't store cookie across browser sessions
	sessions.Cookie.SameSite = http.SameSiteLaxMode // good CSRF protection if HTTP GET doesn't modify anything
	sessions.Cookie.Secure = cfg.SecureCookie
	sessions.IdleTimeout = cfg.SessionIdle
	sessions.Lifetime = cfg.SessionLifetime
	return sessions, nil
}

func insertUser(ctx context.Context, users *sqldb.UserDB, email string, log logging.Logger) error {

	email = auth.CleanEmail(email)
	if err := auth.ValidateEmail(email); err != nil {
		return err
	}

	fmt.Printf("password for author %s: ", email)
	pass1, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("reading password: %w", err)
	}

	fmt.Printf("repeat password: ")
	pass2, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("reading password: %w", err)
	}

	if !bytes.Equal(pass1, pass2) {
		return errors.New("passwords don't match")
	}

	if err := auth.ValidatePassword(string(pass1)); err != nil {
		return err
	}

	user, err := users.InsertUser(ctx, email, string(pass1))
	if err != nil {
		return fmt.Errorf("creating author %s: %w", email, err)
	}

	log.Info(ctx, "author created", "principal", user.UID, "email", user.Email)
	return nil
}

func listen(ctx context.Context, handler http.Handler, addr string, log logging.Logger) error {

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	log.Info(ctx, "listening", "addr", addr)

	// event streams end when the base context is canceled
	baseCtx, cancelBase := context.WithCancel(ctx)
	defer cancelBase()

	httpSrv := &http.Server{
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		BaseContext:  func(net.Listener) context.Context { return baseCtx },
	}
	httpSrv.RegisterOnShutdown(cancelBase)

	sigintChannel := make(chan os.Signal, 1)
	serveErr := make(chan error, 1)

	go func() {
		// don't panic, we want a graceful shutdown
		if err := httpSrv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// graceful shutdown

	signal.Notify(sigintChannel, os.Interrupt, syscall.SIGTERM) // SIGINT (Interrupt) or SIGTERM
	defer signal.Stop(sigintChannel)

	select {
	case <-sigintChannel:
	case err := <-serveErr:
		if err != nil {
			log.Error(ctx, "serving failed", "err", err)
			return err
		}
	}

	log.Info(ctx, "shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn(ctx, "graceful shutdown failed", "err", err)
		return httpSrv.Close()
	}
	return nil
}
