package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/simp-lee/logger"
	"gorm.io/gorm"

	"github.com/simp-lee/customerbase/internal/config"
	"github.com/simp-lee/customerbase/internal/pkg"
)

type fakeHTTPServer struct {
	listenErr      error
	listenStarted  chan struct{}
	shutdownCalled bool
	stopCh         chan struct{}
	mu             sync.Mutex
}

func (f *fakeHTTPServer) ListenAndServe() error {
	if f.listenStarted != nil {
		close(f.listenStarted)
	}
	if f.listenErr != nil {
		return f.listenErr
	}
	if f.stopCh != nil {
		<-f.stopCh
		return http.ErrServerClosed
	}
	return http.ErrServerClosed
}

func (f *fakeHTTPServer) Shutdown(context.Context) error {
	f.mu.Lock()
	f.shutdownCalled = true
	f.mu.Unlock()
	if f.stopCh != nil {
		close(f.stopCh)
	}
	return nil
}

func (f *fakeHTTPServer) wasShutdownCalled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.shutdownCalled
}

// corsProbe sends a cross-origin GET through an engine running only the given
// CORS middleware and returns the Access-Control-Allow-Origin header.
func corsProbe(handler gin.HandlerFunc) string {
	r := gin.New()
	r.Use(handler)
	r.GET("/probe", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Origin", "https://admin.example.com")
	r.ServeHTTP(w, req)

	return w.Header().Get("Access-Control-Allow-Origin")
}

func TestResolveCORS(t *testing.T) {
	t.Run("release mode without allowlist installs no middleware", func(t *testing.T) {
		handler, ok := resolveCORS(gin.ReleaseMode, &config.CORSConfig{})
		if ok {
			t.Fatal("expected no CORS middleware in release mode without allowlist")
		}
		if handler != nil {
			t.Fatal("expected nil handler when middleware is skipped")
		}
	})

	t.Run("debug mode without allowlist permits any origin", func(t *testing.T) {
		handler, ok := resolveCORS(gin.DebugMode, &config.CORSConfig{})
		if !ok {
			t.Fatal("expected CORS middleware in debug mode")
		}
		if got := corsProbe(handler); got != "*" {
			t.Fatalf("Access-Control-Allow-Origin = %q, want %q", got, "*")
		}
	})

	t.Run("explicit allowlist is honored", func(t *testing.T) {
		handler, ok := resolveCORS(gin.ReleaseMode, &config.CORSConfig{
			AllowOrigins: []string{"https://admin.example.com"},
		})
		if !ok {
			t.Fatal("expected CORS middleware with explicit allowlist")
		}
		if got := corsProbe(handler); got != "https://admin.example.com" {
			t.Fatalf("Access-Control-Allow-Origin = %q, want %q", got, "https://admin.example.com")
		}
	})

	t.Run("origin outside allowlist is rejected", func(t *testing.T) {
		handler, ok := resolveCORS(gin.ReleaseMode, &config.CORSConfig{
			AllowOrigins: []string{"https://other.example.com"},
		})
		if !ok {
			t.Fatal("expected CORS middleware with explicit allowlist")
		}
		if got := corsProbe(handler); got != "" {
			t.Fatalf("Access-Control-Allow-Origin = %q, want empty", got)
		}
	})
}

func TestValidateGinMode(t *testing.T) {
	tests := []struct {
		name    string
		mode    string
		wantErr bool
	}{
		{name: "debug mode", mode: gin.DebugMode, wantErr: false},
		{name: "release mode", mode: gin.ReleaseMode, wantErr: false},
		{name: "test mode", mode: gin.TestMode, wantErr: false},
		{name: "invalid mode", mode: "staging", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateGinMode(tt.mode)
			if (err != nil) != tt.wantErr {
				t.Fatalf("validateGinMode() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func cleanupTestApp(t *testing.T, a *App) {
	t.Helper()
	if a == nil {
		return
	}
	if a.db != nil {
		sqlDB, dbErr := a.db.DB()
		if dbErr == nil {
			_ = sqlDB.Close()
		}
	}
	if a.logger != nil {
		_ = a.logger.Close()
	}
}

func TestNew_ReturnsError_WhenDatabaseSetupFails(t *testing.T) {
	cfg := &config.Config{
		Server: config.ServerConfig{
			Host: "127.0.0.1",
			Port: 8080,
			Mode: gin.TestMode,
		},
		Database: config.DatabaseConfig{
			Driver: "unsupported",
		},
		Log: config.LogConfig{
			Level:  "info",
			Format: "text",
		},
	}

	app, err := New(cfg)
	if err == nil {
		t.Fatalf("New() error = nil, want error")
	}
	if app != nil {
		t.Fatalf("New() app = %#v, want nil", app)
	}
	if !strings.Contains(err.Error(), "setup database") {
		t.Fatalf("New() error = %q, want contains %q", err.Error(), "setup database")
	}
}

func TestNew_CustomerRoundTrip(t *testing.T) {
	cfg := &config.Config{
		Server: config.ServerConfig{
			Host: "127.0.0.1",
			Port: 8080,
			Mode: gin.DebugMode,
		},
		Database: config.DatabaseConfig{
			Driver: "sqlite",
			SQLite: config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "roundtrip.db")},
		},
		Log: config.LogConfig{
			Level:  "info",
			Format: "text",
		},
	}

	app, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v, want nil", err)
	}
	defer cleanupTestApp(t, app)

	body := `{
		"first_name": "Ann",
		"last_name": "Lee",
		"email": "ann.lee@example.com",
		"phone_number": "+15550100",
		"date_of_birth": "1990-04-05T00:00:00Z",
		"bank_account_number": "NL91ABNA0417164300"
	}`

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/customers", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	app.engine.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("POST /api/v1/customers status = %d, want %d, body=%s", w.Code, http.StatusCreated, w.Body.String())
	}

	var created pkg.Response
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	result, ok := created.Data.(map[string]any)
	if !ok {
		t.Fatalf("create response data = %#v, want object", created.Data)
	}
	if done, _ := result["is_done"].(bool); !done {
		t.Fatalf("create response is_done = %v, want true", result["is_done"])
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/customers/by-email?email=ann.lee@example.com", nil)
	app.engine.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("GET by-email status = %d, want %d, body=%s", w.Code, http.StatusOK, w.Body.String())
	}

	var fetched pkg.Response
	if err := json.Unmarshal(w.Body.Bytes(), &fetched); err != nil {
		t.Fatalf("decode by-email response: %v", err)
	}
	dto, ok := fetched.Data.(map[string]any)
	if !ok {
		t.Fatalf("by-email response data = %#v, want object", fetched.Data)
	}
	if dto["first_name"] != "Ann" || dto["last_name"] != "Lee" {
		t.Fatalf("fetched customer = %v, want Ann Lee", dto)
	}
	if deleted, _ := dto["is_deleted"].(bool); deleted {
		t.Fatal("new customer should not be marked deleted")
	}
}

func TestAutoMigrate_CreatesCustomersTableInDebug(t *testing.T) {
	cfg := &config.Config{
		Server: config.ServerConfig{
			Host: "127.0.0.1",
			Port: 8080,
			Mode: gin.DebugMode,
		},
		Database: config.DatabaseConfig{
			Driver: "sqlite",
			SQLite: config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "debug-migrate.db")},
		},
		Log: config.LogConfig{
			Level:  "info",
			Format: "text",
		},
	}

	app, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v, want nil", err)
	}
	defer cleanupTestApp(t, app)

	type tableColumn struct {
		Name string `gorm:"column:name"`
	}
	var columns []tableColumn
	if err := app.db.Raw("PRAGMA table_info(customers)").Scan(&columns).Error; err != nil {
		t.Fatalf("query customers columns: %v", err)
	}

	foundState := false
	for _, col := range columns {
		if strings.EqualFold(col.Name, "state") {
			foundState = true
			break
		}
	}
	if !foundState {
		t.Fatalf("expected customers table to include state column, columns=%v", columns)
	}
}

func TestAutoMigrate_DoesNotRunOutsideDebug(t *testing.T) {
	cfg := &config.Config{
		Server: config.ServerConfig{
			Host: "127.0.0.1",
			Port: 8080,
			Mode: gin.TestMode,
		},
		Database: config.DatabaseConfig{
			Driver: "sqlite",
			SQLite: config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "no-migrate.db")},
		},
		Log: config.LogConfig{
			Level:  "info",
			Format: "text",
		},
	}

	app, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v, want nil", err)
	}
	defer cleanupTestApp(t, app)

	var tableCount int
	if err := app.db.Raw("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='customers'").Scan(&tableCount).Error; err != nil {
		t.Fatalf("query sqlite_master: %v", err)
	}
	if tableCount != 0 {
		t.Fatalf("expected customers table to be absent outside debug mode, count=%d", tableCount)
	}
}

func TestRun_ReturnsError_WhenListenFails(t *testing.T) {
	originalNewHTTPServer := newHTTPServer
	originalNotifyContext := notifyContext
	defer func() {
		newHTTPServer = originalNewHTTPServer
		notifyContext = originalNotifyContext
	}()

	listenErr := errors.New("listen failed")
	server := &fakeHTTPServer{listenErr: listenErr}
	newHTTPServer = func(string, http.Handler) httpServer {
		return server
	}
	notifyContext = func(context.Context, ...os.Signal) (context.Context, context.CancelFunc) {
		return context.WithCancel(context.Background())
	}

	a := &App{
		engine: gin.New(),
		logger: logger.Default(),
		cfg:    &config.Config{Server: config.ServerConfig{Host: "127.0.0.1", Port: 8080}},
	}

	err := a.Run()
	if err == nil {
		t.Fatalf("Run() error = nil, want error")
	}
	if !strings.Contains(err.Error(), "server error") {
		t.Fatalf("Run() error = %q, want contains %q", err.Error(), "server error")
	}
	if !errors.Is(err, listenErr) {
		t.Fatalf("Run() error = %v, want wraps %v", err, listenErr)
	}
}

func TestRun_ShutdownSignal_ClosesDatabase(t *testing.T) {
	originalNewHTTPServer := newHTTPServer
	originalNotifyContext := notifyContext
	defer func() {
		newHTTPServer = originalNewHTTPServer
		notifyContext = originalNotifyContext
	}()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("gorm.Open() error = %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db.DB() error = %v", err)
	}

	server := &fakeHTTPServer{listenStarted: make(chan struct{}), stopCh: make(chan struct{})}
	newHTTPServer = func(string, http.Handler) httpServer {
		return server
	}

	ctx, cancel := context.WithCancel(context.Background())
	notifyContext = func(context.Context, ...os.Signal) (context.Context, context.CancelFunc) {
		return ctx, cancel
	}

	a := &App{
		engine: gin.New(),
		db:     db,
		logger: logger.Default(),
		cfg:    &config.Config{Server: config.ServerConfig{Host: "127.0.0.1", Port: 8080}},
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.Run()
	}()

	select {
	case <-server.listenStarted:
	case <-time.After(2 * time.Second):
		t.Fatal("server did not start listening in time")
	}

	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("Run() error = %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return in time after shutdown signal")
	}

	if !server.wasShutdownCalled() {
		t.Fatal("expected server Shutdown() to be called")
	}

	if pingErr := sqlDB.Ping(); pingErr == nil {
		t.Fatal("expected database connection to be closed, but Ping() succeeded")
	}
}
