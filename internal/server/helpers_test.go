package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	logdomain "github.com/indrajit912/hermes/internal/apilog/domain"
	logrepo "github.com/indrajit912/hermes/internal/apilog/repository"
	logsvc "github.com/indrajit912/hermes/internal/apilog/service"
	"github.com/indrajit912/hermes/internal/config"
	botdomain "github.com/indrajit912/hermes/internal/emailbot/domain"
	botrepo "github.com/indrajit912/hermes/internal/emailbot/repository"
	botsvc "github.com/indrajit912/hermes/internal/emailbot/service"
	"github.com/indrajit912/hermes/internal/identity"
	"github.com/indrajit912/hermes/internal/mailer"
	"github.com/indrajit912/hermes/internal/secrets"
	userdomain "github.com/indrajit912/hermes/internal/user/domain"
	userrepo "github.com/indrajit912/hermes/internal/user/repository"
	usersvc "github.com/indrajit912/hermes/internal/user/service"
)

const testStaticKey = "test-static-key"

// Prometheus collectors register process-wide, so the whole package shares
// one instance.
var (
	metricsOnce sync.Once
	testMetrics *HTTPMetrics
)

func sharedMetrics() *HTTPMetrics {
	metricsOnce.Do(func() { testMetrics = NewHTTPMetrics() })
	return testMetrics
}

type fakeTransport struct {
	mu    sync.Mutex
	sent  []mailer.Message
	creds []mailer.Credentials
	fail  bool
}

func (f *fakeTransport) Send(ctx context.Context, creds mailer.Credentials, msg mailer.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return mailer.ErrSend
	}
	f.sent = append(f.sent, msg)
	f.creds = append(f.creds, creds)
	return nil
}

type testServer struct {
	engine    *gin.Engine
	db        *gorm.DB
	cipher    *secrets.Cipher
	cfg       config.Config
	users     userdomain.Service
	usersRepo userdomain.Repository
	transport *fakeTransport
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&userdomain.User{}, &botdomain.EmailBot{}, &logdomain.APILog{}))

	key, err := secrets.GenerateKey()
	require.NoError(t, err)
	cipher := secrets.New(key)

	cfg := config.Config{
		StaticKey: testStaticKey,
		Mail: config.MailConfig{
			BotEmail:    "relay@example.com",
			BotPassword: "relay-password",
			SMTPHost:    "smtp.example.com",
			SMTPPort:    587,
			FromName:    "Hermes Bot",
			UsageLimit:  2,
		},
	}

	log := zap.NewNop()
	usersRepo := userrepo.Provide()
	botsRepo := botrepo.Provide()
	logsRepo := logrepo.Provide()

	users := usersvc.New(usersvc.Params{
		DB:       conn,
		Log:      log,
		Repo:     usersRepo,
		Bots:     botsRepo,
		Logs:     logsRepo,
		Cipher:   cipher,
		Notifier: mailer.NoOpNotifier{},
	})
	bots := botsvc.New(botsvc.Params{DB: conn, Log: log, Repo: botsRepo, Cipher: cipher})
	logs := logsvc.New(logsvc.Params{DB: conn, Log: log, Repo: logsRepo})

	transport := &fakeTransport{}
	metrics := sharedMetrics()
	engine := NewEngine(log, metrics)

	srv := NewServer(ServerParams{
		Gin:       engine,
		Cfg:       cfg,
		DB:        conn,
		Log:       log,
		Resolver:  identity.NewResolver(conn, usersRepo, cipher, cfg.StaticKey),
		Users:     users,
		UsersRepo: usersRepo,
		Bots:      bots,
		Logs:      logs,
		Transport: transport,
		Metrics:   metrics,
	})
	srv.RegisterRoutes()

	return &testServer{
		engine:    engine,
		db:        conn,
		cipher:    cipher,
		cfg:       cfg,
		users:     users,
		usersRepo: usersRepo,
		transport: transport,
	}
}

func (ts *testServer) request(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	ts.engine.ServeHTTP(rec, req)
	return rec
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func staticKeyHeader() map[string]string {
	return map[string]string{HeaderStaticKey: testStaticKey}
}

// approvedUser registers and approves an account, returning its id and key.
func (ts *testServer) approvedUser(t *testing.T, email string) (string, string) {
	t.Helper()
	ctx := context.Background()

	resp, err := ts.users.Register(ctx, userdomain.RegisterRequest{Name: "Test User", Email: email})
	require.NoError(t, err)
	result, err := ts.users.Approve(ctx, resp.ID)
	require.NoError(t, err)
	return resp.ID, result.APIKey
}

func (ts *testServer) pendingUser(t *testing.T, email string) (string, string) {
	t.Helper()

	resp, err := ts.users.Register(context.Background(), userdomain.RegisterRequest{Name: "Test User", Email: email})
	require.NoError(t, err)

	stored, err := ts.usersRepo.FindByID(context.Background(), ts.db, resp.ID)
	require.NoError(t, err)
	key, err := stored.PendingAPIKey(ts.cipher)
	require.NoError(t, err)
	return resp.ID, key
}

func (ts *testServer) makeAdmin(t *testing.T, userID string) {
	t.Helper()

	stored, err := ts.usersRepo.FindByID(context.Background(), ts.db, userID)
	require.NoError(t, err)
	stored.IsAdmin = true
	require.NoError(t, ts.usersRepo.Update(context.Background(), ts.db, stored))
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	return payload
}

func errorType(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	payload := decodeBody(t, rec)
	errObj, ok := payload["error"].(map[string]any)
	if !ok {
		t.Fatalf("no error object in response: %s", rec.Body.String())
	}
	typ, _ := errObj["type"].(string)
	return typ
}
