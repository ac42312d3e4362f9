package server

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	botdomain "github.com/indrajit912/hermes/internal/emailbot/domain"
	botrepo "github.com/indrajit912/hermes/internal/emailbot/repository"
	botsvc "github.com/indrajit912/hermes/internal/emailbot/service"
	"go.uber.org/zap"
)

func sendBody(botID string) map[string]any {
	body := map[string]any{
		"to":      []string{"rcpt@example.com"},
		"subject": "hello",
		"body":    "plain text",
	}
	if botID != "" {
		body["bot_id"] = botID
	}
	return body
}

func TestSendEmailDefaultBotEnforcesCap(t *testing.T) {
	ts := newTestServer(t)
	userID, key := ts.approvedUser(t, "sender@example.com")

	// The fixture caps default-bot sends at two.
	for i := 0; i < 2; i++ {
		rec := ts.request(t, http.MethodPost, "/api/v1/send-email", sendBody(""), bearer(key))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	rec := ts.request(t, http.MethodPost, "/api/v1/send-email", sendBody(""), bearer(key))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "limit_exceeded", errorType(t, rec))

	assert.Len(t, ts.transport.sent, 2)
	assert.Equal(t, "relay@example.com", ts.transport.creds[0].Email)

	stored, err := ts.usersRepo.FindByID(context.Background(), ts.db, userID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.DefaultBotUsage)
}

func TestSendEmailReleasesQuotaOnTransportFailure(t *testing.T) {
	ts := newTestServer(t)
	userID, key := ts.approvedUser(t, "sender@example.com")

	ts.transport.fail = true
	rec := ts.request(t, http.MethodPost, "/api/v1/send-email", sendBody(""), bearer(key))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "transport_error", errorType(t, rec))

	// The failed attempt must not burn quota.
	stored, err := ts.usersRepo.FindByID(context.Background(), ts.db, userID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.DefaultBotUsage)

	ts.transport.fail = false
	rec = ts.request(t, http.MethodPost, "/api/v1/send-email", sendBody(""), bearer(key))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSendEmailOwnBotSkipsQuota(t *testing.T) {
	ts := newTestServer(t)
	userID, key := ts.approvedUser(t, "sender@example.com")

	bots := botsvc.New(botsvc.Params{DB: ts.db, Log: zap.NewNop(), Repo: botrepo.Provide(), Cipher: ts.cipher})
	bot, err := bots.Create(context.Background(), userID, botdomain.CreateRequest{
		Email:      "own@example.com",
		Password:   "own-password",
		SMTPServer: "smtp.own.example.com",
		SMTPPort:   465,
	})
	require.NoError(t, err)

	rec := ts.request(t, http.MethodPost, "/api/v1/send-email", sendBody(bot.BotID), bearer(key))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	require.Len(t, ts.transport.creds, 1)
	assert.Equal(t, "own@example.com", ts.transport.creds[0].Email)
	assert.Equal(t, "smtp.own.example.com", ts.transport.creds[0].Host)

	stored, err := ts.usersRepo.FindByID(context.Background(), ts.db, userID)
	require.NoError(t, err)
	assert.Zero(t, stored.DefaultBotUsage)
}

func TestSendEmailRejectsForeignBot(t *testing.T) {
	ts := newTestServer(t)
	ownerID, _ := ts.approvedUser(t, "owner@example.com")
	_, key := ts.approvedUser(t, "other@example.com")

	bots := botsvc.New(botsvc.Params{DB: ts.db, Log: zap.NewNop(), Repo: botrepo.Provide(), Cipher: ts.cipher})
	bot, err := bots.Create(context.Background(), ownerID, botdomain.CreateRequest{
		Email:    "own@example.com",
		Password: "own-password",
	})
	require.NoError(t, err)

	rec := ts.request(t, http.MethodPost, "/api/v1/send-email", sendBody(bot.BotID), bearer(key))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, ts.transport.sent)
}

func TestSendEmailRequiresRecipients(t *testing.T) {
	ts := newTestServer(t)
	_, key := ts.approvedUser(t, "sender@example.com")

	rec := ts.request(t, http.MethodPost, "/api/v1/send-email", map[string]any{"subject": "x"}, bearer(key))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_error", errorType(t, rec))
}

func TestEmailBotCRUDOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	_, key := ts.approvedUser(t, "owner@example.com")

	rec := ts.request(t, http.MethodPost, "/api/v1/emailbot", map[string]any{
		"username": "newsletter",
		"email":    "bot@example.com",
		"password": "app-password",
	}, bearer(key))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	bot := decodeBody(t, rec)["bot"].(map[string]any)
	botID := bot["bot_id"].(string)

	rec = ts.request(t, http.MethodGet, "/api/v1/emailbot", nil, bearer(key))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody(t, rec)["bots"], 1)

	rec = ts.request(t, http.MethodPut, "/api/v1/emailbot/"+botID, map[string]any{
		"smtp_port": 465,
	}, bearer(key))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 465, decodeBody(t, rec)["bot"].(map[string]any)["smtp_port"])

	rec = ts.request(t, http.MethodDelete, "/api/v1/emailbot/"+botID, nil, bearer(key))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.request(t, http.MethodDelete, "/api/v1/emailbot/"+botID, nil, bearer(key))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
