package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cricket-booking/internal/auth"
	"cricket-booking/internal/config"
	"cricket-booking/internal/logger"
	"cricket-booking/internal/services"
	"cricket-booking/internal/storage"
)

func quietLogger() *logger.Logger {
	return logger.NewLogger(logger.WithOutput(io.Discard))
}

func memoryConfig() *config.Config {
	return &config.Config{
		Server:   config.ServerConfig{Port: ":0", RateLimitRPS: 100},
		Database: config.DatabaseConfig{Driver: "memory"},
		Kafka:    config.KafkaConfig{MockMode: true},
		Auth:     config.AuthConfig{JWTSecret: "test-secret", TokenTTL: time.Hour},
		Booking:  config.BookingConfig{PlatformFeeBasisPoints: 500},
	}
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"serve", "migrate", "seed", "token"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}
}

func TestTokenCommand(t *testing.T) {
	t.Setenv("JWT_SECRET", "cli-secret")

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"--env-file", "does-not-exist.env", "token", "--user", "captain-7", "--role", "member"})
	require.NoError(t, root.Execute())

	id, err := auth.NewTokenManager("cli-secret", time.Hour).ParseValidate(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, "captain-7", id.UserID)
	assert.Equal(t, "member", id.Role)
}

func TestTokenCommandRequiresUser(t *testing.T) {
	t.Setenv("JWT_SECRET", "cli-secret")

	root := newRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"--env-file", "does-not-exist.env", "token"})
	assert.EqualError(t, root.Execute(), "--user is required")
}

func TestSeedGroundsIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := storage.NewInMemoryStore()
	grounds := services.NewGroundService(store, quietLogger())

	created, err := seedGrounds(ctx, grounds, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, len(demoGrounds), created)

	created, err = seedGrounds(ctx, grounds, quietLogger())
	require.NoError(t, err)
	assert.Zero(t, created)

	list, err := grounds.ListAvailableGrounds(ctx)
	require.NoError(t, err)
	require.Len(t, list, len(demoGrounds))
	assert.Equal(t, "Green Park Cricket Ground", list[0].Name)
	assert.Equal(t, int64(2000), list[0].PricePerHour)
}

func TestAppServesBookingFlow(t *testing.T) {
	cfg := memoryConfig()
	log := quietLogger()
	store := storage.NewInMemoryStore()

	a, err := newApp(cfg, log, store)
	require.NoError(t, err)
	defer a.close()
	_, err = seedGrounds(context.Background(), a.grounds, log)
	require.NoError(t, err)

	srv := httptest.NewServer(a.router)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	token, err := auth.NewTokenManager(cfg.Auth.JWTSecret, time.Hour).CreateAccessToken(auth.Identity{UserID: "u1"})
	require.NoError(t, err)

	body := `{"ground_id":1,"team_name":"Strikers","contact_number":"+91 98765 43210",` +
		`"date":"2099-11-05","start_time":"10:00","duration":2,"payment_method":"at_venue"}`
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/bookings", strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		TotalCost int64  `json:"total_cost"`
		Status    string `json:"status"`
		EndTime   string `json:"end_time"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.Equal(t, int64(4200), created.TotalCost)
	assert.Equal(t, "confirmed", created.Status)
	assert.Equal(t, "12:00", created.EndTime)
}

func TestConsumerDisabledInMockMode(t *testing.T) {
	a, err := newApp(memoryConfig(), quietLogger(), storage.NewInMemoryStore())
	require.NoError(t, err)
	defer a.close()

	done, err := a.startConsumer(context.Background(), config.KafkaConfig{MockMode: true})
	require.NoError(t, err)
	select {
	case <-done:
	default:
		t.Fatal("consumer should not run in mock mode")
	}
}
