package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"eventhub-be/internal/credentials"
	"eventhub-be/internal/jwt"
	"eventhub-be/internal/router"
	"eventhub-be/internal/service"
	"eventhub-be/internal/testing/memstore"
	"eventhub-be/pkg/client"
)

type ctl struct {
	t       *testing.T
	api     string
	session string
}

func newCtl(t *testing.T) *ctl {
	t.Helper()
	gin.SetMode(gin.TestMode)
	users, events := memstore.NewUsers(), memstore.NewEvents()
	jwtService, err := jwt.NewJWTService("cli-secret")
	require.NoError(t, err)
	reg := prometheus.NewRegistry()
	srv := httptest.NewServer(router.New(router.Deps{
		AuthService:  service.NewAuthService(users, credentials.NewBcryptHasher(bcrypt.MinCost), jwtService),
		EventService: service.NewEventService(events, users, nil, service.EventServiceConfig{Location: time.UTC}),
		Registerer:   reg,
		Gatherer:     reg,
	}))
	t.Cleanup(srv.Close)
	return &ctl{t: t, api: srv.URL, session: filepath.Join(t.TempDir(), "session.json")}
}

func (c *ctl) run(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), append([]string{"-api", c.api, "-session", c.session}, args...), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestGuardedCommandsAskForLogin(t *testing.T) {
	c := newCtl(t)

	code, _, stderr := c.run("mine")

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "please log in")
}

func TestLoginShowsServerMessage(t *testing.T) {
	c := newCtl(t)
	code, _, _ := c.run("register", "-name", "Ada", "-email", "ada@example.com", "-password", "secret123")
	require.Equal(t, 0, code)
	code, _, _ = c.run("logout")
	require.Equal(t, 0, code)

	code, _, stderr := c.run("login", "-email", "ada@example.com", "-password", "wrongpass")

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "error: Invalid credentials")
	assert.NotContains(t, stderr, "please log in")
}

func TestRejectedTokenAsksForLogin(t *testing.T) {
	c := newCtl(t)
	require.NoError(t, client.FileStore{Path: c.session}.Save(&client.SessionData{
		User:  client.User{ID: uuid.NewString(), Name: "Ada", Email: "ada@example.com"},
		Token: "not-a-token",
	}))

	code, _, stderr := c.run("mine")

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "please log in")
}

func TestCommandFlow(t *testing.T) {
	c := newCtl(t)

	code, out, _ := c.run("register", "-name", "Ada", "-email", "ada@example.com", "-password", "secret123")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "registered and logged in as Ada")

	code, out, _ = c.run("create", "-title", "Meetup", "-date", "2026-10-20", "-time", "18:00",
		"-location", "Hall", "-description", "Talks")
	require.Equal(t, 0, code)
	id := strings.Fields(out)[1]

	code, out, _ = c.run("update", id, "-title", "Meetup 2")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Meetup 2")

	code, out, _ = c.run("mine")
	require.Equal(t, 0, code)
	assert.Contains(t, out, id)

	code, out, _ = c.run("show", id)
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Ada <ada@example.com>")

	code, _, stderr := c.run("join", id)
	require.Equal(t, 0, code, stderr)
	code, _, stderr = c.run("join", id)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "You have already joined this event")

	code, _, _ = c.run("logout")
	require.Equal(t, 0, code)
	code, _, _ = c.run("whoami")
	assert.Equal(t, 1, code)
}

func TestUnknownCommand(t *testing.T) {
	c := newCtl(t)

	code, _, stderr := c.run("frobnicate")

	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "usage: eventsctl")
}
