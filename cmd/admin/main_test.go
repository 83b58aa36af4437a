package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("CAMPUS_DATABASE_DRIVER", "memory")
	t.Setenv("CAMPUS_ENV", "test")
	t.Setenv("CAMPUS_LOG_LEVEL", "error")
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	err := app.Run(context.Background(), append([]string{"admin"}, args...))
	return out.String(), err
}

func TestCreateUser(t *testing.T) {
	out, err := run(t, "create-user", "--username", "root", "--password", "admin-pass")
	require.NoError(t, err)
	assert.Contains(t, out, "created user root")
	assert.Contains(t, out, "role ADMIN")
}

func TestCreateUser_BadRole(t *testing.T) {
	_, err := run(t, "create-user", "--username", "x", "--password", "admin-pass", "--role", "dean")
	assert.ErrorContains(t, err, "unknown role")
}

func TestValidate_UnknownReviewer(t *testing.T) {
	_, err := run(t, "validate", "7", "--reviewer", "ghost")
	assert.ErrorContains(t, err, `user "ghost"`)
}

func TestSetStatus_BadID(t *testing.T) {
	_, err := run(t, "set-status", "abc", "--actor", "root")
	assert.ErrorContains(t, err, "invalid complaint id")
}

func TestParseRole(t *testing.T) {
	role, err := parseRole("hod")
	require.NoError(t, err)
	assert.Equal(t, "HOD", string(role))
}
