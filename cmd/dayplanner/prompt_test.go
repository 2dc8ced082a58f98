package main

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"dayplanner/internal/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromptNewPassword(t *testing.T) {
	var out bytes.Buffer
	password, err := promptNewPassword(strings.NewReader("secret1\nsecret1\n"), &out)
	require.NoError(t, err)
	assert.Equal(t, "secret1", password)
	assert.Contains(t, out.String(), "Password (again): ")
}

func TestPromptNewPassword_Errors(t *testing.T) {
	_, err := promptNewPassword(strings.NewReader("secret1\nsecret2\n"), io.Discard)
	assert.ErrorIs(t, err, auth.ErrPasswordMismatch)

	_, err = promptNewPassword(strings.NewReader("\n\n"), io.Discard)
	assert.ErrorContains(t, err, "cannot be empty")

	_, err = promptNewPassword(strings.NewReader("only-once\n"), io.Discard)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}
