package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHashAndCheck(t *testing.T) {
	digest, err := hashPassword("s3cret", bcrypt.MinCost)
	require.NoError(t, err)
	require.NotEmpty(t, digest)
	assert.NotContains(t, digest, "s3cret")

	assert.True(t, checkPassword("s3cret", digest))
	assert.False(t, checkPassword("S3cret", digest))
	assert.False(t, checkPassword("", digest))
}

func TestPasswordHashIsSalted(t *testing.T) {
	d1, err := hashPassword("same-password", bcrypt.MinCost)
	require.NoError(t, err)
	d2, err := hashPassword("same-password", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, d1, d2)
}
