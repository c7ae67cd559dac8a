package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialectSelection(t *testing.T) {
	d, err := Dialect(Config{
		Type:    "postgres",
		Host:    "localhost",
		Port:    "5432",
		Name:    "clearwire",
		User:    "postgres",
		SSLMode: "disable",
	})
	require.NoError(t, err)
	assert.Equal(t, "postgres", d.Name())

	d, err = Dialect(Config{Type: "sqlite"})
	require.NoError(t, err)
	assert.Equal(t, "sqlite", d.Name())

	_, err = Dialect(Config{Type: "oracle"})
	assert.Error(t, err)
}
