package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildApp(t *testing.T) {
	app := buildApp()
	assert.Equal(t, "rideshare", app.Name)

	names := map[string]bool{}
	for _, cmd := range app.Commands {
		names[cmd.Name] = true
	}
	assert.True(t, names["version"])
	require.True(t, names["service"])

	svc := app.Command("service")
	require.NotNil(t, svc)
	sub := map[string]bool{}
	for _, cmd := range svc.Subcommands {
		sub[cmd.Name] = true
	}
	assert.True(t, sub["web"])
	assert.True(t, sub["seed"])
}
