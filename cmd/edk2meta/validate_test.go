package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/urfave/cli/v2"
)

func TestAppCommandsWired(t *testing.T) {
	names := map[string]bool{}
	for _, cmd := range []*cli.Command{parseCommand, queryCommand, validateCommand} {
		names[cmd.Name] = true
	}
	assert.True(t, names["parse"])
	assert.True(t, names["query"])
	assert.True(t, names["validate"])
}
