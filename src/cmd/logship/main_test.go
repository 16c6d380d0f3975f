package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConsole(t *testing.T) {
	var out, errOut bytes.Buffer
	c := console{out: &out, err: &errOut}

	c.printf("written to %s\n", "a.toml")
	c.warnf("shutdown error: %v\n", "x")
	assert.Equal(t, "written to a.toml\n", out.String())
	assert.Equal(t, "shutdown error: x\n", errOut.String())

	out.Reset()
	errOut.Reset()
	c.quiet = true
	c.printf("hidden\n")
	c.warnf("hidden\n")
	assert.Empty(t, out.String())
	assert.Empty(t, errOut.String())
}
