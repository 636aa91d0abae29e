package main

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSeed(t *testing.T) {
	doc := `
jobs:
  - title: Backend Engineer
    company: Northwind
    location: Remote
    type: remote
    description: Build things
    requirements: [Go]
  - title: Analyst
    company: Harbor
    location: Boston
    type: internship
    description: Reports
    published: false
`
	inputs, err := parseSeed(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, inputs, 2)

	assert.Equal(t, "Backend Engineer", inputs[0].Title)
	assert.Equal(t, []string{"Go"}, inputs[0].Requirements)
	assert.Nil(t, inputs[0].Published)

	assert.Equal(t, []string{}, inputs[1].Requirements)
	require.NotNil(t, inputs[1].Published)
	assert.False(t, *inputs[1].Published)
}

func TestParseSeed_RejectsUnknownFields(t *testing.T) {
	_, err := parseSeed(strings.NewReader("jobs:\n  - title: X\n    salry: typo\n"))
	assert.Error(t, err)
}

func TestParseSeed_EmptyDocument(t *testing.T) {
	inputs, err := parseSeed(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, inputs)
}

func TestParseSeed_BundledFile(t *testing.T) {
	f, err := os.Open("jobs.yaml")
	require.NoError(t, err)
	defer f.Close()

	inputs, err := parseSeed(f)
	require.NoError(t, err)
	assert.Len(t, inputs, 3)
}
