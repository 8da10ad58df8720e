package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"path/filepath"
	"strings"
	"testing"

	"bike-recommender/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCatalog = filepath.Join("..", "..", "..", "internal", "catalog", "testdata", "bikes.csv")

const cruiserAnswers = `["Beginner", {"min":"300","max":"500"}, ["Cruiser"], {"min":"4000","max":"8000"},
	"No", "Asia", [], "170", "75"]`

func TestRun_JSON(t *testing.T) {
	var out bytes.Buffer
	err := run([]string{"-catalog", testCatalog, "-format", "json"}, strings.NewReader(cruiserAnswers), &out)
	require.NoError(t, err)

	var res jsonResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	assert.Equal(t, 4, res.Scanned)
	assert.Equal(t, 1, res.Matched)
	require.Len(t, res.Cards, 1)
	assert.Equal(t, "Royal enfield Meteor 350 (2021)", res.Cards[0].Title)
	assert.Equal(t, 290, res.Criteria.MinCC)
}

func TestRun_Table(t *testing.T) {
	var out bytes.Buffer
	err := run([]string{"-catalog", testCatalog}, strings.NewReader(cruiserAnswers), &out)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Royal enfield Meteor 350 (2021)")
	assert.Contains(t, out.String(), "290 - 510")
	assert.Contains(t, out.String(), "(1 of 4 bikes match, 1 shown)")
}

func TestRun_NoMatchesAndLimit(t *testing.T) {
	var out bytes.Buffer
	err := run([]string{"-catalog", testCatalog, "-format", "cards"},
		strings.NewReader(`["", {"min":"900","max":"300"}, [], {}, "", "", [], "", ""]`), &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "No bikes match these answers.")
	assert.Contains(t, out.String(), "range inverted")

	out.Reset()
	err = run([]string{"-catalog", testCatalog, "-limit", "2", "-min-year", "0"},
		strings.NewReader(`["", {}, [], {}, "", "", [], "", ""]`), &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "(5 of 5 bikes match, 2 shown)")
}

func TestRun_HelpListsChoices(t *testing.T) {
	var out bytes.Buffer
	err := run([]string{"-h"}, strings.NewReader(""), &out)
	require.ErrorIs(t, err, flag.ErrHelp)

	assert.Contains(t, out.String(), "-catalog")
	assert.Contains(t, out.String(), "Adventure / Offroad")
	assert.Contains(t, out.String(), "North America")
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		answers string
		wantErr string
	}{
		{name: "missing catalog flag", args: []string{"-catalog", ""}, answers: `[]`, wantErr: "-catalog is required"},
		{name: "bad policy", args: []string{"-catalog", testCatalog, "-unparsable", "ignore"}, answers: `[]`, wantErr: "unparsable policy"},
		{name: "wrong shape", args: []string{"-catalog", testCatalog}, answers: `["Beginner"]`, wantErr: models.ErrInvalidAnswerShape.Error()},
		{name: "unknown format", args: []string{"-catalog", testCatalog, "-format", "xml"}, answers: `["", {}, [], {}, "", "", [], "", ""]`, wantErr: "unknown format"},
		{name: "missing catalog file", args: []string{"-catalog", "nope.csv"}, answers: `["", {}, [], {}, "", "", [], "", ""]`, wantErr: "CATALOG_UNAVAILABLE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := run(tt.args, strings.NewReader(tt.answers), &out)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
