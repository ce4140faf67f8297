package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

type scriptedPrompter struct {
	answers []string
	asked   []string
}

func (p *scriptedPrompter) next(message string) (string, error) {
	p.asked = append(p.asked, message)
	if len(p.answers) == 0 {
		return "", errPromptCancelled
	}
	answer := p.answers[0]
	p.answers = p.answers[1:]
	return answer, nil
}

func (p *scriptedPrompter) Select(_ context.Context, message string, _ []string, _ string) (string, error) {
	return p.next(message)
}

func (p *scriptedPrompter) Input(_ context.Context, message, _ string) (string, error) {
	return p.next(message)
}

func run(t *testing.T, p prompter, args ...string) (string, string, error) {
	t.Helper()

	a := newApp()
	if p != nil {
		a.prompter = p
	}
	cmd := a.rootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func fixture(name string) string {
	return filepath.Join("testdata", name)
}

func TestGuessShowSnippet(t *testing.T) {
	stdout, _, err := run(t, nil, "guess", "books", "1",
		"--data", fixture("library.json"),
		"--resources", fixture("resources.yaml"),
		"--environment", "production",
	)
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(stdout, "Guessed Show:\n\nimport { "), stdout)
	assert.Contains(t, stdout, "} from 'react-admin';")
	assert.Contains(t, stdout, "export const BookShow = () => (")
	assert.Contains(t, stdout, `<ReferenceField source="author_id" reference="authors"><TextField source="name" /></ReferenceField>`)
	assert.Contains(t, stdout, `<UrlField source="website" />`)
}

func TestGuessLogsSnippetOutsideProduction(t *testing.T) {
	_, stderr, err := run(t, nil, "guess", "authors",
		"--data", fixture("library.json"),
		"--log-format", "json",
	)
	require.NoError(t, err)

	var found bool
	for _, line := range strings.Split(strings.TrimSpace(stderr), "\n") {
		var entry map[string]any
		if json.Unmarshal([]byte(line), &entry) != nil {
			continue
		}
		msg, _ := entry["msg"].(string)
		if strings.HasPrefix(msg, "Guessed Show:") {
			found = true
			assert.Equal(t, "authors", entry["resource"])
			assert.Equal(t, "show", entry["view"])
		}
	}
	require.True(t, found, "snippet not logged:\n%s", stderr)
}

func TestGuessListView(t *testing.T) {
	stdout, _, err := run(t, nil, "guess", "authors",
		"--view", "list",
		"--data", fixture("library.json"),
		"--environment", "production",
	)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "Guessed List:"), stdout)
	assert.Contains(t, stdout, "export const AuthorList = () => (")
	assert.Contains(t, stdout, `<EmailField source="email" />`)
}

func TestGuessInteractive(t *testing.T) {
	prompts := &scriptedPrompter{answers: []string{"authors", "edit", "2"}}
	stdout, _, err := run(t, prompts, "guess", "-i",
		"--data", fixture("library.json"),
		"--environment", "production",
		"--import-package", "@acme/admin",
	)
	require.NoError(t, err)

	require.Equal(t, []string{"Resource", "View", "Record id"}, prompts.asked)
	assert.Contains(t, stdout, "export const AuthorEdit = () => (")
	assert.Contains(t, stdout, "} from '@acme/admin';")
}

func TestGuessInteractiveCancelled(t *testing.T) {
	_, _, err := run(t, &scriptedPrompter{}, "guess", "-i", "--data", fixture("library.json"))
	require.ErrorIs(t, err, errPromptCancelled)
}

func TestGuessJSONToFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "books.json")
	_, _, err := run(t, nil, "guess", "books", "2",
		"--format", "json",
		"--output", out,
		"--data", fixture("library.json"),
		"--environment", "production",
	)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var doc struct {
		View     string           `json:"view"`
		Resource string           `json:"resource"`
		Title    string           `json:"title"`
		Records  []map[string]any `json:"records"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "show", doc.View)
	assert.Equal(t, "books", doc.Resource)
	assert.Equal(t, "Show books #2", doc.Title)
	require.Len(t, doc.Records, 1)
	assert.Equal(t, "Anna Karenina", doc.Records[0]["title"])
}

func TestGuessEnvironmentConfiguration(t *testing.T) {
	t.Setenv("GUESSER_DATA", fixture("library.json"))
	t.Setenv("GUESSER_IMPORT_PACKAGE", "ra-core")
	t.Setenv("GUESSER_ENVIRONMENT", "production")

	stdout, _, err := run(t, nil, "guess", "books")
	require.NoError(t, err)
	assert.Contains(t, stdout, "} from 'ra-core';")
}

func TestGuessConfigFile(t *testing.T) {
	dir := t.TempDir()
	data, err := filepath.Abs(fixture("library.json"))
	require.NoError(t, err)
	configPath := filepath.Join(dir, "guesser.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(strings.Join([]string{
		"environment: production",
		"import_package: '@config/admin'",
		"data: " + data,
	}, "\n")), 0o644))

	stdout, _, err := run(t, nil, "guess", "authors", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, stdout, "} from '@config/admin';")
}

func TestGuessSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec(`
		CREATE TABLE posts (id INTEGER PRIMARY KEY, title TEXT, body TEXT, created_at TEXT);
		INSERT INTO posts VALUES (1, 'Hello', '<p>World</p>', '2024-01-31T10:20:30Z');
	`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	stdout, _, err := run(t, nil, "guess", "posts",
		"--database", path,
		"--environment", "production",
	)
	require.NoError(t, err)
	assert.Contains(t, stdout, `<TextField source="id" />`)
	assert.Contains(t, stdout, `<RichTextField source="body" />`)
	assert.Contains(t, stdout, `<DateField source="created_at" />`)
}

func TestGuessErrors(t *testing.T) {
	_, _, err := run(t, nil, "guess", "books")
	require.ErrorContains(t, err, "a data source is required")

	_, _, err = run(t, nil, "guess", "books", "--data", fixture("library.json"), "--database", "x.db")
	require.ErrorContains(t, err, "only one of")

	_, _, err = run(t, nil, "guess", "--data", fixture("library.json"))
	require.ErrorContains(t, err, "a resource is required")

	_, _, err = run(t, nil, "guess", "books", "--view", "kanban", "--data", fixture("library.json"))
	require.ErrorContains(t, err, "unknown view kind")

	_, _, err = run(t, nil, "guess", "books", "--format", "csv", "--data", fixture("library.json"))
	require.ErrorContains(t, err, "unsupported format")

	_, _, err = run(t, nil, "guess", "books", "42", "--data", fixture("library.json"))
	require.ErrorContains(t, err, "record not found")
}
