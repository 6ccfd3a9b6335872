// Copyright (c) 2026 Vizion. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cli_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/vizion/internal/apitest"
	"github.com/taibuivan/vizion/internal/cli"
	"github.com/taibuivan/vizion/internal/platform/config"
)

// harness runs commands against one fake API with one credentials file.
type harness struct {
	t   *testing.T
	api *apitest.Server
	cfg *config.Config
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	api := apitest.New(t)
	return &harness{
		t:   t,
		api: api,
		cfg: &config.Config{
			APIURL:          api.APIURL(),
			CredentialsFile: filepath.Join(t.TempDir(), "credentials.json"),
			Profile:         "default",
			RateLimitBurst:  5,
		},
	}
}

// run executes one command line and returns its exit code and output.
func (h *harness) run(stdin string, args ...string) (int, string, string) {
	h.t.Helper()
	var stdout, stderr bytes.Buffer

	argv := append([]string{"vizion"}, args...)
	code := cli.Run(context.Background(), argv, h.cfg, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

var uploadedID = regexp.MustCompile(`Image uploaded successfully: \S+ \(([^)]+)\)`)

/*
TestRun_GalleryWorkflow verifies a full session across separate processes:
register, upload, list, show, download, delete, logout.
*/
func TestRun_GalleryWorkflow(t *testing.T) {
	h := newHarness(t)

	code, stdout, stderr := h.run("", "register", "--name", "Ann", "--email", "ann@vizion.test", "--password", "password1")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "Account created successfully")

	code, stdout, _ = h.run("", "whoami")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "Ann <ann@vizion.test>")

	dir := t.TempDir()
	picture := filepath.Join(dir, "cat.png")
	require.NoError(t, os.WriteFile(picture, apitest.PNG(4, 3), 0o644))

	code, stdout, stderr = h.run("", "images", "upload", picture)
	require.Equal(t, 0, code, stderr)
	match := uploadedID.FindStringSubmatch(stdout)
	require.Len(t, match, 2, stdout)
	id := match[1]

	code, stdout, _ = h.run("", "images", "list")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "cat.png")
	assert.Contains(t, stdout, "4x3")

	code, stdout, _ = h.run("", "images", "list", "--search", "DOG")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "No images match your search")

	code, stdout, _ = h.run("", "images", "show", id)
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "image/png")
	assert.Contains(t, stdout, "4x3 (png)")

	saved := filepath.Join(dir, "copy.png")
	code, stdout, stderr = h.run("", "images", "download", "--output", saved, id)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "Saved "+saved)

	content, err := os.ReadFile(saved)
	require.NoError(t, err)
	assert.Equal(t, apitest.PNG(4, 3), content)

	code, stdout, _ = h.run("", "images", "delete", id)
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "Image deleted successfully")

	code, stdout, _ = h.run("", "images", "list")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "No images yet")

	code, stdout, _ = h.run("", "logout")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "Signed out successfully")

	code, stdout, _ = h.run("", "whoami")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "Not signed in")
}

/*
TestRun_Errors verifies error output and exit codes.
*/
func TestRun_Errors(t *testing.T) {
	h := newHarness(t)
	_, err := h.api.AddUser("Ann", "ann@vizion.test", "password1")
	require.NoError(t, err)

	tests := []struct {
		name       string
		stdin      string
		args       []string
		wantStderr []string
	}{
		{
			name:       "signed out",
			args:       []string{"images", "list"},
			wantStderr: []string{"Error: Please sign in first"},
		},
		{
			name:       "validation",
			args:       []string{"register", "--name", "A", "--email", "nope", "--password", "short"},
			wantStderr: []string{"Minimum 2 characters", "Must be a valid email address", "Minimum 8 characters"},
		},
		{
			name:       "wrong password",
			stdin:      "wrong-password\n",
			args:       []string{"login", "--email", "ann@vizion.test"},
			wantStderr: []string{"Error: Invalid email or password"},
		},
		{
			name:       "duplicate email",
			args:       []string{"register", "--name", "Ann", "--email", "ann@vizion.test", "--password", "password1"},
			wantStderr: []string{"Error: Email already registered"},
		},
		{
			name:       "missing argument",
			args:       []string{"images", "show"},
			wantStderr: []string{"expected exactly one ID argument"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := h.run(tt.stdin, tt.args...)
			assert.Equal(t, 1, code)
			for _, want := range tt.wantStderr {
				assert.Contains(t, stderr, want)
			}
		})
	}
}

/*
TestRun_LoginFromStdin verifies the password is read from stdin when the flag
is omitted.
*/
func TestRun_LoginFromStdin(t *testing.T) {
	h := newHarness(t)
	_, err := h.api.AddUser("Ann", "ann@vizion.test", "password1")
	require.NoError(t, err)

	code, stdout, stderr := h.run("password1\n", "login", "--email", "ann@vizion.test")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "Signed in successfully")

	_, err = os.Stat(h.cfg.CredentialsFile)
	assert.NoError(t, err)
}

/*
TestRun_UploadPartialFailure verifies one bad file does not stop the others.
*/
func TestRun_UploadPartialFailure(t *testing.T) {
	h := newHarness(t)
	code, _, stderr := h.run("", "register", "--name", "Ann", "--email", "ann@vizion.test", "--password", "password1")
	require.Equal(t, 0, code, stderr)

	dir := t.TempDir()
	good := filepath.Join(dir, "good.png")
	bad := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(good, apitest.PNG(1, 1), 0o644))
	require.NoError(t, os.WriteFile(bad, []byte("plain text"), 0o644))

	code, stdout, stderr := h.run("", "images", "upload", good, bad)
	assert.Equal(t, 1, code)
	assert.Contains(t, stdout, "Image uploaded successfully: good.png")
	assert.Contains(t, stderr, "Error: notes.txt: Only image files are allowed")
	assert.Contains(t, stderr, "Error: some uploads failed")
}

/*
TestRun_Status verifies the health command.
*/
func TestRun_Status(t *testing.T) {
	h := newHarness(t)

	code, stdout, _ := h.run("", "status")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "api    ok")
}
