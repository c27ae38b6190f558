package main

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/pigeon"
	"github.com/dmitrymomot/pigeon/pkg/config"
	"github.com/dmitrymomot/pigeon/pkg/logger"
	"github.com/dmitrymomot/pigeon/pkg/mailer"
	"github.com/dmitrymomot/pigeon/pkg/mailer/smtp"
)

const testConfig = "testdata/pigeon.yaml"

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", testConfig}, args...))

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func testApp(t *testing.T) *app {
	t.Helper()

	settings, err := config.NewViper(testConfig)
	require.NoError(t, err)
	presets, err := config.LoadFile(testConfig)
	require.NoError(t, err)

	return &app{
		settings:   settings,
		presets:    presets,
		logger:     logger.NewNope(),
		out:        io.Discard,
		configPath: testConfig,
	}
}

func TestSend(t *testing.T) {
	t.Parallel()

	out, _, err := run(t, "send", "user_welcome", "--to", "John <john@example.com>", "--var", "name=John")
	require.NoError(t, err)

	require.Contains(t, out, "Welcome John")
	require.Contains(t, out, "Pigeon Team <team@example.com>")
	require.Contains(t, out, "support@example.com")
	require.Contains(t, out, "Audit <audit@example.com>")
	require.Contains(t, out, "# Welcome, John!")
	require.Contains(t, out, "Message sent to John <john@example.com>")
}

func TestSend_Raw(t *testing.T) {
	t.Parallel()

	out, _, err := run(t, "send", "--to", "john@example.com", "--subject", "Ping", "--raw", "Are you there?")
	require.NoError(t, err)
	require.Contains(t, out, "Ping")
	require.Contains(t, out, "Are you there?")
}

func TestSend_Attachment(t *testing.T) {
	t.Parallel()

	path, err := filepath.Abs("testdata/files/terms.txt")
	require.NoError(t, err)

	out, _, err := run(t, "send", "--to", "john@example.com", "--attach", path+"#Terms.txt")
	require.NoError(t, err)
	require.Contains(t, out, "Terms.txt")
}

func TestSend_Pretend(t *testing.T) {
	t.Parallel()

	out, logs, err := run(t, "send", "--to", "john@example.com", "--subject", "Quiet", "--pretend")
	require.NoError(t, err)
	require.NotContains(t, out, "Quiet")
	require.Contains(t, out, "Message sent to john@example.com")
	require.Contains(t, logs, "dry run: email not sent")
}

func TestSend_Errors(t *testing.T) {
	t.Parallel()

	_, _, err := run(t, "send", "missing", "--to", "john@example.com")
	require.ErrorIs(t, err, pigeon.ErrUnknownPreset)

	_, _, err = run(t, "send", "broken", "--to", "john@example.com")
	require.ErrorIs(t, err, pigeon.ErrMalformedPreset)

	_, logs, err := run(t, "send", "--subject", "Nobody")
	require.ErrorIs(t, err, errNotSent)
	require.ErrorIs(t, err, mailer.ErrNoRecipient)
	require.Contains(t, logs, "could not send message")

	_, _, err = run(t, "send", "--to", "john@example.com", "--var", "novalue")
	require.Error(t, err)
}

func TestSend_UnknownLibraryFromEnv(t *testing.T) {
	t.Setenv("PIGEON_LIBRARY", "carrier")

	_, _, err := run(t, "send", "--to", "john@example.com")
	require.ErrorIs(t, err, errUnknownLibrary)
}

func TestPresets(t *testing.T) {
	t.Parallel()

	out, _, err := run(t, "presets")
	require.NoError(t, err)
	require.Equal(t, "default\nbroken\nnoisy\nuser_welcome\n", out)
}

func TestPresets_Check(t *testing.T) {
	t.Parallel()

	out, _, err := run(t, "presets", "--check")
	require.ErrorIs(t, err, errInvalidPresets)
	require.Contains(t, out, "skipped: priority")
	require.Contains(t, out, "malformed preset")
	require.Contains(t, out, "ok")
}

func TestPreview(t *testing.T) {
	t.Parallel()

	out, _, err := run(t, "preview", "user_welcome", "--var", "name=John")
	require.NoError(t, err)
	require.Contains(t, out, "Welcome, John!")
	require.Contains(t, out, "<footer>Sent by Pigeon</footer>")

	out, _, err = run(t, "preview", "--text")
	require.NoError(t, err)
	require.Contains(t, out, "Hello from **Pigeon**.")
}

func TestPreviewRouter(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(newPreviewRouter(testApp(t)))
	t.Cleanup(srv.Close)

	get := func(path string) (int, string) {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp.StatusCode, string(body)
	}

	code, body := get("/")
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, body, `href="/user_welcome"`)

	code, body = get("/user_welcome?name=Ann")
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, body, "Welcome, Ann!")

	code, body = get("/user_welcome/text?name=Ann")
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, body, "# Welcome, Ann!")

	code, body = get("/healthz")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "healthy", body)

	code, body = get("/readyz?format=json")
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, body, `"templates":{"status":"healthy"}`)

	code, _ = get("/missing")
	require.Equal(t, http.StatusNotFound, code)

	code, _ = get("/broken")
	require.Equal(t, http.StatusUnprocessableEntity, code)
}

func TestReadinessChecks_MissingTemplates(t *testing.T) {
	t.Parallel()

	a := testApp(t)
	a.settings.Set("pigeon.templates", t.TempDir())

	err := a.readinessChecks()["templates"](context.Background())
	require.Error(t, err)
}

func TestNewSender(t *testing.T) {
	t.Parallel()

	newApp := func(yaml string) *app {
		settings, err := config.NewViperFromBytes("yaml", []byte(yaml))
		require.NoError(t, err)
		return &app{settings: settings, logger: logger.NewNope(), out: io.Discard}
	}

	s, err := newApp("pigeon: {library: log}").newSender()
	require.NoError(t, err)
	require.IsType(t, &printSender{}, s)

	s, err = newApp("pigeon: {library: SMTP, smtp: {host: localhost, port: 2525}}").newSender()
	require.NoError(t, err)
	require.IsType(t, &smtp.Sender{}, s)

	_, err = newApp("pigeon: {library: smtp}").newSender()
	require.ErrorIs(t, err, smtp.ErrHostRequired)

	_, err = newApp("pigeon: {library: resend}").newSender()
	require.ErrorIs(t, err, errMissingSetting)

	s, err = newApp("pigeon: {library: resend, resend: {api_key: re_test}}").newSender()
	require.NoError(t, err)
	require.NotNil(t, s)

	_, err = newApp("pigeon: {library: fax}").newSender()
	require.ErrorIs(t, err, errUnknownLibrary)
}

func TestLoadDKIMKey(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	write := func(name string, block *pem.Block) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, pem.EncodeToMemory(block), 0o600))
		return path
	}

	_, edKey, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	der, err := x509.MarshalPKCS8PrivateKey(edKey)
	require.NoError(t, err)
	signer, err := loadDKIMKey(write("ed25519.pem", &pem.Block{Type: "PRIVATE KEY", Bytes: der}))
	require.NoError(t, err)
	require.NotNil(t, signer)

	rsaKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	signer, err = loadDKIMKey(write("rsa.pem", &pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(rsaKey)}))
	require.NoError(t, err)
	require.NotNil(t, signer)

	_, err = loadDKIMKey(write("garbage.pem", &pem.Block{Type: "PRIVATE KEY", Bytes: []byte("garbage")}))
	require.ErrorIs(t, err, errInvalidDKIMKey)

	_, err = loadDKIMKey(filepath.Join(dir, "missing.pem"))
	require.ErrorIs(t, err, errInvalidDKIMKey)

	notPEM := filepath.Join(dir, "plain.txt")
	require.NoError(t, os.WriteFile(notPEM, []byte("not pem"), 0o600))
	_, err = loadDKIMKey(notPEM)
	require.ErrorIs(t, err, errInvalidDKIMKey)
}

func TestParseAddress(t *testing.T) {
	t.Parallel()

	require.Equal(t, pigeon.Address{Email: "john@example.com", Name: "John Doe"}, parseAddress("John Doe <john@example.com>"))
	require.Equal(t, pigeon.Address{Email: "john@example.com"}, parseAddress("john@example.com"))
	require.Equal(t, pigeon.Address{Email: "not-an-address"}, parseAddress(" not-an-address "))
}

func TestParseVars(t *testing.T) {
	t.Parallel()

	vars, err := parseVars([]string{"name=John", "url=https://example.com/?a=b", "empty="})
	require.NoError(t, err)
	require.Equal(t, map[string]any{"name": "John", "url": "https://example.com/?a=b", "empty": ""}, vars)

	_, err = parseVars([]string{"=value"})
	require.Error(t, err)
}

func TestPresetNames_NonStringKeys(t *testing.T) {
	t.Parallel()

	src, err := config.LoadYAML([]byte("pigeon:\n  message_types:\n    404: {subject: Missing}\n    welcome: {subject: Hi}\n"))
	require.NoError(t, err)
	require.Equal(t, []string{"default", "404", "welcome"}, presetNames(src))

	require.Equal(t, []string{"default"}, presetNames(config.NewMap(nil)))
}
