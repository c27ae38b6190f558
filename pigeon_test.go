package pigeon_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/pigeon"
	"github.com/dmitrymomot/pigeon/pkg/config"
	"github.com/dmitrymomot/pigeon/pkg/logger"
	"github.com/dmitrymomot/pigeon/pkg/mailer"
	"github.com/dmitrymomot/pigeon/pkg/storage"
)

const presetsYAML = `
pigeon:
  default:
    from: { team@example.com: Pigeon Team }
    layout: base.html
    template: default.md
    message_variables: { appName: Pigeon }
  message_types:
    user_welcome:
      subject: Welcome {{.name}}
      template: welcome.md
      bcc: audit@example.com
      attachments:
        path: /files/terms.txt
        options: { as: Terms.txt }
`

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Send(ctx context.Context, email *mailer.Email) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func emailFS() fstest.MapFS {
	return fstest.MapFS{
		"layouts/base.html":    &fstest.MapFile{Data: []byte(`<main>{{.Content}}</main><footer>{{.appName}}</footer>`)},
		"templates/default.md": &fstest.MapFile{Data: []byte("Hello from {{.appName}}")},
		"templates/welcome.md": &fstest.MapFile{Data: []byte("Hi **{{.name}}**, welcome aboard.")},
	}
}

func newMailer(sender mailer.Sender) *mailer.Mailer {
	files := storage.NewLocalFS(fstest.MapFS{
		"files/terms.txt": &fstest.MapFile{Data: []byte("terms and conditions")},
	})
	return mailer.New(sender, mailer.NewRenderer(emailFS()), mailer.Config{FallbackSubject: "Pigeon Delivery"},
		mailer.WithAttachmentSource("", files),
	)
}

func TestPigeon_SendThroughMailer(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadYAML([]byte(presetsYAML))
	require.NoError(t, err)

	sender := &mockSender{}
	p, err := pigeon.New(cfg, newMailer(sender))
	require.NoError(t, err)

	var sent *mailer.Email
	sender.On("Send", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(1).(*mailer.Email) }).
		Return(nil)

	_, err = p.Type("user_welcome")
	require.NoError(t, err)

	ok := p.To("john@example.com", "John").
		Pass(map[string]any{"name": "John"}).
		Send(context.Background())
	require.True(t, ok)
	sender.AssertExpectations(t)

	require.Equal(t, "Welcome John", sent.Subject)
	require.Equal(t, []string{"John <john@example.com>"}, sent.To)
	require.Equal(t, []string{"audit@example.com"}, sent.BCC)
	require.Equal(t, "Pigeon Team <team@example.com>", sent.From)
	require.Contains(t, sent.HTML, "<strong>John</strong>")
	require.Contains(t, sent.HTML, "<footer>Pigeon</footer>")
	require.Len(t, sent.Attachments, 1)
	require.Equal(t, "Terms.txt", sent.Attachments[0].Filename)
	require.Equal(t, []byte("terms and conditions"), sent.Attachments[0].Content)

	require.Equal(t, pigeon.DefaultPreset, p.PresetName())
	require.Empty(t, p.Draft().To)
}

func TestPigeon_SendRawThroughMailer(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadYAML([]byte(presetsYAML))
	require.NoError(t, err)

	sender := &mockSender{}
	p, err := pigeon.New(cfg, newMailer(sender))
	require.NoError(t, err)

	sender.On("Send", mock.Anything, mock.MatchedBy(func(e *mailer.Email) bool {
		return e.Text == "plain text" && e.HTML == "" && e.Subject == "Pigeon Delivery"
	})).Return(nil)

	require.True(t, p.To("john@example.com").SendRaw(context.Background(), "plain text"))
	sender.AssertExpectations(t)
}

func TestPigeon_PretendThroughMailer(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadYAML([]byte(presetsYAML))
	require.NoError(t, err)

	sender := &mockSender{}
	m := newMailer(sender)
	p, err := pigeon.New(cfg, m)
	require.NoError(t, err)

	require.True(t, p.To("john@example.com").Subject("Hi").Pretend(true).Send(context.Background()))
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	require.False(t, m.DryRun())
}

func TestPigeon_FailuresAreLogged(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadYAML([]byte(presetsYAML))
	require.NoError(t, err)

	var logs bytes.Buffer
	sender := &mockSender{}
	p, err := pigeon.New(cfg, newMailer(sender), pigeon.WithLogger(logger.NewWithWriter(&logs, slog.LevelInfo)))
	require.NoError(t, err)

	sender.On("Send", mock.Anything, mock.Anything).Return(errors.New("421 service not available"))
	require.False(t, p.To("john@example.com").Subject("Hi").Send(context.Background()))
	require.Contains(t, logs.String(), `"msg":"transport failure"`)

	logs.Reset()
	require.False(t, p.To("john@example.com").Subject("Hi").Template("missing.md").Send(context.Background()))
	require.Contains(t, logs.String(), `"msg":"could not send message"`)
}

func TestNewFromFile(t *testing.T) {
	t.Parallel()

	_, err := pigeon.NewFromFile(filepath.Join(t.TempDir(), "missing.yaml"), newMailer(&mockSender{}))
	require.ErrorIs(t, err, config.ErrReadFailed)

	path := filepath.Join(t.TempDir(), "pigeon.yaml")
	require.NoError(t, os.WriteFile(path, []byte(presetsYAML), 0o600))

	p, err := pigeon.NewFromFile(path, newMailer(&mockSender{}))
	require.NoError(t, err)
	require.Equal(t, []pigeon.Address{{Email: "team@example.com", Name: "Pigeon Team"}}, p.Draft().From)

	_, err = p.Type("nope")
	require.ErrorIs(t, err, pigeon.ErrUnknownPreset)
}
