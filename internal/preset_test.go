package internal

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/pigeon/pkg/config"
	"github.com/dmitrymomot/pigeon/pkg/mailer"
)

func TestPresetPath(t *testing.T) {
	t.Parallel()

	require.Equal(t, "pigeon.default", presetPath(DefaultPreset))
	require.Equal(t, "pigeon.message_types.user_welcome", presetPath("user_welcome"))
}

func TestType_RoundTrip(t *testing.T) {
	t.Parallel()

	p, _ := newTestPigeon(t, &MockTransport{})

	got, err := p.Type("custom")
	require.NoError(t, err)
	require.Same(t, p, got)
	require.Equal(t, "custom", p.PresetName())
	require.Equal(t, "S", p.Draft().Subject)
	require.Empty(t, p.SkippedFields())
}

func TestType_Unknown(t *testing.T) {
	t.Parallel()

	p, _ := newTestPigeon(t, &MockTransport{})
	_, err := p.Type("custom")
	require.NoError(t, err)

	_, err = p.Type("missing")
	require.ErrorIs(t, err, ErrUnknownPreset)
	require.ErrorContains(t, err, `"missing"`)
	require.Equal(t, "custom", p.PresetName())
}

func TestType_Malformed(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"broken", "bad_subject"} {
		p, _ := newTestPigeon(t, &MockTransport{})
		before := p.Draft()

		_, err := p.Type(name)
		require.ErrorIs(t, err, ErrMalformedPreset)
		require.Equal(t, before, p.Draft(), "builder must be untouched")
		require.Equal(t, DefaultPreset, p.PresetName())
	}
}

func TestType_AppliesAllFields(t *testing.T) {
	t.Parallel()

	p, logs := newTestPigeon(t, &MockTransport{})

	_, err := p.Type("user_welcome")
	require.NoError(t, err)

	d := p.Draft()
	require.Equal(t, "user_welcome", d.Preset)
	require.Equal(t, "customer.html", d.Layout)
	require.Equal(t, "welcome.md", d.Template)
	require.Equal(t, map[string]any{
		"app":                   "Pigeon",
		"appUrl":                "https://example.com",
		mailer.TemplateVariable: "welcome.md",
	}, d.Variables)
	require.Equal(t, []mailer.Address{{Email: "john@example.com"}, {Email: "jane@example.com"}}, d.Cc)
	require.Equal(t, []mailer.Address{{Email: "service@example.com", Name: "Customer Service"}}, d.Bcc)
	require.Equal(t, []mailer.Address{{Email: "contact@example.com"}}, d.ReplyTo)
	require.Equal(t, []mailer.Address{
		{Email: "team@example.com", Name: "Team"},
		{Email: "hello@example.com", Name: "My App"},
	}, d.From)
	require.Equal(t, []mailer.Address{{Email: "sender@example.com"}}, d.Sender)
	require.Equal(t, "Welcome New Customer", d.Subject)
	require.Equal(t, []mailer.AttachmentRef{
		{Path: "/files/terms.pdf", Options: map[string]string{"as": "Terms"}},
	}, d.Attachments)

	require.Equal(t, []string{"priority"}, p.SkippedFields())
	require.Contains(t, logs.String(), "preset fields skipped")
}

func TestType_Pretend(t *testing.T) {
	t.Parallel()

	p, _ := newTestPigeon(t, &MockTransport{})

	_, err := p.Type("pretend_string")
	require.NoError(t, err)
	require.False(t, p.Draft().Pretend)
	require.Equal(t, []string{"pretend"}, p.SkippedFields())
	require.Equal(t, "pretend_string", p.PresetName())

	_, err = p.Type("pretend")
	require.NoError(t, err)
	require.True(t, p.Draft().Pretend)
	require.Empty(t, p.SkippedFields())
}

func TestCanonicalField(t *testing.T) {
	t.Parallel()

	tests := []struct {
		key   string
		want  string
		known bool
	}{
		{"reply_to", "reply_to", true},
		{"replyTo", "reply_to", true},
		{"replyto", "reply_to", true},
		{"Subject", "subject", true},
		{"message_variables", "message_variables", true},
		{"priority", "priority", false},
	}

	for _, tt := range tests {
		got, known := canonicalField(tt.key)
		require.Equal(t, tt.want, got, tt.key)
		require.Equal(t, tt.known, known, tt.key)
	}
}

func TestPresetLoader_AliasAndNil(t *testing.T) {
	t.Parallel()

	loader := presetLoader{source: mapSource{
		"pigeon.message_types.mixed": map[any]any{
			"reply_to": "a@example.com",
			"replyTo":  "b@example.com",
			"cc":       nil,
			"layout":   nil,
		},
	}}

	ps, err := loader.load("mixed")
	require.NoError(t, err)
	require.Len(t, ps.ops, 2)
	require.Empty(t, ps.skipped)
}

func TestDecodeAddresses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      any
		want    []mailer.Address
		wantErr bool
	}{
		{name: "string", in: "a@x.com", want: []mailer.Address{{Email: "a@x.com"}}},
		{name: "empty string", in: "", want: nil},
		{name: "string list", in: []string{"a@x.com", "", "b@x.com"}, want: []mailer.Address{{Email: "a@x.com"}, {Email: "b@x.com"}}},
		{name: "any list", in: []any{"a@x.com", nil, "b@x.com"}, want: []mailer.Address{{Email: "a@x.com"}, {Email: "b@x.com"}}},
		{
			name: "mapping sorted",
			in:   map[string]any{"b@x.com": nil, "a@x.com": "A"},
			want: []mailer.Address{{Email: "a@x.com", Name: "A"}, {Email: "b@x.com"}},
		},
		{
			name: "list of mappings",
			in:   []any{map[string]any{"a@x.com": "A"}, "c@x.com"},
			want: []mailer.Address{{Email: "a@x.com", Name: "A"}, {Email: "c@x.com"}},
		},
		{name: "number", in: 42, wantErr: true},
		{name: "nested list", in: []any{[]any{"a@x.com"}}, wantErr: true},
		{name: "bad name", in: map[string]any{"a@x.com": 1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := decodeAddresses(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeAttachments(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      any
		want    []mailer.AttachmentRef
		wantErr bool
	}{
		{name: "path", in: "/f1.pdf", want: []mailer.AttachmentRef{{Path: "/f1.pdf", Options: map[string]string{}}}},
		{
			name: "mapping",
			in:   map[string]any{"path": "/f2.pdf", "options": map[string]any{"as": "Report", "inline": true}},
			want: []mailer.AttachmentRef{{Path: "/f2.pdf", Options: map[string]string{"as": "Report", "inline": "true"}}},
		},
		{
			name: "list",
			in:   []any{"/f1.pdf", map[string]any{"path": "/f2.pdf"}},
			want: []mailer.AttachmentRef{
				{Path: "/f1.pdf", Options: map[string]string{}},
				{Path: "/f2.pdf", Options: map[string]string{}},
			},
		},
		{name: "missing path", in: map[string]any{"options": map[string]any{}}, wantErr: true},
		{name: "bad options", in: map[string]any{"path": "/f.pdf", "options": "as"}, wantErr: true},
		{name: "bad option value", in: map[string]any{"path": "/f.pdf", "options": map[string]any{"as": []any{1}}}, wantErr: true},
		{name: "number", in: 7, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := decodeAttachments(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

// mapSource serves fixed values by full path.
type mapSource map[string]any

func (m mapSource) Get(path string) any { return m[path] }

func TestType_NumericPresetName(t *testing.T) {
	t.Parallel()

	src, err := config.LoadYAML([]byte(`
pigeon:
  default:
    subject: Hello
  message_types:
    404:
      subject: Page missing
`))
	require.NoError(t, err)

	p, err := New(src, &MockTransport{})
	require.NoError(t, err)

	_, err = p.Type("404")
	require.NoError(t, err)
	require.Equal(t, "404", p.PresetName())
	require.Equal(t, "Page missing", p.Draft().Subject)
}
