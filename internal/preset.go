package internal

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/dmitrymomot/pigeon/pkg/mailer"
)

// DefaultPreset is applied on construction and after every send.
const DefaultPreset = "default"

const (
	defaultPresetPath = "pigeon.default"
	messageTypesPath  = "pigeon.message_types"
)

// presetOp is a decoded preset field, ready to apply.
type presetOp func(p *Pigeon)

type presetField struct {
	decode func(v any) (presetOp, error)
	name   string
}

// errSkipField marks a value that is ignored instead of rejected.
var errSkipField = errors.New("field skipped")

// presetFields lists the recognized fields in application order.
var presetFields = []presetField{
	{name: "layout", decode: decodeString(func(p *Pigeon, s string) { p.layout.SetLayout(s) })},
	{name: "template", decode: decodeString(func(p *Pigeon, s string) { p.layout.SetTemplate(s) })},
	{name: "message_variables", decode: decodeVariables},
	{name: "to", decode: decodeAddressField(KindTo)},
	{name: "cc", decode: decodeAddressField(KindCc)},
	{name: "bcc", decode: decodeAddressField(KindBcc)},
	{name: "reply_to", decode: decodeAddressField(KindReplyTo)},
	{name: "from", decode: decodeAddressField(KindFrom)},
	{name: "sender", decode: decodeAddressField(KindSender)},
	{name: "subject", decode: decodeString(func(p *Pigeon, s string) { p.subject = s })},
	{name: "attachments", decode: decodeAttachmentField},
	{name: "pretend", decode: decodePretend},
}

// presetAliases maps lower-cased alternative spellings to field names.
var presetAliases = map[string]string{
	"replyto": "reply_to",
}

func canonicalField(key string) (string, bool) {
	k := strings.ToLower(key)
	if alias, ok := presetAliases[k]; ok {
		k = alias
	}
	_, known := lo.Find(presetFields, func(f presetField) bool { return f.name == k })
	return k, known
}

// preset is a fully decoded preset. Nothing is applied until every field
// decoded successfully.
type preset struct {
	name    string
	ops     []presetOp
	skipped []string
}

type presetLoader struct {
	source ConfigSource
}

func presetPath(name string) string {
	if name == DefaultPreset {
		return defaultPresetPath
	}
	return messageTypesPath + "." + name
}

func (l presetLoader) resolve(name string) (map[string]any, error) {
	raw := l.source.Get(presetPath(name))
	if raw == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	fields, ok := toStringMap(raw)
	if !ok {
		return nil, fmt.Errorf("%w: %q is %T, not a mapping", ErrMalformedPreset, name, raw)
	}
	return fields, nil
}

func (l presetLoader) load(name string) (*preset, error) {
	fields, err := l.resolve(name)
	if err != nil {
		return nil, err
	}

	keys := lo.Keys(fields)
	slices.Sort(keys)

	values := make(map[string][]any, len(fields))
	var skipped []string
	for _, key := range keys {
		field, known := canonicalField(key)
		if !known {
			skipped = append(skipped, key)
			continue
		}
		values[field] = append(values[field], fields[key])
	}

	p := &preset{name: name}
	for _, f := range presetFields {
		for _, v := range values[f.name] {
			if v == nil {
				continue
			}
			op, err := f.decode(v)
			if errors.Is(err, errSkipField) {
				skipped = append(skipped, f.name)
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("%w: %q field %s: %w", ErrMalformedPreset, name, f.name, err)
			}
			p.ops = append(p.ops, op)
		}
	}

	slices.Sort(skipped)
	p.skipped = skipped
	return p, nil
}

func toStringMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	default:
		return nil, false
	}
}

func scalarString(v any) (string, error) {
	switch s := v.(type) {
	case string:
		return s, nil
	case bool, int, int64, uint64, float64:
		return fmt.Sprint(s), nil
	default:
		return "", fmt.Errorf("expected a string, got %T", v)
	}
}

func decodeString(set func(p *Pigeon, s string)) func(any) (presetOp, error) {
	return func(v any) (presetOp, error) {
		s, err := scalarString(v)
		if err != nil {
			return nil, err
		}
		return func(p *Pigeon) { set(p, s) }, nil
	}
}

func decodeVariables(v any) (presetOp, error) {
	vars, ok := toStringMap(v)
	if !ok {
		return nil, fmt.Errorf("expected a mapping, got %T", v)
	}
	vars = maps.Clone(vars)
	return func(p *Pigeon) { p.layout.MergeVariables(vars) }, nil
}

func decodePretend(v any) (presetOp, error) {
	enabled, ok := v.(bool)
	if !ok {
		return nil, errSkipField
	}
	return func(p *Pigeon) { p.pretend = enabled }, nil
}

func decodeAddressField(kind AddressKind) func(any) (presetOp, error) {
	return func(v any) (presetOp, error) {
		addrs, err := decodeAddresses(v)
		if err != nil {
			return nil, err
		}
		return func(p *Pigeon) { p.Add(kind, addrs...) }, nil
	}
}

// decodeAddresses accepts an address, a list of addresses, a mapping of
// address to display name, or a list mixing both.
func decodeAddresses(v any) ([]mailer.Address, error) {
	switch val := v.(type) {
	case string:
		if val == "" {
			return nil, nil
		}
		return []mailer.Address{{Email: val}}, nil
	case []string:
		return lo.FilterMap(val, func(s string, _ int) (mailer.Address, bool) {
			return mailer.Address{Email: s}, s != ""
		}), nil
	case []any:
		var out []mailer.Address
		for _, item := range val {
			switch item.(type) {
			case nil:
				continue
			case []any, []string:
				return nil, errors.New("nested address list")
			}
			addrs, err := decodeAddresses(item)
			if err != nil {
				return nil, err
			}
			out = append(out, addrs...)
		}
		return out, nil
	}

	m, ok := toStringMap(v)
	if !ok {
		return nil, fmt.Errorf("expected an address, list or mapping, got %T", v)
	}
	emails := lo.Keys(m)
	slices.Sort(emails)

	out := make([]mailer.Address, 0, len(emails))
	for _, email := range emails {
		var name string
		switch n := m[email].(type) {
		case nil:
		case string:
			name = n
		default:
			return nil, fmt.Errorf("display name for %q: expected a string, got %T", email, n)
		}
		out = append(out, mailer.Address{Email: email, Name: name})
	}
	return out, nil
}

func decodeAttachmentField(v any) (presetOp, error) {
	refs, err := decodeAttachments(v)
	if err != nil {
		return nil, err
	}
	return func(p *Pigeon) { p.AttachMany(refs) }, nil
}

// decodeAttachments accepts a path, a {path, options} mapping, or a list of either.
func decodeAttachments(v any) ([]mailer.AttachmentRef, error) {
	switch val := v.(type) {
	case string:
		if val == "" {
			return nil, nil
		}
		return []mailer.AttachmentRef{{Path: val, Options: map[string]string{}}}, nil
	case []any:
		var out []mailer.AttachmentRef
		for _, item := range val {
			switch item.(type) {
			case nil:
				continue
			case []any:
				return nil, errors.New("nested attachment list")
			}
			refs, err := decodeAttachments(item)
			if err != nil {
				return nil, err
			}
			out = append(out, refs...)
		}
		return out, nil
	}

	m, ok := toStringMap(v)
	if !ok {
		return nil, fmt.Errorf("expected a path, mapping or list, got %T", v)
	}
	ref, err := decodeAttachment(m)
	if err != nil {
		return nil, err
	}
	return []mailer.AttachmentRef{ref}, nil
}

func decodeAttachment(m map[string]any) (mailer.AttachmentRef, error) {
	path, ok := m["path"].(string)
	if !ok || path == "" {
		return mailer.AttachmentRef{}, errors.New("attachment requires a path")
	}

	ref := mailer.AttachmentRef{Path: path, Options: map[string]string{}}
	if m["options"] == nil {
		return ref, nil
	}

	opts, ok := toStringMap(m["options"])
	if !ok {
		return mailer.AttachmentRef{}, fmt.Errorf("attachment %q options: expected a mapping, got %T", path, m["options"])
	}
	for k, raw := range opts {
		s, err := scalarString(raw)
		if err != nil {
			return mailer.AttachmentRef{}, fmt.Errorf("attachment %q option %s: %w", path, k, err)
		}
		ref.Options[k] = s
	}
	return ref, nil
}
