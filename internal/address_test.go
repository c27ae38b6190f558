package internal

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/pigeon/pkg/mailer"
)

func TestAddressList_Add(t *testing.T) {
	t.Parallel()

	var l AddressList
	require.Zero(t, l.Len())
	require.Nil(t, l.List())

	l.Add("a@example.com", "A")
	l.Add("b@example.com", "")
	l.Add("a@example.com", "Alice")

	require.Equal(t, 2, l.Len())
	require.Equal(t, []mailer.Address{
		{Email: "a@example.com", Name: "Alice"},
		{Email: "b@example.com"},
	}, l.List())
}

func TestAddressList_ListIsCopy(t *testing.T) {
	t.Parallel()

	var l AddressList
	l.Add("a@example.com", "A")

	list := l.List()
	list[0].Name = "changed"
	require.Equal(t, "A", l.List()[0].Name)
}

func TestAddressList_Reset(t *testing.T) {
	t.Parallel()

	var l AddressList
	l.Add("a@example.com", "A")
	l.Reset()
	require.Zero(t, l.Len())

	l.Add("a@example.com", "")
	require.Equal(t, []mailer.Address{{Email: "a@example.com"}}, l.List())
}

func TestAddressKind_String(t *testing.T) {
	t.Parallel()

	require.Equal(t, "to", KindTo.String())
	require.Equal(t, "reply_to", KindReplyTo.String())
	require.Equal(t, "sender", KindSender.String())
	require.Equal(t, "AddressKind(42)", AddressKind(42).String())
}
