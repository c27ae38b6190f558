package internal

import (
	"fmt"

	"github.com/dmitrymomot/pigeon/pkg/mailer"
)

// AddressKind selects one of the address collections of a message.
type AddressKind int

const (
	KindTo AddressKind = iota
	KindCc
	KindBcc
	KindReplyTo
	KindFrom
	KindSender
)

func (k AddressKind) String() string {
	switch k {
	case KindTo:
		return "to"
	case KindCc:
		return "cc"
	case KindBcc:
		return "bcc"
	case KindReplyTo:
		return "reply_to"
	case KindFrom:
		return "from"
	case KindSender:
		return "sender"
	default:
		return fmt.Sprintf("AddressKind(%d)", int(k))
	}
}

// AddressList is an insertion-ordered collection keyed by address.
// Adding an address that is already present replaces its display name and
// keeps its position.
type AddressList struct {
	index map[string]int
	items []mailer.Address
}

// Add inserts or updates an address.
func (l *AddressList) Add(email, name string) {
	if l.index == nil {
		l.index = make(map[string]int)
	}
	if i, ok := l.index[email]; ok {
		l.items[i].Name = name
		return
	}
	l.index[email] = len(l.items)
	l.items = append(l.items, mailer.Address{Email: email, Name: name})
}

// Len returns the number of addresses.
func (l *AddressList) Len() int { return len(l.items) }

// List returns a copy of the addresses in insertion order.
func (l *AddressList) List() []mailer.Address {
	if len(l.items) == 0 {
		return nil
	}
	return append([]mailer.Address(nil), l.items...)
}

// Reset empties the list.
func (l *AddressList) Reset() {
	l.items = nil
	l.index = nil
}
