package models

import (
	"errors"
	"fmt"

	"github.com/emersion/go-imap"
)

// Email is a mock message of the mailbox.
type Email struct {
	ID          int    `json:"id"`
	From        string `json:"from"`
	Subject     string `json:"subject"`
	Preview     string `json:"preview"`
	Time        string `json:"time"`
	DaysInInbox int    `json:"daysInInbox"`
	IsRead      bool   `json:"isRead"`
	IsStarred   bool   `json:"isStarred"`
	HasShield   bool   `json:"hasShield"`
	IsArchived  bool   `json:"isArchived"`
	IsDeleted   bool   `json:"isDeleted"`
	IsSent      bool   `json:"isSent"`
}

// Keyword flags for states IMAP has no system flag for.
const (
	ArchivedKeyword = "$Archived"
	ShieldKeyword   = "$Shield"
	SentKeyword     = "$Sent"
)

// Flags renders the message state as IMAP flags.
func (e Email) Flags() []string {
	var flags []string
	if e.IsRead {
		flags = append(flags, imap.SeenFlag)
	}
	if e.IsStarred {
		flags = append(flags, imap.FlaggedFlag)
	}
	if e.IsDeleted {
		flags = append(flags, imap.DeletedFlag)
	}
	if e.IsArchived {
		flags = append(flags, ArchivedKeyword)
	}
	if e.HasShield {
		flags = append(flags, ShieldKeyword)
	}
	if e.IsSent {
		flags = append(flags, SentKeyword)
	}
	return flags
}

// HasFlag reports whether the message carries flag. Flags compare the IMAP
// way: system flags are case-insensitive, so do keywords once canonical.
func (e Email) HasFlag(flag string) bool {
	want := imap.CanonicalFlag(flag)
	for _, f := range e.Flags() {
		if imap.CanonicalFlag(f) == want {
			return true
		}
	}
	return false
}

// View is a folder view of the mailbox.
type View string

const (
	ViewInbox    View = "inbox"
	ViewStarred  View = "starred"
	ViewSent     View = "sent"
	ViewArchived View = "archived"
	ViewTrash    View = "trash"
)

// Views lists the folder views in sidebar order.
var Views = []View{ViewInbox, ViewStarred, ViewSent, ViewArchived, ViewTrash}

// ErrUnknownView is returned by ParseView for values outside the enum.
var ErrUnknownView = errors.New("unknown folder view")

// ParseView converts a raw string into a View. The empty string is the inbox.
func ParseView(s string) (View, error) {
	if s == "" {
		return ViewInbox, nil
	}
	for _, v := range Views {
		if View(s) == v {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownView, s)
}

// Counters are the sidebar badges, computed over the whole collection.
type Counters struct {
	Unread   int `json:"unread"`
	Starred  int `json:"starred"`
	Archived int `json:"archived"`
	Trash    int `json:"trash"`
}
