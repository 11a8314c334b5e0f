package mailbox

import (
	"strings"

	"klar/models"
)

// InView reports whether e belongs to the folder view v.
func InView(e models.Email, v models.View) bool {
	switch v {
	case models.ViewInbox:
		return !e.IsArchived && !e.IsDeleted && !e.IsSent
	case models.ViewStarred:
		return e.IsStarred && !e.IsDeleted
	case models.ViewSent:
		return e.IsSent && !e.IsDeleted
	case models.ViewArchived:
		return e.IsArchived && !e.IsDeleted
	case models.ViewTrash:
		return e.IsDeleted
	}
	return false
}

// MatchesQuery reports whether the sender, subject or preview of e contains
// query, ignoring case. query must already be trimmed and lower-cased.
func MatchesQuery(e models.Email, query string) bool {
	return strings.Contains(strings.ToLower(e.From), query) ||
		strings.Contains(strings.ToLower(e.Subject), query) ||
		strings.Contains(strings.ToLower(e.Preview), query)
}

// Filter returns the emails of view v matching the search query, in
// collection order. The folder predicate is applied first; a blank query
// keeps the whole folder.
func Filter(emails []models.Email, v models.View, query string) []models.Email {
	query = strings.ToLower(strings.TrimSpace(query))

	out := make([]models.Email, 0, len(emails))
	for _, e := range emails {
		if !InView(e, v) {
			continue
		}
		if query != "" && !MatchesQuery(e, query) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Count computes the sidebar counters over the whole collection.
func Count(emails []models.Email) models.Counters {
	var c models.Counters
	for _, e := range emails {
		if !e.IsRead && !e.IsArchived && !e.IsDeleted && !e.IsSent {
			c.Unread++
		}
		if e.IsStarred && !e.IsDeleted {
			c.Starred++
		}
		if e.IsArchived && !e.IsDeleted {
			c.Archived++
		}
		if e.IsDeleted {
			c.Trash++
		}
	}
	return c
}

// Retention policy of the digital detox warning
const (
	RetentionDays = 30
	WarningDays   = 7
)

// Expiry returns the days left before e would be auto-deleted and whether
// the expiring warning applies. Starred emails never expire.
func Expiry(e models.Email) (daysRemaining int, expiring bool) {
	daysRemaining = RetentionDays - e.DaysInInbox
	return daysRemaining, daysRemaining <= WarningDays && !e.IsStarred
}
