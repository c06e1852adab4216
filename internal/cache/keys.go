package cache

import "strconv"

// Key names mirror the resources the API exposes so a single mutation maps
// onto a fixed, small set of invalidations.

func NotesKey(userID string) string {
	return "notes:" + userID
}

func NoteKey(userID, noteID string) string {
	return "notes:" + userID + ":" + noteID
}

func RecentNotesKey(userID string, limit int) string {
	return "notes:" + userID + ":recent:" + strconv.Itoa(limit)
}

func SummaryKey(noteID string) string {
	return "summaries:" + noteID + ":current"
}

func RecentSummariesKey(userID string, limit int) string {
	return "summaries:recent:" + userID + ":" + strconv.Itoa(limit)
}

func StatsKey(userID string) string {
	return "stats:" + userID
}

func RevokedTokenKey(tokenID string) string {
	return "revoked:" + tokenID
}

// RecentLimits are the list sizes the dashboard asks for; mutations
// invalidate each of them.
var RecentLimits = []int{5, 100}

func TracksRecentLimit(limit int) bool {
	for _, l := range RecentLimits {
		if l == limit {
			return true
		}
	}
	return false
}

// NoteListKeys returns every list key that changes when any of the user's
// notes is created, edited or deleted.
func NoteListKeys(userID string) []string {
	keys := []string{NotesKey(userID), StatsKey(userID)}
	for _, l := range RecentLimits {
		keys = append(keys, RecentNotesKey(userID, l))
	}
	return keys
}

func RecentSummaryKeys(userID string) []string {
	keys := make([]string, 0, len(RecentLimits))
	for _, l := range RecentLimits {
		keys = append(keys, RecentSummariesKey(userID, l))
	}
	return keys
}

// SummaryListKeys returns every key that changes when a summary is added
// to one of the user's notes.
func SummaryListKeys(userID, noteID string) []string {
	return append([]string{SummaryKey(noteID), StatsKey(userID)}, RecentSummaryKeys(userID)...)
}
