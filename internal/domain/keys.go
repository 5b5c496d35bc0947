package domain

import "strings"

// KeyPrefix namespaces every key this service writes to the store.
const KeyPrefix = "matchcraft:"

// Store layout of user records.
const (
	UserKeyPrefix = KeyPrefix + "user:"
	UsersIndex    = KeyPrefix + "users:idx"
	UserNamesKey  = KeyPrefix + "users:names"
)

// nameSep splits the lowercased display name from the id in a names member.
const nameSep = "\x00"

// UserKey returns the hash key of a user record.
func UserKey(id string) string { return UserKeyPrefix + id }

// UserIDFromKey strips the record prefix from a hash key.
func UserIDFromKey(key string) string { return strings.TrimPrefix(key, UserKeyPrefix) }

// NameMember returns the lexicographic index member for a display name.
// Names are lowercased so prefix scans are case-insensitive.
func NameMember(displayName, id string) string {
	return strings.ToLower(strings.TrimSpace(displayName)) + nameSep + id
}

// IDFromNameMember extracts the user id from a names member.
func IDFromNameMember(member string) string {
	if i := strings.LastIndex(member, nameSep); i >= 0 {
		return member[i+len(nameSep):]
	}
	return member
}

// Store layout of messages.

// MessageKey returns the hash key of a message.
func MessageKey(conversationID, messageID string) string {
	return KeyPrefix + "msg:" + conversationID + ":" + messageID
}

// TimelineKey returns the sorted set of message ids of a conversation.
func TimelineKey(conversationID string) string {
	return KeyPrefix + "conv:" + conversationID + ":timeline"
}

// UnreadKey returns the unread counter of a conversation for one reader.
func UnreadKey(conversationID, readerID string) string {
	return KeyPrefix + "conv:" + conversationID + ":unread:" + readerID
}

// InboxKey returns the sorted set of conversation ids of a user, scored by
// last activity.
func InboxKey(userID string) string { return KeyPrefix + "inbox:" + userID }
