package domain

import "unicode/utf8"

// MaxTextLength is the character limit of the titles, usernames and emails
// the database stores.
const MaxTextLength = 255

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

func TooLong(s string) bool {
	return utf8.RuneCountInString(s) > MaxTextLength
}
