package models

// Entry is a single key/value pair returned by a record store listing.
// Value is empty when the listing was requested without values.
type Entry struct {
	Key   string
	Value string
}
