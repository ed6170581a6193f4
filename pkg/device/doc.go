// Package device issues the long-lived device id and the per-context
// browser-session ids derived from it.
//
// A device id has the form
//
//	{first 8 hex chars of the machine fingerprint}_{uuid}_{unix seconds}
//
// and is written once to a single-line file (data/sessions/device_id.txt by
// default). Later process starts return the file contents verbatim, without
// re-checking the fingerprint, so the id survives hardware drift. Writes go
// through a temporary file and a rename; a concurrent reader sees either no
// file or a complete id. Failing to persist the id is logged and otherwise
// ignored.
//
// A browser-session id appends "_{4 digits}_{8 hex chars}" to the device id.
// Only the prefix before the first "_" identifies the device when comparing
// stored records; see Prefix.
package device
