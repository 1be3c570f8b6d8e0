// Package export turns materialized tables into downloadable payloads.
package export

const (
	ContentTypeSQLite      = "application/x-sqlite3"
	ContentTypeSpreadsheet = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypeText        = "text/plain; charset=utf-8"

	DatabaseFilename = "database.sqlite"
	FullSeedFilename = "full-database-seed.ts"
)

// Payload is an in-memory file ready to be handed to a download.
type Payload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Database wraps serialized engine bytes.
func Database(data []byte) Payload {
	return Payload{
		Filename:    DatabaseFilename,
		ContentType: ContentTypeSQLite,
		Data:        data,
	}
}
