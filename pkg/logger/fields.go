package logger

// Shared log field names, kept consistent so log queries line up across the
// sync engine, the link reconciler and the HTTP layer.
const (
	// FieldRecordID record (note) id field
	FieldRecordID = "recordId"

	// FieldSourceID link source note id field
	FieldSourceID = "sourceId"

	// FieldTargetID link target note id field
	FieldTargetID = "targetId"

	// FieldTitle note title field
	FieldTitle = "title"

	// FieldClientID sync client id field
	FieldClientID = "clientId"

	// FieldDuration elapsed time field
	FieldDuration = "duration"

	// FieldCount record count field
	FieldCount = "count"
)
