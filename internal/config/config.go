package config

const (
	DefaultTimeZone = "UTC"

	// Accuracy snapshot job
	DefaultSnapshotSchedule = "0 2 * * *" // nightly at 02:00
	SnapshotBatchSize       = 50

	// Upload handling
	UploadMaxMemoryBytes = 32 << 20
)
