package util

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

const (
	MimeOctetStream = "application/octet-stream"
	MimeTextPlain   = "text/plain"
)

// Context keys set by the session middleware.
const (
	ContextSessionKey = "session"
	ContextClientKey  = "apiClient"
)
