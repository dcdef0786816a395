package common

const (
	// MaxUploadBytes is the default multipart limit for image uploads.
	MaxUploadBytes = 20 << 20
	// MaxCanvasRequestBody limits save-canvas bodies, which carry a base64 image.
	MaxCanvasRequestBody = 30 << 20
	// MaxJSONRequestBody limits ordinary JSON request bodies.
	MaxJSONRequestBody = 1 << 20
	// DefaultRecentReports is the recent-reports page size.
	DefaultRecentReports = 4
	// MaxListLimit caps ?limit on listing endpoints.
	MaxListLimit = 500
)
