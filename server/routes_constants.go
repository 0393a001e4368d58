package server

// Route path constants
const (
	// Auth Routes
	RouteAuthGoogle   = "/auth/google"
	RouteAuthCallback = "/auth/google/callback"
	RouteAuthStatus   = "/auth/status"
	RouteAuthUser     = "/auth/user"
	RouteAuthLogout   = "/auth/logout"

	// Media Routes
	RoutePhotos       = "/photos"
	RoutePhotosSearch = "/photos/search"
	RoutePhotoItem    = "/photos/{id}"

	RouteHealth = "/health"

	// RouteAuthSuccess is the browser application's landing page after login.
	RouteAuthSuccess = "/auth-success"
)
