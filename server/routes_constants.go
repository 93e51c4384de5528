package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Public entry point, also serves every path without its own route
	RouteHome = "/"

	// Anonymous-only routes
	RouteSignup = "/sign-up/"
	RouteLogin  = "/login/"

	// Authenticated-only routes
	RouteLogout = "/logout/"
	RouteChat   = "/chat/"

	// Static Asset Routes (patterns)
	RouteStaticCSS = "/css/{file}"
)
