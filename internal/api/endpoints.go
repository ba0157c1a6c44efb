package api

// HTTP endpoints exposed to the UI layer.
const (
	AuthCheck      = "/api/auth/check"
	AuthLogin      = "/api/auth/login"
	AuthLogout     = "/api/auth/logout"
	AuthMe         = "/api/auth/me"
	AuthSwitchUser = "/api/auth/switch-user"
	Reporter       = "/api/reporter"
	ChangePassword = "/api/change-password"
	DeviceLog      = "/api/device-log"

	Users       = "/api/users"
	UserByID    = "/api/users/:id"
	UserDevices = "/api/users/:id/devices"
	DeviceByID  = "/api/devices/:deviceId"

	Reports   = "/api/reports"
	Notes     = "/api/notes"
	Documents = "/api/documents"
)

// SessionEndpoints require the authenticated cookie rank; a claimed identity
// never passes them.
var SessionEndpoints = map[string]bool{
	ChangePassword: true,
	UserDevices:    true,
	DeviceByID:     true,
}
