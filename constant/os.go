package constant

// runtime.GOOS values the decoder check and the browser launcher branch on.
const (
	Windows = "windows"
	Darwin  = "darwin"
	Linux   = "linux"
	Android = "android"
)
