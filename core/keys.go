package core

// Key codes follow the GLFW numbering, so a glfw-backed window can pass them
// straight through.
const (
	KeyA      = 65
	KeyD      = 68
	KeyS      = 83
	KeyW      = 87
	KeyEscape = 256
)
