package deps

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// CheckDirectoryAccess verifies that the directory exists and is readable,
// and writable when writable is set.
func CheckDirectoryAccess(name, path string, writable bool) Status {
	status := Status{Name: name, Command: path, Description: "directory"}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			status.Detail = "does not exist"
			return status
		}
		status.Detail = fmt.Sprintf("stat: %v", err)
		return status
	}
	if !info.IsDir() {
		status.Detail = "is not a directory"
		return status
	}
	mode := uint32(unix.R_OK | unix.X_OK)
	access := "read ok"
	if writable {
		mode |= unix.W_OK
		access = "read/write ok"
	}
	if err := unix.Access(path, mode); err != nil {
		status.Detail = fmt.Sprintf("insufficient permissions: %v", err)
		return status
	}
	status.Available = true
	status.Detail = access
	return status
}
