package util

import (
	"os"
	"strconv"

	ps "github.com/mitchellh/go-ps"
)

// IsRunningInOtherProcess returns true if the pid file at pathToFile
// contains a pid belonging to another live process. The server refuses
// to start when this is true, so two instances never share one cache
// directory.
func IsRunningInOtherProcess(pathToFile string) bool {
	if FileExists(pathToFile) {
		pid := ReadPidFile(pathToFile)
		return pid != 0 && pid != os.Getpid() && ProcessIsRunning(pid)
	}
	return false
}

// ReadPidFile returns the pid from the specified file.
func ReadPidFile(pathToFile string) int {
	if data, err := os.ReadFile(pathToFile); err == nil {
		if pid, err := strconv.Atoi(string(data)); err == nil {
			return pid
		}
	}
	return 0
}

// WritePidFile writes this process' pid to the specified file.
func WritePidFile(pathToFile string) error {
	pidStr := strconv.Itoa(os.Getpid())
	return os.WriteFile(pathToFile, []byte(pidStr), 0664)
}

// DeletePidFile deletes the specified pid file.
func DeletePidFile(pathToFile string) error {
	if !FileExists(pathToFile) {
		return nil
	}
	return os.Remove(pathToFile)
}

// ProcessIsRunning returns true if the process with pid is running.
// This uses go-ps internally because golang's os.FindProcess always
// returns a process on *nix, even when no process with that pid is
// running.
func ProcessIsRunning(pid int) bool {
	proc, _ := ps.FindProcess(pid)
	return proc != nil
}
