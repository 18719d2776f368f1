package main

import (
	"fmt"
	"runtime"
)

func versionString() string {
	return fmt.Sprintf("%s\nGit commit: %s\nBuild date: %s\nGo version: %s\nOS/Arch:    %s/%s",
		Version, GitCommit, BuildDate, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
