//go:build !unix

package service

import "os/exec"

// Only the direct child is killed here, WaitDelay still bounds the run
func killGroup(*exec.Cmd) {}
