//go:build mage

// Magefile for repo-file-sync build and test tasks
package main

import (
	"fmt"

	"github.com/magefile/mage/sh"
)

// Build compiles the CLI into ./bin/repo-file-sync
func Build() error {
	fmt.Println("Building repo-file-sync...")
	return sh.RunV("go", "build", "-o", "bin/repo-file-sync", "./cmd/repo-file-sync")
}

// Install installs the CLI into GOPATH/bin
func Install() error {
	return sh.RunV("go", "install", "./cmd/repo-file-sync")
}

// Test runs the unit test suite
func Test() error {
	return sh.RunV("go", "test", "-race", "-short", "./...")
}

// TestFull runs all tests including git integration tests
func TestFull() error {
	return sh.RunV("go", "test", "-race", "-timeout=10m", "./...")
}

// Cover runs the tests with coverage output
func Cover() error {
	if err := sh.RunV("go", "test", "-race", "-coverprofile=coverage.out", "./..."); err != nil {
		return err
	}
	return sh.RunV("go", "tool", "cover", "-func=coverage.out")
}

// Lint runs golangci-lint
func Lint() error {
	return sh.RunV("golangci-lint", "run", "./...")
}

// Clean removes build artifacts
func Clean() error {
	return sh.Rm("bin")
}
