//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Test runs all tests with the race detector.
func Test() error {
	return sh.RunV("go", "test", "-race", "-count=1", "./...")
}

// Vet runs go vet.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Check runs vet and tests.
func Check() {
	mg.SerialDeps(Vet, Test)
}

// Run starts the bridge with the given config file.
func Run(config string) error {
	args := []string{"run", "./cmd/jsbridge"}
	if config != "" {
		args = append(args, "-config", config)
	}
	return sh.RunV("go", args...)
}
