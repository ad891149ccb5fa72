//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Rebuilds content whenever the content roots change.
func (Run) Watch() error {
	fmt.Println("Watching content...")
	return contentbuild("watch")
}

// Runs the test suite.
func Test() error {
	if _, err := executeCmd("go", withArgs("test", "./..."), withStream()); err != nil {
		return err
	}
	return nil
}

// Tidies go.mod.
func Tidy() error {
	if _, err := executeCmd("go", withArgs("mod", "tidy")); err != nil {
		return fmt.Errorf("failed to run go mod tidy: %w", err)
	}
	return nil
}
