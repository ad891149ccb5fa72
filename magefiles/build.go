//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Builds the contentbuild binary into bin/.
func (Build) Binary() error {
	if _, err := executeCmd("go", withArgs("build", "-o", "bin/contentbuild", ".")); err != nil {
		return err
	}
	return nil
}

// Runs the full content build: shaders, accessors and manifest.
func (Build) Content() error {
	return contentbuild()
}

// Compiles only the shaders, using the paths and toolchain from contentbuild.toml.
func (Build) Shaders() error {
	return contentbuild("shaders")
}

func contentbuild(args ...string) error {
	cmdArgs := append([]string{"run", "."}, args...)
	if mg.Verbose() {
		cmdArgs = append(cmdArgs, "--log-level", "debug")
	}
	if _, err := executeCmd("go", withArgs(cmdArgs...), withStream()); err != nil {
		return err
	}
	return nil
}
