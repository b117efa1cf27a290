//go:build mage

package main

import (
	"path/filepath"

	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

var tools = []string{"render", "inspect"}

// Compiles every tool under cmd/ into bin/.
func (Build) Tools() error {
	for _, t := range tools {
		if _, err := executeCmd("go", withArgs("build", "-o", filepath.Join("bin", t), "./cmd/"+t), withStream()); err != nil {
			return err
		}
	}
	return nil
}

// Runs go vet and the test suite.
func Test() error {
	if _, err := executeCmd("go", withArgs("vet", "./..."), withStream()); err != nil {
		return err
	}
	_, err := executeCmd("go", withArgs("test", "./internal/..."), withStream())
	return err
}

// Runs go mod tidy.
func Tidy() error {
	_, err := executeCmd("go", withArgs("mod", "tidy"))
	return err
}
