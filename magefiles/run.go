//go:build mage

package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Builds the tools and renders every rig. RAGDOLL_CONFIG selects a config file.
func (Run) Render() error {
	mg.Deps(Build.Tools)
	args := []string{}
	if cfg := os.Getenv("RAGDOLL_CONFIG"); cfg != "" {
		args = append(args, "-config", cfg)
	}
	fmt.Println("Rendering rigs...")
	_, err := executeCmd("./bin/render", withArgs(args...), withStream())
	return err
}

// Renders once and then keeps re-rendering on changes.
func (Run) Watch() error {
	mg.Deps(Build.Tools)
	_, err := executeCmd("./bin/render", withArgs("-watch"), withStream())
	return err
}

// Prints the structure of one rig: mage run:inspect rigs/puppet.yaml
func (Run) Inspect(path string) error {
	mg.Deps(Build.Tools)
	_, err := executeCmd("./bin/inspect", withArgs(path), withStream())
	return err
}
