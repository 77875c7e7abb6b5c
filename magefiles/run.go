//go:build mage

package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// testbedArgs passes LUMEN_PROPS through as the properties file.
func testbedArgs(args ...string) []string {
	if props := os.Getenv("LUMEN_PROPS"); props != "" {
		args = append(args, "-props", props)
	}
	return args
}

// Renders a few frames of the testbed scene and writes them to out/.
// LUMEN_PROPS selects a properties file.
func (Run) Testbed() error {
	mg.Deps(Build.Testbed)
	fmt.Println("Run testbed...")
	_, err := executeCmd("bin/lumen", withArgs(testbedArgs("-frames", "30", "-out", "out")...), withStream())
	return err
}

// Renders until interrupted, reloading LUMEN_PROPS whenever it changes.
func (Run) Watch() error {
	mg.Deps(Build.Testbed)
	if os.Getenv("LUMEN_PROPS") == "" {
		return fmt.Errorf("run:watch needs LUMEN_PROPS")
	}
	fmt.Println("Run testbed with props reload...")
	_, err := executeCmd("bin/lumen", withArgs(testbedArgs("-frames", "0", "-watch", "-debug")...), withStream())
	return err
}
