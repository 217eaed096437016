//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

var Default = Test

type Check mg.Namespace

// Runs the unit tests with the race detector.
func Test() error {
	return sh.RunV("go", "test", "-race", "-count=1", "./...")
}

// Runs go vet over the module.
func (Check) Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Runs vet and then the tests.
func (Check) All() {
	mg.SerialDeps(Check.Vet, Test)
}

// Removes test databases left behind by interrupted runs.
func Clean() error {
	fmt.Println("Cleaning...")
	return sh.Rm("testdata/tmp")
}
