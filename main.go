package main

import "github.com/qobs-build/ninjasetup/cmd"

func main() {
	cmd.Execute()
}
