package main

import "github.com/FluidXR/wearctl/cmd"

func main() {
	cmd.Execute()
}
