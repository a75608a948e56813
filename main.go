package main

import "lector/core/cmd"

func main() {
	cmd.Execute()
}
