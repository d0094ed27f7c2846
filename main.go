package main

import "github.com/tanq16/dlprobe/cmd"

func main() {
	cmd.Execute()
}
