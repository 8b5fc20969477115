package main

import "github.com/tinwheel/dicebox/cmd"

func main() {
	cmd.Execute()
}
