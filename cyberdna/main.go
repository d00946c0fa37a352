package main

import "github.com/cyberdna/cyberdna/cyberdna/cmd"

func main() {
	cmd.Execute()
}
