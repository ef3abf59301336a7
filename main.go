package main

import "github.com/go-i2p/bootgate/cmd"

func main() {
	cmd.Execute()
}
