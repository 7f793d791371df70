package main

import "github.com/nholden/beacon/cmd/beacon/cmd"

func main() {
	cmd.Execute()
}
