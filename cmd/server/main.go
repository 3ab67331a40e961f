package main

import "github.com/eventconnect/server/cmd/server/cmd"

func main() {
	cmd.Execute()
}
