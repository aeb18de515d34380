package main

import "github.com/marshallshelly/pebble-mysql/cmd/pebble/commands"

func main() {
	commands.Execute()
}
