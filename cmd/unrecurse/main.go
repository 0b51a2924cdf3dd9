package main

import (
	"unrecurse/cmd/unrecurse/commands"
)

func main() {
	commands.Execute()
}
