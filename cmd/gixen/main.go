package main

import (
	"jo3qma.com/gixen/cmd/gixen/cmd"
)

func main() {
	cmd.Execute()
}
