package main

import (
	"github.com/gigscope/gigscope/cmd"
)

func main() {
	cmd.Execute()
}
