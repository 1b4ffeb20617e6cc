package main

import (
	"github.com/edinex/edinex/cmd"
)

func main() {
	cmd.Execute()
}
