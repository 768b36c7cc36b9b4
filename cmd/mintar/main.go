package main

import (
	"github.com/lukelzlz/mintar/internal/cli"
)

func main() {
	cli.Execute()
}
