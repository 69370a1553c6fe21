package main

import "github.com/mcoot/shiftclock/internal/cli"

func main() {
	cli.Execute()
}
