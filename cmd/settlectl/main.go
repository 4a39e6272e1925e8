package main

import "github.com/mcoot/plyr-settlement/internal/cli"

func main() {
	cli.Execute()
}
