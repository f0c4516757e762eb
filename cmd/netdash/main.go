package main

import "netdash/internal/cli"

func main() {
	cli.Execute()
}
