package main

import "docstage/internal/cli"

func main() {
	cli.Execute()
}
