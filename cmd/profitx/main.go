package main

import "github.com/profitx/profitx/internal/cli"

func main() {
	cli.Execute()
}
