package main

import (
	"etf-watcher/internal/cli"
)

func main() {
	cli.Execute()
}
