package main

import "github.com/amterp/qrcard/internal/cli"

func main() {
	cli.Run()
}
