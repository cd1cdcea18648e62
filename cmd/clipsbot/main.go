package main

import "github.com/gxbriex/clips/internal/cli"

func main() {
	cli.Main()
}
