package main

import "github.com/whitehall-lang/ffibridge/internal/cli"

func main() {
	cli.Execute()
}
