package main

import "github.com/tessro/lookout/internal/cli"

func main() {
	cli.Execute()
}
