package main

import "skipgraph/internal/cli"

func main() {
	cli.Execute()
}
