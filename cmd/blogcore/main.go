package main

import "github.com/hypergopher/blogcore/cmd/blogcore/cmd"

func main() {
	cmd.Execute()
}
