package main

import "github.com/debtflow/collections/cmd"

func main() {
	cmd.Execute()
}
