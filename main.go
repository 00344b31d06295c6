package main

import "github.com/croplens/croplens/cmd"

func main() {
	cmd.Execute()
}
