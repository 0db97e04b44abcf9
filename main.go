package main

import "github.com/stgreenb/FSF/cmd"

func main() {
	cmd.Execute()
}
