package main

import "github.com/gkvlabs/gKV/cmd"

func main() {
	cmd.Execute()
}
