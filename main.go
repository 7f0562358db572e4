package main

import "github.com/nextlevelbuilder/runtime-truth/cmd"

func main() {
	cmd.Execute()
}
