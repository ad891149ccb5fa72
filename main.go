package main

import "github.com/spaghettifunk/contentbuild/cmd"

func main() {
	cmd.Execute()
}
