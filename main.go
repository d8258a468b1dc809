package main

import "cast_check/cmd"

func main() {
	cmd.Execute()
}
