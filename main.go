package main

import "github.com/fakeyudi/worktime/cmd"

func main() {
	cmd.Execute()
}
