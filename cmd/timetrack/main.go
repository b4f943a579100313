package main

import "kuenkele/timetrack/internal/cli"

func main() {
	cli.Execute()
}
