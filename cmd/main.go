package main

import "github.com/hq040506/DL-student-assistant/internal/cli"

func main() {
	cli.Execute()
}
