package main

import "github.com/shouni/visionary-gallery/internal/cli"

func main() {
	cli.Execute()
}
