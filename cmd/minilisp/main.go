// Copyright © 2018 The ELPS authors

package main

import "github.com/minilisp/minilisp/cmd"

func main() {
	cmd.Execute()
}
