// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/go-unzip/cmd"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// main starts the gounzip cli
func main() {
	os.Exit(cmd.Run(context.Background(), os.Args, cmd.Env{
		Version: fmt.Sprintf("%s, commit %s, built at %s", version, commit, date),
	}))
}
