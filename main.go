// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/moorestech/mcpsetup/cmd/mcpsetup"

func main() {
	cmd.Execute()
}
