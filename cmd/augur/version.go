package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ternarybob/augur/internal/common"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("Augur version %s\n", common.GetBuildInfo())
	},
}
