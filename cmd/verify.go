package cmd

import (
	"github.com/markusressel/tcoracle/internal"
	"github.com/markusressel/tcoracle/internal/configuration"
	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Run every sensor and fault scenario against the device",
	Long: `Injects a temperature into every discovered sensor class and every
fault at the configured ambient temperatures, then checks that the pwm and
fan speeds converge to the expected values. This is the default command.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		configuration.DetectAndReadConfigFile()
		return internal.RunVerification()
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
