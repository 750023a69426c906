package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/gentam/eeprom25"
	"github.com/spf13/cobra"
)

var (
	readAddr int
	readLen  int
	readOut  string
)

var readCmd = &cobra.Command{
	Use:   "read",
	Short: "Read EEPROM contents",
	Long:  `Read n bytes from the EEPROM and hex dump them or save them to a file`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEEPROM(func(e *eeprom25.EEPROM) error {
			data, err := e.Read(readAddr, readLen)
			if err != nil {
				return fmt.Errorf("read eeprom failed: %w", err)
			}
			if readOut == "" {
				fmt.Print(hex.Dump(data))
				return nil
			}
			return os.WriteFile(readOut, data, 0644)
		})
	},
}

func init() {
	rootCmd.AddCommand(readCmd)
	readCmd.Flags().IntVarP(&readAddr, "addr", "A", 0, "start address")
	readCmd.Flags().IntVarP(&readLen, "count", "n", 256, "number of bytes to read")
	readCmd.Flags().StringVarP(&readOut, "output", "o", "", "output file (default: hexdump)")
}
