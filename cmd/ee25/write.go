package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/gentam/eeprom25"
	"github.com/spf13/cobra"
)

var (
	writeAddr   int
	writeErase  bool
	writeVerify bool
)

var writeCmd = &cobra.Command{
	Use:   "write <file>",
	Short: "Write a file to the EEPROM",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to open file: %w", err)
		}

		return withEEPROM(func(e *eeprom25.EEPROM) error {
			if writeErase {
				if err := e.EraseChip(); err != nil {
					return fmt.Errorf("chip erase failed: %w", err)
				}
			}
			if err := e.Write(writeAddr, data); err != nil {
				return fmt.Errorf("write eeprom failed: %w", err)
			}
			if !writeVerify {
				return nil
			}
			got, err := e.Read(writeAddr, len(data))
			if err != nil {
				return fmt.Errorf("verify read failed: %w", err)
			}
			if i := mismatch(got, data); i >= 0 {
				return fmt.Errorf("verify failed at 0x%05X: read 0x%02X, wrote 0x%02X",
					writeAddr+i, got[i], data[i])
			}
			fmt.Printf("%d bytes written and verified\n", len(data))
			return nil
		})
	},
}

// mismatch returns the index of the first differing byte, or -1.
func mismatch(a, b []byte) int {
	if bytes.Equal(a, b) {
		return -1
	}
	for i := range min(len(a), len(b)) {
		if a[i] != b[i] {
			return i
		}
	}
	return min(len(a), len(b))
}

func init() {
	rootCmd.AddCommand(writeCmd)
	writeCmd.Flags().IntVarP(&writeAddr, "addr", "A", 0, "start address")
	writeCmd.Flags().BoolVarP(&writeErase, "erase", "e", false, "erase the entire chip first")
	writeCmd.Flags().BoolVar(&writeVerify, "verify", false, "read back and compare")
}
