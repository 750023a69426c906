package main

import (
	"fmt"

	"github.com/gentam/eeprom25"
	"github.com/spf13/cobra"
)

var sleepCmd = &cobra.Command{
	Use:   "sleep",
	Short: "Put the EEPROM into deep power-down",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEEPROM(func(e *eeprom25.EEPROM) error {
			return e.DeepPowerDown()
		})
	},
}

var wakeCmd = &cobra.Command{
	Use:   "wake",
	Short: "Release the EEPROM from deep power-down",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEEPROM(func(e *eeprom25.EEPROM) error {
			id, err := e.Wake()
			if err != nil {
				return err
			}
			fmt.Printf("%#02x\n", id)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(sleepCmd, wakeCmd)
}
