package main

import (
	"fmt"

	"github.com/gentam/eeprom25"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show signature and status register",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEEPROM(func(e *eeprom25.EEPROM) error {
			id, err := e.Identity()
			if err != nil {
				return err
			}
			sr, err := e.Status()
			if err != nil {
				return err
			}

			fmt.Printf("Signature:       %#02x\n", id)
			fmt.Printf("Capacity:        %d bytes (%d pages, %d sectors)\n",
				eeprom25.Capacity, eeprom25.Capacity/eeprom25.PageSize, eeprom25.Sectors)
			fmt.Printf("Status:          %s\n", sr)
			fmt.Printf("Protected:       %s\n", sr.BlockProtect())
			fmt.Printf("WPEN:            %v\n", sr.WriteProtectEnable())
			fmt.Printf("WEL:             %v\n", sr.WriteEnableLatch())
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
