package main

import (
	"github.com/gentam/eeprom25"
	"github.com/spf13/cobra"
)

var eraseCmd = &cobra.Command{
	Use:   "erase",
	Short: "Erase a page, a sector or the whole chip",
}

var erasePageCmd = &cobra.Command{
	Use:   "page <addr>",
	Short: "Erase the 256-byte page containing addr",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, err := parseAddr(args[0])
		if err != nil {
			return err
		}
		return withEEPROM(func(e *eeprom25.EEPROM) error {
			return e.ErasePage(addr)
		})
	},
}

var eraseSectorCmd = &cobra.Command{
	Use:   "sector <addr>",
	Short: "Erase the 32KB sector containing addr",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, err := parseAddr(args[0])
		if err != nil {
			return err
		}
		return withEEPROM(func(e *eeprom25.EEPROM) error {
			return e.EraseSector(addr)
		})
	},
}

var eraseChipCmd = &cobra.Command{
	Use:   "chip",
	Short: "Erase the entire chip",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEEPROM(func(e *eeprom25.EEPROM) error {
			return e.EraseChip()
		})
	},
}

func init() {
	rootCmd.AddCommand(eraseCmd)
	eraseCmd.AddCommand(erasePageCmd, eraseSectorCmd, eraseChipCmd)
}
