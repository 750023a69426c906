package main

import (
	"fmt"

	"github.com/gentam/eeprom25"
	"github.com/spf13/cobra"
)

var (
	protectLevel uint8
	protectWPEN  bool
)

var protectCmd = &cobra.Command{
	Use:   "protect",
	Short: "Show or change block write protection",
	Long: `Show the block protection level and WPEN bit, or change them with
--level (0: none, 1: upper quarter, 2: upper half, 3: all) and --wpen.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEEPROM(func(e *eeprom25.EEPROM) error {
			if cmd.Flags().Changed("level") {
				if err := e.SetBlockProtect(eeprom25.Protection(protectLevel)); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("wpen") {
				if err := e.SetWriteProtectEnable(protectWPEN); err != nil {
					return err
				}
			}

			sr, err := e.Status()
			if err != nil {
				return err
			}
			fmt.Printf("BP=%d protected: %s\n", sr.BlockProtect(), sr.BlockProtect())
			fmt.Printf("WPEN=%v\n", sr.WriteProtectEnable())
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(protectCmd)
	protectCmd.Flags().Uint8Var(&protectLevel, "level", 0, "block protection level 0-3")
	protectCmd.Flags().BoolVar(&protectWPEN, "wpen", false, "set the write-protect enable bit")
}
