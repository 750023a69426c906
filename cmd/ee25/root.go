package main

import (
	"io"
	"log"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	verbose  bool
	adapter  string
	portName string
	clock    string
	vcc      string
	holdPin  string
	wpPin    string
	simImage string
)

var rootCmd = &cobra.Command{
	Use:   "ee25",
	Short: "25AA1024 SPI EEPROM tool",
	Long: `A tool for reading, writing, erasing and protecting a Microchip
25AA1024 SPI EEPROM attached to an FT232H/FT2232H or a spidev port.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if !verbose {
			log.SetOutput(io.Discard)
		}
	},
}

// Execute runs the command selected by the arguments and exits on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	f := rootCmd.PersistentFlags()
	f.BoolVarP(&verbose, "verbose", "v", false, "log every SPI transaction")
	f.StringVarP(&adapter, "adapter", "a", "ftdi", "SPI adapter: ftdi, spidev or sim")
	f.StringVar(&portName, "port", "", "spidev port name, e.g. /dev/spidev0.0")
	f.StringVar(&clock, "clock", "", "SPI clock, e.g. 5MHz (default: maximum for --vcc)")
	f.StringVar(&vcc, "vcc", "3.3V", "EEPROM supply voltage")
	f.StringVar(&holdPin, "hold", "", "HOLD pin name (spidev)")
	f.StringVar(&wpPin, "wp", "", "WP pin name (spidev)")
	f.StringVar(&simImage, "image", "", "backing file of the simulated part (sim)")
}
