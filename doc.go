// Package eeprom25 drives the Microchip 25AA1024 1 Mbit SPI serial EEPROM.
//
// The driver talks to the part through a Transport, a chip-select framed
// full-duplex byte exchange. SPITransport adapts a periph.io spi.Conn, and
// Open wires one up from an FT232H/FT2232H adapter or a Linux spidev port.
// The eepromtest package provides a software model of the part for tests.
//
// # References:
//
// EEPROM
//   - [25AA1024]: 25AA1024 1 Mbit SPI Bus Serial EEPROM data sheet, DS20001836 (https://ww1.microchip.com/downloads/en/DeviceDoc/20001836J.pdf)
//
// FTDI (https://ftdichip.com/document/application-notes/)
//   - [FTDI-AN_108]: Command Processor for MPSSE and MCU Host Bus Emulation Modes (https://ftdichip.com/wp-content/uploads/2020/08/AN_108_Command_Processor_for_MPSSE_and_MCU_Host_Bus_Emulation_Modes.pdf)
//   - [FTDI-AN_114]: Interfacing FT2232H Hi-Speed Devices To SPI Bus (https://ftdichip.com/wp-content/uploads/2020/08/AN_114_FTDI_Hi_Speed_USB_To_SPI_Example.pdf)
//   - [FTDI-AN_135]: FTDI MPSSE Basics (https://ftdichip.com/wp-content/uploads/2020/08/AN_135_MPSSE_Basics.pdf)
package eeprom25
