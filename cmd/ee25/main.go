// Command ee25 reads, writes and erases a 25AA1024 SPI EEPROM through an
// FTDI adapter, a Linux spidev port, or a simulated part.
package main

func main() {
	Execute()
}
