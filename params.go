package eeprom25

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/physic"
)

// Timing holds the worst-case durations of the self-timed operations. A zero
// duration disables the deadline for that operation and waitReady then polls
// until WIP clears.
type Timing struct {
	// tWC: Internal write cycle time (also WRSR)
	WriteCycle time.Duration
	// tPE: Page erase cycle time
	PageErase time.Duration
	// tSE: Sector erase cycle time
	SectorErase time.Duration
	// tCE: Chip erase cycle time
	ChipErase time.Duration
	// tREL: CS high to standby mode after RDID
	Release time.Duration
}

// [25AA1024|Table 1-3: AC Characteristics]
var DefaultTiming = Timing{
	WriteCycle:  6 * time.Millisecond,
	PageErase:   6 * time.Millisecond,
	SectorErase: 10 * time.Millisecond,
	ChipErase:   10 * time.Millisecond,
	Release:     100 * time.Microsecond,
}

// TimeoutFactor scales the datasheet maximums into polling deadlines.
const TimeoutFactor = 20

// DefaultPollInterval is the delay between two RDSR polls.
const DefaultPollInterval = 10 * time.Millisecond

func deadline(d time.Duration) time.Duration {
	return d * TimeoutFactor
}

type clockTier struct {
	min, max physic.ElectricPotential
	clock    physic.Frequency
}

// [25AA1024|Table 1-3: FCLK Clock Frequency]
var clockTiers = []clockTier{
	{4500 * physic.MilliVolt, 5500 * physic.MilliVolt, 20 * physic.MegaHertz},
	{2500 * physic.MilliVolt, 4500 * physic.MilliVolt, 10 * physic.MegaHertz},
	{1800 * physic.MilliVolt, 2500 * physic.MilliVolt, 2 * physic.MegaHertz},
}

// MaxClock returns the highest SPI clock rated for the supply voltage vcc,
// or 0 if vcc is outside the operating range.
func MaxClock(vcc physic.ElectricPotential) physic.Frequency {
	for _, t := range clockTiers {
		if vcc >= t.min && vcc <= t.max {
			return t.clock
		}
	}
	return 0
}

// checkClock validates clock against the rating for vcc. A zero clock selects
// the maximum.
func checkClock(clock physic.Frequency, vcc physic.ElectricPotential) (physic.Frequency, error) {
	maxClock := MaxClock(vcc)
	if maxClock == 0 {
		return 0, fmt.Errorf("supply voltage %s out of operating range", vcc)
	}
	if clock == 0 {
		return maxClock, nil
	}
	if clock > maxClock {
		return 0, fmt.Errorf("clock %s exceeds %s rating at %s", clock, maxClock, vcc)
	}
	return clock, nil
}
