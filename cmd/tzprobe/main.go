// Command tzprobe parses a POSIX timezone descriptor and prints its rules
// and the daylight saving transitions for a given year.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/dotmatrix/clockd/localtime"
	"github.com/dotmatrix/clockd/tzrule"
)

var yearFlag = flag.Int("year", 2026, "year to compute transitions for")

func main() {
	flag.Parse()
	args := flag.Args()
	if len(args) != 1 {
		fmt.Println("Usage: tzprobe [-year YYYY] <descriptor>")
		fmt.Println(`Example: tzprobe "CET-1CEST,M3.5.0/2,M10.5.0/3"`)
		os.Exit(1)
	}

	zone, err := tzrule.Parse(args[0])
	if err != nil {
		fmt.Println("parsing descriptor:", err)
		os.Exit(1)
	}

	fmt.Println("std  =", zone.StdName, "offset", -zone.StdOffset(), "s east of UTC")
	if !zone.HasDST() {
		fmt.Println("no daylight saving time")
		return
	}
	fmt.Println("dst  =", zone.DstName, "offset", -zone.DstOffset(), "s east of UTC")

	toDST, toStd, err := zone.Transitions(*yearFlag)
	if err != nil {
		fmt.Println("computing transitions:", err)
		os.Exit(1)
	}
	hemisphere := "southern"
	if zone.Northern() {
		hemisphere = "northern"
	}
	fmt.Println("hemisphere =", hemisphere)
	fmt.Printf("to %s: %d = %s\n", zone.DstName, toDST, localtime.FromUnix(&zone, toDST))
	fmt.Printf("to %s: %d = %s\n", zone.StdName, toStd, localtime.FromUnix(&zone, toStd))
}
