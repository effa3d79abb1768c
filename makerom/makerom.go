// makerom takes a raw 6502 program blob and produces a 64k flat image
// for running under the emulator. The program bytes are copied at the
// given offset and the reset vector is pointed at the offset unless the
// program itself already covers the vector area.
//
// The output is headerless: exactly the byte layout the emulator loads
// at address 0.
package main

import (
	"flag"
	"log"
	"os"
)

var (
	offset = flag.Int("offset", 0x8000, "Address the program is copied to (and the reset vector target)")
)

func main() {
	flag.Parse()
	if len(flag.Args()) != 2 {
		log.Fatalf("Invalid command: %s --offset=XXXX <input> <output>", os.Args[0])
	}
	if *offset < 0 || *offset > 0xFFFF {
		log.Fatal("--offset out of range. Must be between 0-65535")
	}

	fn := flag.Args()[0]
	b, err := os.ReadFile(fn)
	if err != nil {
		log.Fatalf("Can't open %s - %v", fn, err)
	}

	// We know this is a 64k image so allocate and zero it.
	out := make([]byte, 65536)

	if max := 65536 - *offset; len(b) > max {
		log.Printf("Length %d at offset 0x%.4X too long, truncating to 64k", len(b), *offset)
		b = b[:max]
	}
	copy(out[*offset:], b)

	// Point the reset vector at the program unless its bytes already
	// reach the vector area.
	if *offset+len(b) <= 0xFFFC {
		out[0xFFFC] = byte(*offset & 0xFF)
		out[0xFFFD] = byte((*offset >> 8) & 0xFF)
	}

	if err := os.WriteFile(flag.Args()[1], out, 0644); err != nil {
		log.Fatalf("Can't write %s - %v", flag.Args()[1], err)
	}
}
