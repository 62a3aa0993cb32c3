// Command rxjit drives the compiler over a single Program fixture: load,
// compile, report code size and entry points, and optionally check the
// result against (or save it into) a golden-vector store.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"github.com/cryptonote-social/RandomX/pkg/goldenstore"
	"github.com/cryptonote-social/RandomX/pkg/jit"
	"github.com/cryptonote-social/RandomX/pkg/rxtypes"
)

// fixture is the on-disk JSON shape for a compiler run: a Program plus
// the ProgramConfiguration to compile it with.
type fixture struct {
	Program rxtypes.Program              `json:"program"`
	Config  rxtypes.ProgramConfiguration `json:"config"`
	Light   bool                         `json:"light"`
}

func main() {
	fixturePath := flag.String("fixture", "", "Path to a JSON program fixture")
	goldenPath := flag.String("golden-store", "", "Path to a golden-vector store directory")
	save := flag.Bool("save", false, "Save this run's output into the golden store")
	verify := flag.Bool("verify", false, "Verify this run's output against the golden store")
	flag.Parse()

	if *fixturePath == "" {
		log.Fatal("Error: --fixture flag is required")
	}

	data, err := os.ReadFile(*fixturePath)
	if err != nil {
		log.Fatalf("Failed to read fixture: %v", err)
	}
	var fx fixture
	if err := json.Unmarshal(data, &fx); err != nil {
		log.Fatalf("Failed to parse fixture: %v", err)
	}

	c, err := jit.NewCompiler()
	if err != nil {
		log.Fatalf("Failed to allocate compiler: %v", err)
	}
	defer c.Free()

	start := time.Now()
	if fx.Light {
		err = c.GenerateProgramLight(&fx.Program, &fx.Config)
	} else {
		err = c.GenerateProgram(&fx.Program, &fx.Config)
	}
	if err != nil {
		log.Fatalf("Compilation failed: %v", err)
	}
	elapsed := time.Since(start)

	buf := c.CodeBuffer()
	code := buf.MainRegion()
	offsets := c.InstructionOffsets()

	log.Printf("compiled into a %d-byte main region in %s, entry=0x%x, light=%v", len(code), elapsed, buf.ProgramEntry(), fx.Light)

	if *goldenPath == "" {
		return
	}
	store, err := goldenstore.Open(*goldenPath)
	if err != nil {
		log.Fatalf("Failed to open golden store: %v", err)
	}
	defer store.Close()

	switch {
	case *save:
		v := &goldenstore.Vector{
			Program:            fx.Program,
			Config:             fx.Config,
			Light:              fx.Light,
			Code:               append([]byte(nil), code...),
			InstructionOffsets: offsets,
		}
		if err := store.Save(v); err != nil {
			log.Fatalf("Failed to save golden vector: %v", err)
		}
		log.Printf("saved golden vector")
	case *verify:
		ok, err := store.Verify(&fx.Program, &fx.Config, fx.Light, code, offsets)
		if err != nil {
			log.Fatalf("Failed to verify golden vector: %v", err)
		}
		if !ok {
			log.Fatal("golden vector mismatch")
		}
		log.Printf("golden vector matches")
	}
}
