// Command rxjitgen synthesizes Programs from a seed via a Blake2b
// entropy stream and compiles them concurrently, exercising the
// compiler end-to-end without requiring a real Cache/Dataset.
package main

import (
	"encoding/binary"
	"encoding/hex"
	"flag"
	"log"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"

	"github.com/cryptonote-social/RandomX/pkg/jit"
	"github.com/cryptonote-social/RandomX/pkg/rxtypes"
)

func main() {
	seedHex := flag.String("seed", "", "Hex-encoded seed (random if empty)")
	workers := flag.Int("workers", 4, "Number of concurrent compiler workers")
	count := flag.Int("count", 8, "Number of synthetic programs to compile")
	light := flag.Bool("light", false, "Compile in light mode")
	datasetOffset := flag.Uint("dataset-offset", 0, "Dataset byte offset for light mode")
	flag.Parse()

	var seed []byte
	if *seedHex != "" {
		var err error
		seed, err = hex.DecodeString(*seedHex)
		if err != nil {
			log.Fatalf("Failed to decode seed: %v", err)
		}
	} else {
		seed = []byte(uuid.New().String())
	}

	jobs := make(chan int, *count)
	for i := 0; i < *count; i++ {
		jobs <- i
	}
	close(jobs)

	var wg sync.WaitGroup
	for w := 0; w < *workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for idx := range jobs {
				runOne(seed, idx, worker, *light, uint32(*datasetOffset))
			}
		}(w)
	}
	wg.Wait()
}

func runOne(seed []byte, idx, worker int, light bool, datasetOffset uint32) {
	tag := uuid.New().String()
	prog, cfg := synthesizeProgram(seed, idx)
	cfg.DatasetOffset = datasetOffset

	c, err := jit.NewCompiler()
	if err != nil {
		log.Printf("[worker %d job %d %s] compiler allocation failed: %v", worker, idx, tag, err)
		return
	}
	defer c.Free()

	if light {
		err = c.GenerateProgramLight(prog, cfg)
	} else {
		err = c.GenerateProgram(prog, cfg)
	}
	if err != nil {
		log.Printf("[worker %d job %d %s] compilation failed: %v", worker, idx, tag, err)
		return
	}

	code := c.CodeBuffer().MainRegion()
	log.Printf("[worker %d job %d %s] compiled into a %d-byte main region", worker, idx, tag, len(code))
}

// synthesizeProgram expands seed||index through repeated Blake2b-256
// hashing into a byte stream long enough to fill a Program plus a
// ProgramConfiguration, in the same field order rxtypes.Instruction and
// rxtypes.ProgramConfiguration declare their fields.
func synthesizeProgram(seed []byte, index int) (*rxtypes.Program, *rxtypes.ProgramConfiguration) {
	weights := rxtypes.BuildDispatchTable()
	const bytesPerInstr = 8 // opcode byte, dst, src, mod, 4-byte imm
	need := rxtypes.ProgramSize*bytesPerInstr + 4*4 + 16
	stream := expandEntropy(seed, index, need)

	var prog rxtypes.Program
	pos := 0
	for i := range prog {
		opByte := stream[pos]
		dst := stream[pos+1]
		src := stream[pos+2]
		mod := stream[pos+3]
		imm := int32(binary.LittleEndian.Uint32(stream[pos+4:]))
		pos += bytesPerInstr
		prog[i] = rxtypes.Instruction{
			Op:    weights[opByte],
			Dst:   dst,
			Src:   src,
			Mod:   mod,
			Imm32: imm,
		}
	}

	cfg := &rxtypes.ProgramConfiguration{}
	for i := range cfg.ReadReg {
		cfg.ReadReg[i] = int(stream[pos]) % 8
		pos++
	}
	copy(cfg.EMask[:], stream[pos:pos+16])
	pos += 16

	return &prog, cfg
}

// expandEntropy fills n bytes by hashing seed || index || counter with
// Blake2b-256 in successive counter blocks, a simple fixed-output
// expansion since golang.org/x/crypto/blake2b does not expose an XOF.
func expandEntropy(seed []byte, index, n int) []byte {
	out := make([]byte, 0, n+blake2b.Size256)
	var counter uint64
	for len(out) < n {
		h, _ := blake2b.New256(nil)
		h.Write(seed)
		var idxBuf [8]byte
		binary.LittleEndian.PutUint64(idxBuf[:], uint64(index))
		h.Write(idxBuf[:])
		var ctrBuf [8]byte
		binary.LittleEndian.PutUint64(ctrBuf[:], counter)
		h.Write(ctrBuf[:])
		out = append(out, h.Sum(nil)...)
		counter++
	}
	return out[:n]
}
