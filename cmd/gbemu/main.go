package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/pprof"
	"syscall"

	"github.com/pczora/gobo/gb"
)

func init() {
	runtime.LockOSThread()
}

func loadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", path, err)
	}
	return data, nil
}

func run(romPath, bootPath string, zoom int, trace bool, cpuprof, memprof string) error {
	if romPath == "" {
		return fmt.Errorf("usage: gbemu [flags] rom.gb")
	}

	romData, err := loadFile(romPath)
	if err != nil {
		return err
	}

	cart, err := gb.LoadCartridge(romData)
	if err != nil {
		return err
	}

	var bootROM []byte
	if bootPath != "" {
		bootROM, err = loadFile(bootPath)
		if err != nil {
			return err
		}
	}

	joypad := gb.NewJoypad()
	bus := gb.NewBus(cart, joypad, bootROM)
	cpu := gb.NewCPU(bootROM != nil)
	ppu := gb.NewPPU()

	if trace {
		cpu.EnableTrace(os.Stderr)
	}

	if cpuprof != "" {
		f, err := os.Create(cpuprof)
		if err != nil {
			return fmt.Errorf("could not create CPU profile: %w", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("could not start CPU profile: %w", err)
		}
		defer pprof.StopCPUProfile()
	}

	title := cart.Title
	if title == "" {
		title = "gbemu"
	}
	fmt.Fprintf(os.Stderr, "gbemu: loaded %q (header checksum 0x%02X)\n", cart.Title, cart.Checksum)

	win, err := newWindow(title, zoom)
	if err != nil {
		return fmt.Errorf("unable to create window: %w", err)
	}
	defer win.destroy()

	sigchan := make(chan os.Signal, 1)
	signal.Notify(sigchan, os.Interrupt, syscall.SIGTERM)

	quit := false
	go func() {
		<-sigchan
		quit = true
	}()

	meter := newFPSMeter(30)

	for !quit {
		if win.quitRequested() {
			break
		}

		win.pollInput(joypad)

		for {
			cycles, err := cpu.Step(bus)
			if err != nil {
				return err
			}

			if ppu.Tick(int(cycles), bus) {
				break
			}
		}

		meter.tick()
		if err := win.present(ppu.Framebuffer()); err != nil {
			return err
		}
		win.setTitle(fmt.Sprintf("%s - %d fps", title, meter.fps()))
	}

	if memprof != "" {
		f, err := os.Create(memprof)
		if err != nil {
			return fmt.Errorf("could not create memory profile: %w", err)
		}
		defer f.Close()
		runtime.GC()
		if err := pprof.WriteHeapProfile(f); err != nil {
			return fmt.Errorf("could not write memory profile: %w", err)
		}
	}

	return nil
}

func main() {
	bootPath := flag.String("boot", "", "path to a 256-byte boot ROM image (optional)")
	zoom := flag.Int("zoom", 4, "integer window scale factor")
	trace := flag.Bool("trace", false, "print a per-instruction execution trace to stderr")
	cpuprofile := flag.String("cpuprofile", "", "write cpu profile to file")
	memprofile := flag.String("memprofile", "", "write memory profile to file")

	flag.Parse()

	if err := run(flag.Arg(0), *bootPath, *zoom, *trace, *cpuprofile, *memprofile); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}
