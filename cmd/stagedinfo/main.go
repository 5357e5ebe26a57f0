// Command stagedinfo probes the GPU through the wgpu device layer and
// prints the adapter a staged driver would execute on. Useful for
// verifying that a machine can run the staged rendering core before
// starting an application on it.
package main

import (
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/gogpu/staged"
	"github.com/gogpu/staged/driver/wgpu"
)

func main() {
	var (
		label   = flag.String("label", "stagedinfo", "device debug label")
		verbose = flag.Bool("v", false, "enable debug logging")
	)
	flag.Parse()

	if *verbose {
		staged.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	dev := wgpu.NewDevice()
	if err := dev.Init(*label); err != nil {
		log.Fatalf("GPU initialization failed: %v", err)
	}
	defer dev.Close()

	if info := dev.Info(); info != nil {
		log.Printf("adapter: %s", info)
		log.Printf("vendor:  %s", info.Vendor)
		if info.Driver != "" {
			log.Printf("driver:  %s", info.Driver)
		}
	}
	log.Printf("backend: %s", dev.Backend())

	if err := dev.CheckLimits(); err != nil {
		log.Fatalf("device limits insufficient: %v", err)
	}
	log.Print("device limits OK")
}
