package main

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/linuxmatters/agckit/internal/cli"
	"github.com/linuxmatters/agckit/internal/mains"
	"github.com/linuxmatters/agckit/vmath"
	"golang.org/x/sys/cpu"
)

// infoCmd reports what the kernels will run on.
type infoCmd struct{}

func (c *infoCmd) Run() error {
	writeInfo(os.Stdout, mains.Detect())
	return nil
}

func writeInfo(w io.Writer, supply mains.Info) {
	const width = 14

	cli.PrintTitle(w, "Agckit "+version)
	cli.PrintKeyValue(w, width, "Platform", runtime.GOOS+"/"+runtime.GOARCH)
	cli.PrintKeyValue(w, width, "Vector math", vmath.CurrentName())
	if vmath.NoVecEnv() {
		cli.PrintKeyValue(w, width, "Override", "AGCKIT_NO_VEC set, scalar forced")
	}
	cli.PrintKeyValue(w, width, "Alignment", fmt.Sprintf("%d bytes", vmath.Alignment()))
	cli.PrintKeyValue(w, width, "CPU features", strings.Join(cpuFeatures(), " "))

	country := supply.Country
	if country == "" {
		country = "unknown"
	}
	timezone := supply.Timezone
	if timezone == "" {
		timezone = "unknown"
	}
	cli.PrintKeyValue(w, width, "Timezone", timezone)
	cli.PrintKeyValue(w, width, "Mains", fmt.Sprintf("%d Hz (%s)", supply.Hz, country))
}

// cpuFeatures lists the SIMD features relevant to dispatch.
func cpuFeatures() []string {
	var features []string
	add := func(name string, has bool) {
		if has {
			features = append(features, name)
		}
	}

	switch runtime.GOARCH {
	case "amd64", "386":
		add("sse2", cpu.X86.HasSSE2)
		add("sse4.1", cpu.X86.HasSSE41)
		add("avx", cpu.X86.HasAVX)
		add("avx2", cpu.X86.HasAVX2)
		add("fma", cpu.X86.HasFMA)
		add("avx512f", cpu.X86.HasAVX512F)
	case "arm64":
		add("asimd", cpu.ARM64.HasASIMD)
		add("fphp", cpu.ARM64.HasFPHP)
		add("sve", cpu.ARM64.HasSVE)
	}

	if len(features) == 0 {
		return []string{"none"}
	}
	return features
}
