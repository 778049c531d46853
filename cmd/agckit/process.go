package main

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/linuxmatters/agckit/internal/cli"
	"github.com/linuxmatters/agckit/internal/logging"
	"github.com/linuxmatters/agckit/internal/processor"
	"github.com/linuxmatters/agckit/internal/sampleio"
	"github.com/linuxmatters/agckit/internal/ui"
)

// processCmd runs a kernel over each file. Levels and gains are given in dB
// on the command line and converted to linear for processor.Config.
type processCmd struct {
	Files []string `arg:"" name:"files" help:"Sample files to process (.wav, .f32, .cf32)" type:"existingfile"`

	Logs         bool `help:"Save a detailed processing report next to each output"`
	AnalysisOnly bool `name:"analysis-only" help:"Measure the input and show the kernel settings without processing"`

	Kernel        string  `enum:"passthrough,single,dual,calibrated" default:"dual" help:"Gain kernel (passthrough, single, dual, calibrated)"`
	ReferenceDB   float64 `name:"reference-db" default:"-20" help:"Target output magnitude in dBFS"`
	Rate          float32 `default:"0.0001" help:"Adaptation rate of the single-rate kernel"`
	Attack        float32 `default:"0.1" help:"Attack rate of the dual-rate and calibrated kernels"`
	Decay         float32 `default:"0.0001" help:"Decay rate of the dual-rate and calibrated kernels"`
	InitialGainDB float64 `name:"initial-gain-db" default:"0" help:"Starting gain in dB"`
	MaxGainDB     float64 `name:"max-gain-db" default:"40" help:"Gain ceiling in dB"`
	NoMaxGain     bool    `name:"no-max-gain" help:"Disable the single-rate gain ceiling"`
	Warmup        int     `default:"4800" help:"Calibration length in samples"`
	Decimation    int     `default:"16" help:"Samples per gain update of the calibrated kernel"`
	Adaptive      bool    `help:"Derive the gain ceiling and warmup from the input measurements"`

	BlockSize int    `name:"block-size" default:"4096" help:"Largest block handed to the kernel"`
	Jitter    bool   `help:"Vary block sizes pseudo-randomly to exercise call partitioning"`
	Seed      uint64 `default:"1" help:"Seed for block size jitter"`
	Scalar    bool   `help:"Force the scalar vector math path"`
}

// config builds the processor configuration from the flags.
func (c *processCmd) config() *processor.Config {
	config := processor.DefaultConfig()
	config.Kernel = processor.KernelType(c.Kernel)
	config.Reference = float32(processor.DbToLinear(c.ReferenceDB))
	config.Rate = c.Rate
	config.Attack = c.Attack
	config.Decay = c.Decay
	config.InitialGain = float32(processor.DbToLinear(c.InitialGainDB))
	config.MaxGain = float32(processor.DbToLinear(c.MaxGainDB))
	if c.NoMaxGain {
		config.MaxGain = 0
	}
	config.WarmupSamples = c.Warmup
	config.Decimation = c.Decimation
	config.Adaptive = c.Adaptive
	config.BlockSize = c.BlockSize
	config.BlockJitter = c.Jitter
	config.Seed = c.Seed
	config.ForceScalar = c.Scalar
	return config
}

func (c *processCmd) Run() error {
	if len(c.Files) == 0 {
		return fmt.Errorf("no input files specified")
	}

	config := c.config()
	if err := config.Validate(); err != nil {
		return err
	}

	log, closeLog := newDebugLog()
	defer closeLog()

	if c.AnalysisOnly {
		return c.runAnalysis(config, log)
	}

	model := ui.NewModel(c.Files, c.ReferenceDB)
	p := tea.NewProgram(model, tea.WithAltScreen())

	go func() {
		for i, inputPath := range c.Files {
			fileStartTime := time.Now()

			log("[MAIN] Sending FileStartMsg for file %d: %s", i, inputPath)
			p.Send(ui.FileStartMsg{
				FileIndex: i,
				FileName:  inputPath,
			})

			ph := &progressHandler{p: p, log: log}

			// Each file adapts its own copy.
			fileConfig := *config
			log("[MAIN] Starting ProcessFile for %s", inputPath)
			result, err := processor.ProcessFile(inputPath, &fileConfig, ph.callback)
			if err != nil {
				log("[MAIN] ProcessFile failed: %v", err)
				p.Send(ui.FileCompleteMsg{
					FileIndex: i,
					Error:     err,
				})
				continue
			}

			tips := logging.GenerateTips(result)
			if c.Logs {
				reportData := logging.ReportData{
					InputPath:  inputPath,
					OutputPath: result.OutputPath,
					StartTime:  fileStartTime,
					EndTime:    time.Now(),
					Result:     result,
				}
				if err := logging.GenerateReport(reportData); err != nil {
					log("[MAIN] Failed to generate log file: %v", err)
				}
			}

			log("[MAIN] Sending FileCompleteMsg for file %d", i)
			p.Send(ui.FileCompleteMsg{
				FileIndex:   i,
				Kernel:      string(fileConfig.Kernel),
				InputRMS:    result.Input.RMSLevel,
				OutputRMS:   result.Output.RMSLevel,
				FinalGainDB: processor.LinearToDb(float64(result.FinalGain())),
				Tips:        len(tips),
				OutputPath:  result.OutputPath,
			})
		}

		log("[MAIN] Sending AllCompleteMsg")
		p.Send(ui.AllCompleteMsg{})
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("UI error: %w", err)
	}
	return nil
}

// runAnalysis measures every file under a spinner, then prints the results
// and the kernel settings that processing would use.
func (c *processCmd) runAnalysis(config *processor.Config, log func(string, ...interface{})) error {
	p := tea.NewProgram(ui.NewAnalysisModel(c.Files))

	metadata := make([]*sampleio.Metadata, len(c.Files))
	go func() {
		defer p.Send(ui.AnalysisDoneMsg{})
		for i, inputPath := range c.Files {
			p.Send(ui.AnalysisStartMsg{Index: i, FilePath: inputPath})

			reader, meta, err := sampleio.Open(inputPath)
			if err != nil {
				p.Send(ui.AnalysisCompleteMsg{Index: i, Error: err})
				continue
			}
			reader.Close()
			metadata[i] = meta

			measurements, err := processor.AnalyzeFile(inputPath, func(pass int, passName string, progress, level float64, _ *processor.Measurements) {
				log("[MAIN] Analysis %d progress %.1f%%, level %.1f dB", i, progress*100, level)
				p.Send(ui.AnalysisProgressMsg{Index: i, Progress: progress, Level: level})
			})

			var fileConfig *processor.Config
			if err == nil {
				adapted := *config
				processor.AdaptConfig(&adapted, measurements)
				fileConfig = &adapted
			}
			p.Send(ui.AnalysisCompleteMsg{Index: i, Measurements: measurements, Config: fileConfig, Error: err})
		}
	}()

	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("UI error: %w", err)
	}

	for i, r := range final.(ui.AnalysisModel).Results {
		if !r.Finished() {
			// Quit before analysis finished.
			return nil
		}
		if r.Error != nil {
			cli.PrintError(fmt.Sprintf("%s: %v", r.FilePath, r.Error))
			continue
		}
		logging.DisplayAnalysisResults(os.Stdout, r.FilePath, metadata[i], r.Measurements, r.Config)
		fmt.Println()
	}
	return nil
}

// progressHandler forwards progress updates from the processor to the UI
type progressHandler struct {
	p   *tea.Program
	log func(string, ...interface{})
}

func (ph *progressHandler) callback(pass int, passName string, progress float64, level float64, measurements *processor.Measurements) {
	ph.log("[MAIN] Sending ProgressMsg: Pass %d (%s), Progress %.1f%%, Level %.1f dB", pass, passName, progress*100, level)

	ph.p.Send(ui.ProgressMsg{
		Pass:         pass,
		PassName:     passName,
		Progress:     progress,
		Level:        level,
		Measurements: measurements,
	})
}
