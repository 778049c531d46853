package logging

import (
	"fmt"
	"sort"
	"strings"

	"github.com/linuxmatters/agckit/internal/processor"
)

// Tip is one piece of actionable tuning advice derived from a run.
type Tip struct {
	Priority int    // higher is more important (1-10)
	Message  string // one or two sentences
	RuleID   string // e.g. "gain_pinned"
}

// MaxTips caps how many tips a report shows.
const MaxTips = 5

// ceilingShare is the fraction of blocks at max gain that counts as pinned.
const ceilingShare = 0.5

// GenerateTips inspects a processing result and returns prioritised
// suggestions for the kernel configuration.
func GenerateTips(r *processor.Result) []Tip {
	if r == nil || r.Input == nil || r.Config == nil {
		return nil
	}

	rules := []func(*processor.Result, gainStats) *Tip{
		tipInputSilent,
		tipOutputClipping,
		tipNegativeGain,
		tipGainCollapsed,
		tipGainPinned,
		tipWarmupUnfinished,
		tipOffReference,
		tipNoiseLifted,
	}

	stats := newGainStats(r)
	var tips []Tip
	fired := make(map[string]bool)
	for _, rule := range rules {
		if tip := rule(r, stats); tip != nil {
			tips = append(tips, *tip)
			fired[tip.RuleID] = true
		}
	}

	tips = applyExclusions(tips, fired)
	sort.SliceStable(tips, func(i, j int) bool {
		return tips[i].Priority > tips[j].Priority
	})
	if len(tips) > MaxTips {
		tips = tips[:MaxTips]
	}
	return tips
}

// applyExclusions drops tips made redundant by a more specific one.
func applyExclusions(tips []Tip, fired map[string]bool) []Tip {
	var out []Tip
	for _, tip := range tips {
		switch tip.RuleID {
		case "off_reference":
			if fired["input_silent"] || fired["gain_pinned"] || fired["gain_collapsed"] || fired["warmup_unfinished"] {
				continue
			}
		case "noise_lifted", "gain_pinned":
			if fired["input_silent"] {
				continue
			}
		}
		out = append(out, tip)
	}
	return out
}

// gainStats summarises a gain trace.
type gainStats struct {
	min, max   float32
	atCeiling  float64 // share of blocks at MaxGain
	negative   bool
	hasSamples bool
}

func newGainStats(r *processor.Result) gainStats {
	var s gainStats
	if len(r.GainTrace) == 0 {
		return s
	}
	s.hasSamples = true
	s.min, s.max = r.GainTrace[0].Gain, r.GainTrace[0].Gain
	pinned := 0
	for _, p := range r.GainTrace {
		s.min = min(s.min, p.Gain)
		s.max = max(s.max, p.Gain)
		if p.Gain < 0 {
			s.negative = true
		}
		if r.Config.MaxGain > 0 && p.Gain >= r.Config.MaxGain {
			pinned++
		}
	}
	s.atCeiling = float64(pinned) / float64(len(r.GainTrace))
	return s
}

// wrapText wraps text at word boundaries to fit within maxWidth columns.
// Continuation lines are prefixed with indent.
func wrapText(text string, maxWidth int, indent string) string {
	var lines []string
	line := ""
	for _, word := range strings.Fields(text) {
		switch {
		case line == "":
			line = word
		case len(line)+1+len(word) <= maxWidth:
			line += " " + word
		default:
			lines = append(lines, line)
			line = word
		}
	}
	if line != "" {
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n"+indent)
}

func tipInputSilent(r *processor.Result, _ gainStats) *Tip {
	if !isDigitalSilence(r.Input.RMSLevel) {
		return nil
	}
	return &Tip{
		Priority: 10,
		RuleID:   "input_silent",
		Message:  "The input is digital silence. No gain setting can recover a signal that is not there.",
	}
}

func tipOutputClipping(r *processor.Result, _ gainStats) *Tip {
	if r.Output == nil || r.Output.PeakLevel <= -0.1 {
		return nil
	}
	return &Tip{
		Priority: 9,
		RuleID:   "output_clipping",
		Message: fmt.Sprintf("Output peaks reach %.1f dBFS and will clip in fixed-point formats. Lower the reference or the attack rate.",
			r.Output.PeakLevel),
	}
}

func tipNegativeGain(r *processor.Result, s gainStats) *Tip {
	if !s.negative {
		return nil
	}
	return &Tip{
		Priority: 9,
		RuleID:   "negative_gain",
		Message:  fmt.Sprintf("The gain went negative (minimum %.3g), inverting the signal. The single-rate loop has no lower clamp; reduce the rate.", s.min),
	}
}

func tipGainCollapsed(r *processor.Result, s gainStats) *Tip {
	if !s.hasSamples || s.negative || r.FinalGain() != 0 {
		return nil
	}
	return &Tip{
		Priority: 8,
		RuleID:   "gain_collapsed",
		Message:  "The gain finished at zero, muting the output. The attack rate overshoots on loud transients; reduce it.",
	}
}

func tipGainPinned(r *processor.Result, s gainStats) *Tip {
	if !s.hasSamples || s.atCeiling < ceilingShare {
		return nil
	}
	return &Tip{
		Priority: 7,
		RuleID:   "gain_pinned",
		Message: fmt.Sprintf("The gain sat at its %.1f dB ceiling for %.0f%% of blocks, so quiet passages stay under the reference. Raise the max gain if the noise floor allows.",
			processor.LinearToDb(float64(r.Config.MaxGain)), s.atCeiling*100),
	}
}

func tipWarmupUnfinished(r *processor.Result, _ gainStats) *Tip {
	if r.Config.Kernel != processor.KernelCalibrated || r.TransitionSample >= 0 {
		return nil
	}
	return &Tip{
		Priority: 7,
		RuleID:   "warmup_unfinished",
		Message: fmt.Sprintf("The stream ended during the %d-sample calibration, so it passed through unchanged. Shorten the warmup.",
			r.Config.WarmupSamples),
	}
}

func tipOffReference(r *processor.Result, _ gainStats) *Tip {
	if r.Output == nil || r.Config.Kernel == processor.KernelPassthrough || r.Config.Reference <= 0 {
		return nil
	}
	// Reference is a magnitude; compare with the loudest window so gaps and
	// quiet passages do not count against the loop.
	ref := processor.LinearToDb(float64(r.Config.Reference))
	off := r.Output.RMSLoudest - ref
	if off > -6 && off < 6 {
		return nil
	}
	return &Tip{
		Priority: 5,
		RuleID:   "off_reference",
		Message: fmt.Sprintf("The loudest output passage is %+.1f dB from the reference. The loop is too slow for this stream; raise the rates.",
			off),
	}
}

func tipNoiseLifted(r *processor.Result, _ gainStats) *Tip {
	if r.Output == nil || r.Config.Adaptive || isDigitalSilence(r.Input.RMSTrough) {
		return nil
	}
	lift := r.Output.RMSTrough - r.Input.RMSTrough
	if lift < 12 {
		return nil
	}
	return &Tip{
		Priority: 4,
		RuleID:   "noise_lifted",
		Message: fmt.Sprintf("The noise floor was raised by %.1f dB. Enable adaptive mode to cap the gain from the measured floor.",
			lift),
	}
}
