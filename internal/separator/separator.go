// Package separator wraps the external source-separation tool. The tool is
// an opaque collaborator: it takes an input file and an output directory and
// leaves one mp3 per stem at a predictable path.
package separator

import (
	"context"
	"errors"
	"os/exec"
	"path/filepath"

	"github.com/stemsplitter/api/internal/model"
)

var commandContext = exec.CommandContext

// Separator runs the separation step for one staged job.
type Separator interface {
	// Separate processes inputPath and writes stems under outputDir.
	// The returned output is the tool's combined stdout/stderr, kept for
	// postmortem logging; it is populated on failure as well.
	Separate(ctx context.Context, inputPath, outputDir string) (output string, err error)
	// StemPath returns where the tool will have written a given stem.
	StemPath(outputDir, jobID string, stem model.Stem) string
}

// DemucsCLI invokes Demucs as a subprocess:
//
//	python3 -m demucs.separate --mp3 -n <model> -o <outputDir> <input>
type DemucsCLI struct {
	binary string
	model  string
}

func NewDemucsCLI(binary, model string) *DemucsCLI {
	if binary == "" {
		binary = "python3"
	}
	if model == "" {
		model = "htdemucs"
	}
	return &DemucsCLI{binary: binary, model: model}
}

func (d *DemucsCLI) Separate(ctx context.Context, inputPath, outputDir string) (string, error) {
	if inputPath == "" {
		return "", errors.New("input path required")
	}
	if outputDir == "" {
		return "", errors.New("output directory required")
	}
	cmd := commandContext(ctx, d.binary,
		"-m", "demucs.separate",
		"--mp3",
		"-n", d.model,
		"-o", outputDir,
		inputPath,
	)
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// StemPath follows Demucs' output convention {out}/{model}/{track}/{stem}.mp3,
// where track is the input file name without extension. Staged inputs are
// named after the job id, so track == jobID.
func (d *DemucsCLI) StemPath(outputDir, jobID string, stem model.Stem) string {
	return filepath.Join(outputDir, d.model, jobID, string(stem)+".mp3")
}
