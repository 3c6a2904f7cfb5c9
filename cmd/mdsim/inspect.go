package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/shiva16/molecular-design-toolkit/internal/analysis"
	"github.com/shiva16/molecular-design-toolkit/internal/export"
	"github.com/shiva16/molecular-design-toolkit/internal/storage"
	"github.com/shiva16/molecular-design-toolkit/internal/units"
)

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMOLECULE\tTIME\tDURATION\tDT\tINTEG\tEXEC\tFRAMES")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%d\n",
			run.ID,
			run.Molecule,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			units.Time(run.Duration),
			units.Time(run.Timestep),
			run.Integrator,
			run.Executor,
			run.Frames,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	e, err := st.LoadEnergies(runID)
	if err != nil {
		return err
	}
	if len(e.Times) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("molecule: %s (%d atoms)\n", meta.Molecule, meta.NumAtoms)
	fmt.Printf("frames: %d over %s\n\n", len(e.Times), units.Time(e.Times[len(e.Times)-1]))

	series := []struct {
		caption string
		data    []float64
	}{
		{"potential energy (kJ/mol)", e.Potential},
		{"total energy (kJ/mol)", e.Total},
		{"temperature (K)", e.Temperature},
	}
	for _, s := range series {
		if len(s.data) < 2 {
			continue
		}
		graph := asciigraph.Plot(s.data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(s.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

// output returns stdout or the file named by --out.
func output() (io.WriteCloser, error) {
	if outFile == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(outFile)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func exportXYZ(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	traj, err := st.LoadTrajectory(args[0])
	if err != nil {
		return err
	}
	w, err := output()
	if err != nil {
		return err
	}
	if err := traj.WriteXYZ(w); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func exportJSON(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	traj, err := st.LoadTrajectory(runID)
	if err != nil {
		return err
	}
	w, err := output()
	if err != nil {
		return err
	}
	if err := storage.ExportJSON(w, *meta, traj); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	traj, err := st.LoadTrajectory(args[0])
	if err != nil {
		return err
	}
	spec, err := analysis.VibrationalSpectrum(traj)
	if err != nil {
		return err
	}

	var data []float64
	for i, k := range spec.Wavenumbers {
		if k > maxWavenum {
			break
		}
		data = append(data, spec.Intensity[i])
	}
	if len(data) < 2 {
		return fmt.Errorf("frame interval too coarse for wavenumbers below %g cm^-1", maxWavenum)
	}

	fmt.Printf("run: %s\n", args[0])
	fmt.Printf("resolution: %.1f cm^-1, peak: %.1f cm^-1\n\n", spec.Wavenumbers[1], spec.Peak())
	fmt.Println(asciigraph.Plot(data,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("VACF power spectrum, 0-%.0f cm^-1", spec.Wavenumbers[len(data)-1])),
	))
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	traj, err := st.LoadTrajectory(args[0])
	if err != nil {
		return err
	}
	w, err := output()
	if err != nil {
		return err
	}

	if svgTrace {
		err = export.TraceSVG(w, traj, svgSize)
	} else {
		idx := svgFrame
		if idx < 0 {
			idx += traj.Len()
		}
		if idx < 0 || idx >= traj.Len() {
			w.Close()
			return fmt.Errorf("frame %d out of range (%d frames)", svgFrame, traj.Len())
		}
		err = export.FrameSVG(w, traj.Mol, traj.Frames[idx], svgSize)
	}
	if err != nil {
		w.Close()
		return err
	}
	return w.Close()
}
