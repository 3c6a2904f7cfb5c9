package export

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/shiva16/molecular-design-toolkit/internal/engine"
	"github.com/shiva16/molecular-design-toolkit/internal/mol"
	"github.com/shiva16/molecular-design-toolkit/internal/trajectory"
)

func TestFrameSVG(t *testing.T) {
	m, err := mol.BeadChain(3, 0.15)
	if err != nil {
		t.Fatal(err)
	}
	traj := trajectory.New(m)
	f := traj.Append("")

	var buf bytes.Buffer
	if err := FrameSVG(&buf, m, f, 200); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "<?xml") || !strings.HasSuffix(out, "</svg>\n") {
		t.Error("expected a complete svg document")
	}
	if n := strings.Count(out, "<circle"); n != 3 {
		t.Errorf("expected 3 atoms, got %d", n)
	}
	if n := strings.Count(out, "<line"); n != 2 {
		t.Errorf("expected 2 bonds, got %d", n)
	}
	if !strings.Contains(out, `fill="#909090"`) {
		t.Error("carbon should use its element color")
	}
	if !strings.Contains(out, "chain-3") {
		t.Error("missing caption")
	}
}

func TestFrameSVGRejectsMismatchedFrame(t *testing.T) {
	m, err := mol.BeadChain(3, 0.15)
	if err != nil {
		t.Fatal(err)
	}
	f := trajectory.Frame{Positions: []engine.Vec3{{0, 0, 0}}}
	if err := FrameSVG(&bytes.Buffer{}, m, f, 100); !errors.Is(err, ErrEmpty) {
		t.Errorf("expected ErrEmpty, got %v", err)
	}
}

func TestTraceSVG(t *testing.T) {
	m, err := mol.ArgonCluster(2, 0.38)
	if err != nil {
		t.Fatal(err)
	}
	traj := trajectory.New(m)
	if err := TraceSVG(&bytes.Buffer{}, traj, 100); !errors.Is(err, ErrEmpty) {
		t.Errorf("expected ErrEmpty for an empty trajectory, got %v", err)
	}

	for i := 0; i < 4; i++ {
		m.Positions[0][0] += 0.01
		traj.Append("")
	}
	var buf bytes.Buffer
	if err := TraceSVG(&buf, traj, 100); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if n := strings.Count(out, "<path"); n != 2 {
		t.Errorf("expected one path per atom, got %d", n)
	}
	if n := strings.Count(out, " L"); n != 6 {
		t.Errorf("expected 3 segments per atom, got %d", n)
	}
}
