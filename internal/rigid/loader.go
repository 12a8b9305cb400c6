package rigid

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Definition is the YAML-serialisable model description.
type Definition struct {
	Name          string              `yaml:"name"`
	Gravity       [3]float64          `yaml:"gravity"`
	Segments      []SegmentDef        `yaml:"segments"`
	Markers       []MarkerDef         `yaml:"markers"`
	RigidContacts []RigidContactDef   `yaml:"rigid_contacts"`
	SoftContacts  []SoftContactDef    `yaml:"soft_contacts"`
	Muscles       []MuscleDef         `yaml:"muscles"`
	TorqueBounds  map[string][2]float64 `yaml:"torque_bounds"` // dof name -> [min max]
}

type SegmentDef struct {
	Name    string     `yaml:"name"`
	Parent  string     `yaml:"parent"` // empty for the world
	Joints  []string   `yaml:"joints"`
	Root    bool       `yaml:"root"`
	Mass    float64    `yaml:"mass"`
	CoM     [3]float64 `yaml:"com"`
	Inertia float64    `yaml:"inertia"`
	Offset  [3]float64 `yaml:"offset"`
}

type MarkerDef struct {
	Name    string     `yaml:"name"`
	Segment string     `yaml:"segment"`
	Point   [3]float64 `yaml:"point"`
}

type RigidContactDef struct {
	Name    string     `yaml:"name"`
	Segment string     `yaml:"segment"`
	Point   [3]float64 `yaml:"point"`
	Axes    []string   `yaml:"axes"` // "x" and/or "y"
}

type SoftContactDef struct {
	Name        string     `yaml:"name"`
	Segment     string     `yaml:"segment"`
	Point       [3]float64 `yaml:"point"`
	Radius      float64    `yaml:"radius"`
	Stiffness   float64    `yaml:"stiffness"`
	Damping     float64    `yaml:"damping"`
	PlaneHeight float64    `yaml:"plane_height"`
}

type MuscleDef struct {
	Name            string       `yaml:"name"`
	Origin          AttachDef    `yaml:"origin"`
	Insertion       AttachDef    `yaml:"insertion"`
	Fmax            float64      `yaml:"fmax"`
	OptimalLength   float64      `yaml:"optimal_length"`
	TauActivation   float64      `yaml:"tau_activation"`
	TauDeactivation float64      `yaml:"tau_deactivation"`
	Fatigue         *FatigueDef  `yaml:"fatigue"`
}

type AttachDef struct {
	Segment string     `yaml:"segment"`
	Point   [3]float64 `yaml:"point"`
}

type FatigueDef struct {
	LD float64 `yaml:"ld"`
	LR float64 `yaml:"lr"`
	F  float64 `yaml:"f"`
	R  float64 `yaml:"r"`
}

// Default torque bound applied to actuated DOFs without an explicit entry.
const defaultTorqueBound = 100.0

// Load reads a model definition file and builds the model.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelFile, err)
	}
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelFile, err)
	}
	m, err := New(def)
	if err != nil {
		return nil, err
	}
	m.path = path
	return m, nil
}

// New builds a model from an in-memory definition.
func New(def Definition) (*Model, error) {
	if len(def.Segments) == 0 {
		return nil, fmt.Errorf("%w: no segments", ErrModelFile)
	}

	m := &Model{
		name:    def.Name,
		gravity: Vec3(def.Gravity),
	}

	segIdx := make(map[string]int, len(def.Segments))
	for i, sd := range def.Segments {
		parent := -1
		if sd.Parent != "" {
			p, ok := segIdx[sd.Parent]
			if !ok {
				return nil, fmt.Errorf("%w: segment %q has unknown parent %q (parents must be declared first)",
					ErrModelFile, sd.Name, sd.Parent)
			}
			parent = p
		}
		if _, dup := segIdx[sd.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate segment %q", ErrModelFile, sd.Name)
		}

		seg := Segment{
			Name:    sd.Name,
			Parent:  parent,
			Mass:    sd.Mass,
			CoM:     Vec3(sd.CoM),
			Inertia: sd.Inertia,
			Offset:  Vec3(sd.Offset),
			Root:    sd.Root,
			dof0:    len(m.dofs),
		}
		for _, j := range sd.Joints {
			jt := JointType(j)
			switch jt {
			case RotZ, TransX, TransY:
			default:
				return nil, fmt.Errorf("%w: segment %q has unknown joint %q", ErrModelFile, sd.Name, j)
			}
			seg.Joints = append(seg.Joints, jt)
			m.dofs = append(m.dofs, dofInfo{
				seg:   i,
				joint: jt,
				name:  fmt.Sprintf("%s_%s", sd.Name, jt.tag()),
			})
			if sd.Root {
				m.nroot++
			}
		}
		segIdx[sd.Name] = i
		m.segments = append(m.segments, seg)
	}

	// Root DOFs must come first so floating-base partitions are contiguous.
	for i, d := range m.dofs {
		if m.segments[d.seg].Root != (i < m.nroot) {
			return nil, fmt.Errorf("%w: root segments must precede actuated segments", ErrModelFile)
		}
	}

	for _, md := range def.Markers {
		s, ok := segIdx[md.Segment]
		if !ok {
			return nil, fmt.Errorf("%w: marker %q references unknown segment %q", ErrModelFile, md.Name, md.Segment)
		}
		m.markers = append(m.markers, Marker{Name: md.Name, Segment: s, Point: Vec3(md.Point)})
	}

	for _, cd := range def.RigidContacts {
		s, ok := segIdx[cd.Segment]
		if !ok {
			return nil, fmt.Errorf("%w: contact %q references unknown segment %q", ErrModelFile, cd.Name, cd.Segment)
		}
		c := RigidContact{Name: cd.Name, Segment: s, Point: Vec3(cd.Point)}
		for _, a := range cd.Axes {
			switch a {
			case "x":
				c.Axes = append(c.Axes, 0)
			case "y":
				c.Axes = append(c.Axes, 1)
			default:
				return nil, fmt.Errorf("%w: contact %q has unknown axis %q", ErrModelFile, cd.Name, a)
			}
		}
		if len(c.Axes) == 0 {
			return nil, fmt.Errorf("%w: contact %q constrains no axes", ErrModelFile, cd.Name)
		}
		m.contacts = append(m.contacts, c)
	}

	for _, sd := range def.SoftContacts {
		s, ok := segIdx[sd.Segment]
		if !ok {
			return nil, fmt.Errorf("%w: soft contact %q references unknown segment %q", ErrModelFile, sd.Name, sd.Segment)
		}
		m.softs = append(m.softs, SoftContact{
			Name:        sd.Name,
			Segment:     s,
			Point:       Vec3(sd.Point),
			Radius:      sd.Radius,
			Stiffness:   sd.Stiffness,
			Damping:     sd.Damping,
			PlaneHeight: sd.PlaneHeight,
		})
	}

	for _, md := range def.Muscles {
		mu, err := newMuscle(md, segIdx)
		if err != nil {
			return nil, err
		}
		m.muscles = append(m.muscles, mu)
	}

	m.tauMax = make([]float64, len(m.dofs))
	m.tauMin = make([]float64, len(m.dofs))
	for i, d := range m.dofs {
		if i < m.nroot {
			continue // floating base is unactuated
		}
		m.tauMax[i] = defaultTorqueBound
		m.tauMin[i] = -defaultTorqueBound
		if b, ok := def.TorqueBounds[d.name]; ok {
			m.tauMin[i] = b[0]
			m.tauMax[i] = b[1]
		}
	}

	return m, nil
}
