package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/mbtree/internal/spatial"
	"github.com/san-kum/mbtree/internal/tree"
)

const (
	DefaultGravity = -9.81
	DefaultMass    = 1.0
)

// Model is a YAML multibody model description: a list of bodies, each
// naming its parent and inboard joint, plus an optional initial state.
type Model struct {
	Name    string     `yaml:"name"`
	Gravity [3]float64 `yaml:"gravity"`
	Bodies  []Body     `yaml:"bodies"`
	Initial Initial    `yaml:"initial"`
}

type Body struct {
	Name     string     `yaml:"name"`
	Parent   string     `yaml:"parent"` // "ground" or a previously listed body
	Joint    string     `yaml:"joint"`
	UseEuler bool       `yaml:"use_euler"`
	Mass     float64    `yaml:"mass"`
	COM      [3]float64 `yaml:"com"`
	// Inertia about the body origin: ixx, iyy, izz, ixy, ixz, iyz.
	Inertia     [6]float64 `yaml:"inertia"`
	ParentFrame Frame      `yaml:"parent_frame"`
	BodyFrame   Frame      `yaml:"body_frame"`
}

// Frame places a fixed joint frame: origin plus a body-fixed 1-2-3 Euler
// rotation, radians.
type Frame struct {
	Origin [3]float64 `yaml:"origin"`
	Euler  [3]float64 `yaml:"euler"`
}

type Initial struct {
	Q []float64 `yaml:"q"`
	U []float64 `yaml:"u"`
}

// Load reads a model description from a YAML file.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m := &Model{}
	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Save writes the model description to a YAML file.
func (m *Model) Save(path string) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// GravityVec returns the gravity field as a vector.
func (m *Model) GravityVec() spatial.Vec3 {
	return spatial.Vec3{m.Gravity[0], m.Gravity[1], m.Gravity[2]}
}

func (f Frame) transform() spatial.Transform {
	return spatial.Transform{
		R: spatial.BodyFixed123(spatial.Vec3{f.Euler[0], f.Euler[1], f.Euler[2]}),
		P: spatial.Vec3{f.Origin[0], f.Origin[1], f.Origin[2]},
	}
}

func jointType(name string) (tree.JointType, error) {
	switch name {
	case "torsion", "pin":
		return tree.Torsion, nil
	case "universal":
		return tree.Universal, nil
	case "orientation", "ball":
		return tree.Orientation, nil
	case "cartesian", "translate":
		return tree.Cartesian, nil
	case "freeline":
		return tree.FreeLine, nil
	case "free":
		return tree.Free, nil
	case "sliding", "slider":
		return tree.Sliding, nil
	}
	return 0, fmt.Errorf("config: unknown joint type %q", name)
}

func inertiaMat(v [6]float64) spatial.Mat33 {
	return spatial.Mat33{
		{v[0], v[3], v[4]},
		{v[3], v[1], v[5]},
		{v[4], v[5], v[2]},
	}
}

// Build constructs the tree described by the model. The returned map gives
// each named body's node number.
func (m *Model) Build() (*tree.Tree, map[string]int, error) {
	t := tree.New()
	ids := map[string]int{"ground": 0}

	for _, b := range m.Bodies {
		parent, ok := ids[b.Parent]
		if !ok {
			return nil, nil, fmt.Errorf("config: body %q: parent %q not defined", b.Name, b.Parent)
		}
		jt, err := jointType(b.Joint)
		if err != nil {
			return nil, nil, fmt.Errorf("config: body %q: %w", b.Name, err)
		}
		mass := b.Mass
		if mass == 0 {
			mass = DefaultMass
		}
		mp := tree.MassProperties{
			Mass:    mass,
			COM:     spatial.Vec3{b.COM[0], b.COM[1], b.COM[2]},
			Inertia: inertiaMat(b.Inertia),
		}
		id, err := t.AddBody(parent, jt, mp, b.ParentFrame.transform(), b.BodyFrame.transform(), false)
		if err != nil {
			return nil, nil, fmt.Errorf("config: body %q: %w", b.Name, err)
		}
		if b.UseEuler {
			if err := t.SetUseEulerAngles(id, true); err != nil {
				return nil, nil, fmt.Errorf("config: body %q: %w", b.Name, err)
			}
		}
		ids[b.Name] = id
	}
	return t, ids, nil
}

// InitialState returns q and u for the built tree: the model's explicit
// initial state when present (lengths must match), joint defaults
// otherwise.
func (m *Model) InitialState(t *tree.Tree) ([]float64, []float64, error) {
	q := make([]float64, t.NQ())
	u := make([]float64, t.NU())
	t.SetDefaults(q, u)

	if len(m.Initial.Q) > 0 {
		if len(m.Initial.Q) != t.NQ() {
			return nil, nil, fmt.Errorf("config: initial q has %d entries, tree needs %d",
				len(m.Initial.Q), t.NQ())
		}
		copy(q, m.Initial.Q)
	}
	if len(m.Initial.U) > 0 {
		if len(m.Initial.U) != t.NU() {
			return nil, nil, fmt.Errorf("config: initial u has %d entries, tree needs %d",
				len(m.Initial.U), t.NU())
		}
		copy(u, m.Initial.U)
	}
	return q, u, nil
}
