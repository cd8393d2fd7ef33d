package config

// Presets are ready-made models, keyed by name. Angles in radians,
// lengths in meters, masses in kilograms.
var Presets = map[string]*Model{
	"pendulum": {
		Name:    "pendulum",
		Gravity: [3]float64{0, DefaultGravity, 0},
		Bodies: []Body{
			{
				Name: "bob", Parent: "ground", Joint: "torsion",
				Mass: 1.0, COM: [3]float64{0, -1, 0},
				Inertia: [6]float64{1, 0, 1, 0, 0, 0},
			},
		},
		Initial: Initial{Q: []float64{0.5}, U: []float64{0}},
	},
	"double_pendulum": {
		Name:    "double_pendulum",
		Gravity: [3]float64{0, DefaultGravity, 0},
		Bodies: []Body{
			{
				Name: "upper", Parent: "ground", Joint: "torsion",
				Mass: 1.0, COM: [3]float64{0, -0.5, 0},
				Inertia: [6]float64{0.25, 0, 0.25, 0, 0, 0},
			},
			{
				Name: "lower", Parent: "upper", Joint: "torsion",
				Mass: 1.0, COM: [3]float64{0, -0.5, 0},
				Inertia:     [6]float64{0.25, 0, 0.25, 0, 0, 0},
				ParentFrame: Frame{Origin: [3]float64{0, -1, 0}},
			},
		},
		Initial: Initial{Q: []float64{1.0, 0.5}, U: []float64{0, 0}},
	},
	"spherical_pendulum": {
		Name:    "spherical_pendulum",
		Gravity: [3]float64{0, DefaultGravity, 0},
		Bodies: []Body{
			{
				Name: "bob", Parent: "ground", Joint: "ball", UseEuler: true,
				Mass: 2.0, COM: [3]float64{0, -1, 0},
				Inertia: [6]float64{2, 0.01, 2, 0, 0, 0},
			},
		},
		// Ball joints reserve a fourth q slot for the quaternion mode; it is
		// unused with Euler angles but must still be supplied.
		Initial: Initial{Q: []float64{0.3, 0, 0.2, 0}, U: []float64{0, 0, 0}},
	},
	"cart_pendulum": {
		Name:    "cart_pendulum",
		Gravity: [3]float64{0, DefaultGravity, 0},
		Bodies: []Body{
			{
				Name: "cart", Parent: "ground", Joint: "sliding",
				Mass: 5.0, COM: [3]float64{0, 0, 0},
				Inertia: [6]float64{0.1, 0.1, 0.1, 0, 0, 0},
			},
			{
				Name: "pole", Parent: "cart", Joint: "torsion",
				Mass: 0.5, COM: [3]float64{0, 0.5, 0},
				Inertia: [6]float64{0.15, 0.001, 0.15, 0, 0, 0},
			},
		},
		Initial: Initial{Q: []float64{0, 0.1}, U: []float64{0, 0}},
	},
	"free_brick": {
		Name:    "free_brick",
		Gravity: [3]float64{0, DefaultGravity, 0},
		Bodies: []Body{
			{
				Name: "brick", Parent: "ground", Joint: "free",
				Mass: 3.0, COM: [3]float64{0, 0, 0},
				Inertia: [6]float64{0.1, 0.2, 0.3, 0, 0, 0},
			},
		},
	},
	"gimbal": {
		Name:    "gimbal",
		Gravity: [3]float64{0, DefaultGravity, 0},
		Bodies: []Body{
			{
				Name: "outer", Parent: "ground", Joint: "universal",
				Mass: 0.8, COM: [3]float64{0, -0.2, 0},
				Inertia: [6]float64{0.05, 0.02, 0.05, 0, 0, 0},
			},
			{
				Name: "rotor", Parent: "outer", Joint: "torsion",
				Mass: 1.2, COM: [3]float64{0, 0, 0},
				Inertia:     [6]float64{0.04, 0.08, 0.04, 0, 0, 0},
				ParentFrame: Frame{Origin: [3]float64{0, -0.4, 0}},
			},
		},
		Initial: Initial{Q: []float64{0.1, 0.1, 0}, U: []float64{0, 0, 40}},
	},
}

func GetPreset(name string) *Model {
	return Presets[name]
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
