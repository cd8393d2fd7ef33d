package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/mbtree/internal/config"
	"github.com/san-kum/mbtree/internal/tree"
	"github.com/san-kum/mbtree/internal/viz"
)

var (
	modelFile string
	initQ     string
	initU     string
	format    string
	// Sweep parameters
	sweepCoord int
	sweepFrom  float64
	sweepTo    float64
	sweepSteps int
	sweepOut   int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "mbtree",
		Short: "articulated rigid-body forward dynamics",
	}
	rootCmd.PersistentFlags().StringVar(&modelFile, "model", "", "model file path (yaml)")

	infoCmd := &cobra.Command{
		Use:   "info [preset]",
		Short: "show model topology and coordinate layout",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showInfo,
	}

	accelCmd := &cobra.Command{
		Use:   "accel [preset]",
		Short: "compute accelerations under gravity at a given state",
		Args:  cobra.MaximumNArgs(1),
		RunE:  computeAccel,
	}
	accelCmd.Flags().StringVar(&initQ, "q", "", "coordinates, comma separated (default: model initial state)")
	accelCmd.Flags().StringVar(&initU, "u", "", "speeds, comma separated (default: model initial state)")
	accelCmd.Flags().StringVar(&format, "format", "table", "output format: table, json, csv")

	sweepCmd := &cobra.Command{
		Use:   "sweep [preset]",
		Short: "plot one acceleration component across a coordinate range",
		Args:  cobra.MaximumNArgs(1),
		RunE:  sweepAccel,
	}
	sweepCmd.Flags().IntVar(&sweepCoord, "coord", 0, "coordinate index to vary")
	sweepCmd.Flags().Float64Var(&sweepFrom, "from", -3.0, "range start")
	sweepCmd.Flags().Float64Var(&sweepTo, "to", 3.0, "range end")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 72, "sample count")
	sweepCmd.Flags().IntVar(&sweepOut, "out", 0, "udot index to plot")

	energyCmd := &cobra.Command{
		Use:   "energy [preset]",
		Short: "report kinetic and potential energy at a given state",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showEnergy,
	}
	energyCmd.Flags().StringVar(&initQ, "q", "", "coordinates, comma separated")
	energyCmd.Flags().StringVar(&initU, "u", "", "speeds, comma separated")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in models",
		RunE: func(cmd *cobra.Command, args []string) error {
			names := config.ListPresets()
			sort.Strings(names)
			for _, name := range names {
				m := config.GetPreset(name)
				fmt.Printf("%-22s %d bodies\n", name, len(m.Bodies))
			}
			return nil
		},
	}

	rootCmd.AddCommand(infoCmd, accelCmd, sweepCmd, energyCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadModel resolves --model or a preset name argument.
func loadModel(args []string) (*config.Model, error) {
	if modelFile != "" {
		return config.Load(modelFile)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("no model: give a preset name or --model (presets: %s)",
			strings.Join(config.ListPresets(), ", "))
	}
	m := config.GetPreset(args[0])
	if m == nil {
		return nil, fmt.Errorf("unknown preset: %s (available: %s)",
			args[0], strings.Join(config.ListPresets(), ", "))
	}
	return m, nil
}

func parseFloats(s string) ([]float64, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	vals := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("bad number %q: %w", p, err)
		}
		vals[i] = v
	}
	return vals, nil
}

// resolveState returns q and u: the model's initial state overlaid with the
// --q and --u flags when given.
func resolveState(m *config.Model, t *tree.Tree) ([]float64, []float64, error) {
	q, u, err := m.InitialState(t)
	if err != nil {
		return nil, nil, err
	}
	if flagQ, err := parseFloats(initQ); err != nil {
		return nil, nil, err
	} else if flagQ != nil {
		if len(flagQ) != t.NQ() {
			return nil, nil, fmt.Errorf("--q has %d entries, model needs %d", len(flagQ), t.NQ())
		}
		q = flagQ
	}
	if flagU, err := parseFloats(initU); err != nil {
		return nil, nil, err
	} else if flagU != nil {
		if len(flagU) != t.NU() {
			return nil, nil, fmt.Errorf("--u has %d entries, model needs %d", len(flagU), t.NU())
		}
		u = flagU
	}
	return q, u, nil
}

func showInfo(cmd *cobra.Command, args []string) error {
	m, err := loadModel(args)
	if err != nil {
		return err
	}
	t, ids, err := m.Build()
	if err != nil {
		return err
	}

	fmt.Println(viz.Title.Render(m.Name))
	fmt.Println(viz.Separator(60))
	fmt.Print(viz.RenderTopology(t, ids))
	fmt.Println(viz.Separator(60))
	fmt.Println(viz.KV("bodies", strconv.Itoa(t.NumBodies()-1)))
	fmt.Println(viz.KV("coordinates (nq)", strconv.Itoa(t.NQ())))
	fmt.Println(viz.KV("speeds (nu)", strconv.Itoa(t.NU())))
	g := m.GravityVec()
	fmt.Println(viz.KV("gravity", fmt.Sprintf("[%g %g %g]", g[0], g[1], g[2])))
	return nil
}

// accelResult is the JSON/CSV shape of one accel evaluation.
type accelResult struct {
	Model   string    `json:"model"`
	Q       []float64 `json:"q"`
	U       []float64 `json:"u"`
	UDot    []float64 `json:"udot"`
	QDotDot []float64 `json:"qdotdot"`
}

func computeAccel(cmd *cobra.Command, args []string) error {
	m, err := loadModel(args)
	if err != nil {
		return err
	}
	t, ids, err := m.Build()
	if err != nil {
		return err
	}
	q, u, err := resolveState(m, t)
	if err != nil {
		return err
	}

	cc := tree.NewConfigurationCache(t)
	mc := tree.NewMotionCache(t)
	dc := tree.NewDynamicsCache(t)
	rc := tree.NewReactionCache(t)
	qdot := make([]float64, t.NQ())
	udot := make([]float64, t.NU())
	qdotdot := make([]float64, t.NQ())

	if err := t.RealizeConfiguration(q, cc); err != nil {
		return err
	}
	if err := t.RealizeMotion(q, u, cc, mc, qdot); err != nil {
		return err
	}
	if err := t.RealizeDynamics(cc, mc, dc); err != nil {
		return err
	}
	bodyForces := t.GravityForces(m.GravityVec(), cc)
	jointForces := make([]float64, t.NU())
	if err := t.CalcTreeAccel(q, u, cc, dc, rc, bodyForces, jointForces, udot, qdotdot); err != nil {
		return err
	}

	switch format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(accelResult{Model: m.Name, Q: q, U: u, UDot: udot, QDotDot: qdotdot})
	case "csv":
		w := csv.NewWriter(os.Stdout)
		defer w.Flush()
		if err := w.Write([]string{"index", "udot"}); err != nil {
			return err
		}
		for i, v := range udot {
			if err := w.Write([]string{strconv.Itoa(i), strconv.FormatFloat(v, 'f', 9, 64)}); err != nil {
				return err
			}
		}
		return nil
	case "table":
	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	byNum := make(map[int]string, len(ids))
	for name, num := range ids {
		byNum[num] = name
	}
	fmt.Println(viz.Title.Render(m.Name))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BODY\tJOINT\tU SLOT\tUDOT")
	for i := 1; i < t.NumBodies(); i++ {
		n := t.Node(i)
		slot := udot[n.UIndex() : n.UIndex()+n.DOF()]
		parts := make([]string, len(slot))
		for j, v := range slot {
			parts[j] = strconv.FormatFloat(v, 'g', 6, 64)
		}
		fmt.Fprintf(w, "%s\t%s\t%d:%d\t%s\n",
			byNum[i], n.Joint(), n.UIndex(), n.UIndex()+n.DOF(), strings.Join(parts, " "))
	}
	return w.Flush()
}

func sweepAccel(cmd *cobra.Command, args []string) error {
	m, err := loadModel(args)
	if err != nil {
		return err
	}
	t, _, err := m.Build()
	if err != nil {
		return err
	}
	if sweepCoord < 0 || sweepCoord >= t.NQ() {
		return fmt.Errorf("coord %d out of range, model has %d coordinates", sweepCoord, t.NQ())
	}
	if sweepOut < 0 || sweepOut >= t.NU() {
		return fmt.Errorf("out %d out of range, model has %d speeds", sweepOut, t.NU())
	}
	if sweepSteps < 2 {
		return fmt.Errorf("steps must be at least 2")
	}

	q, u, err := m.InitialState(t)
	if err != nil {
		return err
	}
	for i := range u {
		u[i] = 0
	}

	cc := tree.NewConfigurationCache(t)
	mc := tree.NewMotionCache(t)
	dc := tree.NewDynamicsCache(t)
	rc := tree.NewReactionCache(t)
	qdot := make([]float64, t.NQ())
	udot := make([]float64, t.NU())
	qdotdot := make([]float64, t.NQ())
	jointForces := make([]float64, t.NU())

	ys := make([]float64, sweepSteps)
	for i := 0; i < sweepSteps; i++ {
		q[sweepCoord] = sweepFrom + (sweepTo-sweepFrom)*float64(i)/float64(sweepSteps-1)
		if err := t.RealizeConfiguration(q, cc); err != nil {
			return err
		}
		if err := t.RealizeMotion(q, u, cc, mc, qdot); err != nil {
			return err
		}
		if err := t.RealizeDynamics(cc, mc, dc); err != nil {
			return err
		}
		bodyForces := t.GravityForces(m.GravityVec(), cc)
		if err := t.CalcTreeAccel(q, u, cc, dc, rc, bodyForces, jointForces, udot, qdotdot); err != nil {
			return err
		}
		ys[i] = udot[sweepOut]
	}

	caption := fmt.Sprintf("udot[%d] vs q[%d] in [%g, %g], u = 0", sweepOut, sweepCoord, sweepFrom, sweepTo)
	fmt.Println(viz.Title.Render(m.Name))
	fmt.Println(viz.PlotSeries(ys, caption))
	return nil
}

func showEnergy(cmd *cobra.Command, args []string) error {
	m, err := loadModel(args)
	if err != nil {
		return err
	}
	t, _, err := m.Build()
	if err != nil {
		return err
	}
	q, u, err := resolveState(m, t)
	if err != nil {
		return err
	}

	cc := tree.NewConfigurationCache(t)
	mc := tree.NewMotionCache(t)
	qdot := make([]float64, t.NQ())
	if err := t.RealizeConfiguration(q, cc); err != nil {
		return err
	}
	if err := t.RealizeMotion(q, u, cc, mc, qdot); err != nil {
		return err
	}

	ke := t.CalcKineticEnergy(cc, mc)

	// Potential energy of the uniform field, zero at the ground origin.
	g := m.GravityVec()
	pe := 0.0
	for i := 1; i < t.NumBodies(); i++ {
		n := t.Node(i)
		com := cc.XGB[i].P.Add(cc.CbG[i])
		pe -= n.Mass() * g.Dot(com)
	}

	fmt.Println(viz.Title.Render(m.Name))
	fmt.Println(viz.KV("kinetic", strconv.FormatFloat(ke, 'g', 9, 64)))
	fmt.Println(viz.KV("potential", strconv.FormatFloat(pe, 'g', 9, 64)))
	fmt.Println(viz.KV("total", strconv.FormatFloat(ke+pe, 'g', 9, 64)))
	return nil
}
