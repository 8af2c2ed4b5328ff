package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/kass/go-geo-coordinate/pkg/config"
	"github.com/kass/go-geo-coordinate/pkg/geo"
	"github.com/kass/go-geo-coordinate/pkg/models"
	dto "github.com/prometheus/client_model/go"
)

type coordinateView struct {
	Input    string          `json:"input,omitempty"`
	Kind     string          `json:"kind"`
	Value    string          `json:"value"`
	Vector   models.Vector   `json:"vector"`
	Location models.Location `json:"location"`
}

func viewOf(input string, c geo.Coordinate) (coordinateView, error) {
	loc, err := models.LocationOf(c)
	if err != nil {
		return coordinateView{}, err
	}
	return coordinateView{
		Input:    input,
		Kind:     kindOf(c),
		Value:    fmt.Sprint(c),
		Vector:   models.VectorOf(c),
		Location: loc,
	}, nil
}

func kindOf(c geo.Coordinate) string {
	switch c.(type) {
	case *geo.Cartesian:
		return geo.CartesianPool
	case *geo.Spheric:
		return geo.SphericPool
	}
	return fmt.Sprintf("%T", c)
}

// render writes v as indented JSON, or fills a table and renders it.
func (a *app) render(w io.Writer, v any, fill func(t table.Writer)) error {
	if a.cfg != nil && a.cfg.Output == config.OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	fill(t)
	t.Render()
	return nil
}

func appendCoordinateRows(t table.Writer, views ...coordinateView) {
	t.AppendHeader(table.Row{"Input", "Kind", "X", "Y", "Z", "Lat", "Lon", "Radius"})
	for _, v := range views {
		radius := 0.0
		if v.Location.Radius != nil {
			radius = *v.Location.Radius
		}
		t.AppendRow(table.Row{
			v.Input, v.Kind,
			formatFloat(v.Vector.X), formatFloat(v.Vector.Y), formatFloat(v.Vector.Z),
			formatFloat(v.Location.Lat), formatFloat(v.Location.Lon), formatFloat(radius),
		})
	}
}

func formatFloat(v float64) string {
	return fmt.Sprintf("%.6f", v)
}

type sample struct {
	Metric string            `json:"metric"`
	Labels map[string]string `json:"labels,omitempty"`
	Value  float64           `json:"value"`
}

// samplesOf flattens gathered counter and gauge families.
func samplesOf(families []*dto.MetricFamily) []sample {
	var out []sample
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			s := sample{Metric: mf.GetName(), Labels: map[string]string{}}
			for _, lp := range m.GetLabel() {
				s.Labels[lp.GetName()] = lp.GetValue()
			}
			switch mf.GetType() {
			case dto.MetricType_COUNTER:
				s.Value = m.GetCounter().GetValue()
			case dto.MetricType_GAUGE:
				s.Value = m.GetGauge().GetValue()
			default:
				continue
			}
			out = append(out, s)
		}
	}
	return out
}

func (a *app) reportMetrics(w io.Writer) error {
	g := a.pool.Gatherer()
	if g == nil {
		return nil
	}
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	samples := samplesOf(families)
	return a.render(w, map[string]any{"metrics": samples}, func(t table.Writer) {
		t.SetTitle("Pool metrics")
		t.AppendHeader(table.Row{"Metric", "Labels", "Value"})
		for _, s := range samples {
			t.AppendRow(table.Row{s.Metric, labelString(s.Labels), s.Value})
		}
	})
}

func labelString(labels map[string]string) string {
	parts := make([]string, 0, len(labels))
	for _, k := range []string{"pool", "result"} {
		if v, ok := labels[k]; ok {
			parts = append(parts, k+"="+v)
		}
	}
	return strings.Join(parts, " ")
}
