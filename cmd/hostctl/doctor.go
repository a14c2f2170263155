package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"codeberg.org/mutker/hostctl/internal/capability"
	"codeberg.org/mutker/hostctl/internal/config"
	"codeberg.org/mutker/hostctl/internal/journal"
	"codeberg.org/mutker/hostctl/internal/probe"
	"codeberg.org/mutker/hostctl/internal/telemetry"
	"github.com/charmbracelet/lipgloss"
)

var (
	colorRed   = lipgloss.Color("#FF5555")
	colorGreen = lipgloss.Color("#50FA7B")
	colorCyan  = lipgloss.Color("#8BE9FD")
	colorGray  = lipgloss.Color("#6272A4")

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	labelStyle = lipgloss.NewStyle().Foreground(colorGray).Width(24)
	okStyle    = lipgloss.NewStyle().Foreground(colorGreen)
	critStyle  = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(colorGray)
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorGray).
			Padding(0, 1)
)

func doctor(cfg *config.Config, w io.Writer) error {
	a, err := build(cfg)
	if err != nil {
		return err
	}
	defer a.close()

	ctx := context.Background()
	snap := a.aggregator.Snapshot(ctx)

	var recent []journal.Entry
	if a.journal.Enabled() {
		if recent, err = a.journal.Recent(ctx, 10); err != nil {
			return err
		}
	}

	report := []string{
		renderProviders(a.registry, a.prober),
		renderSnapshot(snap),
	}
	if len(recent) > 0 {
		report = append(report, renderJournal(recent))
	}

	_, err = fmt.Fprintln(w, lipgloss.JoinVertical(lipgloss.Left, report...))

	return err
}

func renderProviders(reg *capability.Registry, prober probe.Prober) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Providers (" + reg.Platform + ")"))
	b.WriteString("\n")

	for _, c := range reg.Capabilities() {
		for _, p := range reg.Lookup(c) {
			var res probe.Result
			if p.Kind == capability.KindVendor {
				res = prober.Locate(reg.VendorPaths)
			} else {
				res = prober.Probe(p)
			}

			status := critStyle.Render("missing")
			if res.Available {
				status = okStyle.Render("ok")
			}
			fmt.Fprintf(&b, "%s %-8s %s %s\n", labelStyle.Render(string(c)), status, p.String(), dimStyle.Render(res.Path))
		}
	}

	return panelStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func renderSnapshot(snap telemetry.Snapshot) string {
	rows := []struct {
		name  string
		value float64
		unit  string
	}{
		{telemetry.MetricCPUUsage, snap.CPUUsage, "%"},
		{telemetry.MetricCPUTemp, snap.CPUTemp, "°C"},
		{telemetry.MetricGPUUsage, snap.GPUUsage, "%"},
		{telemetry.MetricGPUTemp, snap.GPUTemp, "°C"},
		{telemetry.MetricRAMUsage, snap.RAMUsage, "%"},
		{telemetry.MetricBatteryLevel, snap.BatteryLevel, "%"},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Telemetry"))
	b.WriteString("\n")
	for _, r := range rows {
		value := critStyle.Render("unavailable")
		if r.value != telemetry.Unavailable {
			value = okStyle.Render(fmt.Sprintf("%.1f%s", r.value, r.unit))
		}
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Render(r.name), value)
	}

	return panelStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func renderJournal(entries []journal.Entry) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Recent actions"))
	b.WriteString("\n")
	for _, e := range entries {
		status := okStyle.Render("ok")
		if !e.OK {
			status = critStyle.Render(e.Kind)
		}
		fmt.Fprintf(&b, "%s %-12s %s %s\n",
			dimStyle.Render(e.Time.Format("2006-01-02 15:04:05")), e.Action, status, e.Message)
	}

	return panelStyle.Render(strings.TrimRight(b.String(), "\n"))
}
