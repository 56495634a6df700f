// SPDX-License-Identifier: GPL-3.0
// Copyright 2024 Pete Heist

// Command vsyncsim drives a vsync.Predictor against a synthetic or
// file-sourced trace of vsync timestamps and prints predicted-vs-actual
// lead time. It exists to exercise the vsync package end-to-end; it is not
// part of the library's public surface.
package main

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/go-logr/logr/funcr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/heistp/vsyncpredictor/internal/tracegen"
	"github.com/heistp/vsyncpredictor/vsync"
)

type runOpts struct {
	nominalPeriod time.Duration
	renderRate    time.Duration
	samples       int
	jitter        float64
	traceFile     string
	metricsAddr   string
}

func main() {
	o := &runOpts{}
	root := &cobra.Command{
		Use:   "vsyncsim",
		Short: "Drive a vsync.Predictor against a synthetic or file-sourced trace",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), o)
		},
	}
	root.Flags().DurationVar(&o.nominalPeriod, "period", 16_666_666*time.Nanosecond,
		"nominal display period")
	root.Flags().DurationVar(&o.renderRate, "render-rate", 0,
		"render-rate divisor period (0 disables)")
	root.Flags().IntVar(&o.samples, "samples", 120,
		"number of synthetic samples to generate (ignored with --trace-file)")
	root.Flags().Float64Var(&o.jitter, "jitter", 0.02,
		"synthetic jitter as a fraction of the nominal period")
	root.Flags().StringVar(&o.traceFile, "trace-file", "",
		"newline-delimited file of nanosecond vsync timestamps")
	root.Flags().StringVar(&o.metricsAddr, "metrics-addr", "",
		"if set, serve Prometheus metrics on this address")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, o *runOpts) error {
	log := funcr.New(func(prefix, args string) {
		fmt.Fprintln(os.Stderr, prefix, args)
	}, funcr.Options{})

	mode := vsync.NewDisplayMode(1, vsync.Clock(o.nominalPeriod))
	p := vsync.NewPredictor(mode, vsync.WithLogger(log))

	var metrics *vsync.Metrics
	if o.metricsAddr != "" {
		reg := prometheus.NewRegistry()
		metrics = vsync.NewMetrics(p, reg)
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		srv := &http.Server{Addr: o.metricsAddr, Handler: mux}
		go srv.ListenAndServe()
		go func() {
			<-ctx.Done()
			srv.Close()
		}()
	}

	ts, err := loadTrace(o)
	if err != nil {
		return err
	}

	if o.renderRate > 0 {
		p.SetRenderRate(vsync.Clock(o.renderRate))
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 2, 2, ' ', 0)
	fmt.Fprintln(w, "TIMESTAMP\tACCEPTED\tPREDICTED\tLEAD")
	for _, t := range ts {
		select {
		case <-ctx.Done():
			w.Flush()
			return ctx.Err()
		default:
		}
		var accepted bool
		var predicted vsync.Clock
		if metrics != nil {
			accepted = metrics.AddVsyncTimestamp(t)
			predicted = metrics.NextAnticipatedVSyncTimeFrom(t)
		} else {
			accepted = p.AddVsyncTimestamp(t)
			predicted = p.NextAnticipatedVSyncTimeFrom(t)
		}
		lead := time.Duration(predicted - t)
		fmt.Fprintf(w, "%d\t%t\t%d\t%s\n", int64(t), accepted, int64(predicted), lead)
	}
	return w.Flush()
}

// loadTrace reads timestamps from o.traceFile if set, otherwise generates a
// synthetic trace via tracegen.
func loadTrace(o *runOpts) ([]vsync.Clock, error) {
	if o.traceFile == "" {
		return tracegen.Generate(o.samples, 0, tracegen.Options{
			NominalPeriod:     vsync.Clock(o.nominalPeriod),
			JitterFraction:    o.jitter,
			OutlierMultiplier: 3,
			IdleGapMultiplier: 5,
			Seed:              1,
		}), nil
	}
	f, err := os.Open(o.traceFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var ts []vsync.Clock
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		v, err := strconv.ParseInt(sc.Text(), 10, 64)
		if err != nil {
			continue
		}
		ts = append(ts, vsync.Clock(v))
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return ts, nil
}
