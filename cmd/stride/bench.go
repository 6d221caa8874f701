package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/stride-ml/stride/ops"
	"github.com/stride-ml/stride/profiler"
	"github.com/stride-ml/stride/tensor"
)

func newBenchCmd() *cobra.Command {
	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure pooling throughput under profiling scopes",
		Args:  cobra.ExactArgs(0),
		RunE:  runBench,
	}

	benchCmd.Flags().String("shape", "8,64,56,56", "Input shape as comma-separated dims (NCHW)")
	benchCmd.Flags().String("output-size", "7,7", "Target spatial size as H,W")
	benchCmd.Flags().Int("iters", 20, "Number of forward/backward iterations")
	benchCmd.Flags().Bool("verbose", false, "Log every scope transition")
	return benchCmd
}

func runBench(cmd *cobra.Command, _ []string) error {
	shapeFlag, _ := cmd.Flags().GetString("shape")
	sizeFlag, _ := cmd.Flags().GetString("output-size")
	iters, _ := cmd.Flags().GetInt("iters")
	verbose, _ := cmd.Flags().GetBool("verbose")

	dims, err := parseInts(shapeFlag)
	if err != nil {
		return fmt.Errorf("invalid --shape: %w", err)
	}
	outputSize, err := parseInts(sizeFlag)
	if err != nil {
		return fmt.Errorf("invalid --output-size: %w", err)
	}

	input, err := tensor.NewRaw(tensor.Shape(dims), tensor.Float32, tensor.CPU)
	if err != nil {
		return err
	}
	fillRamp(input)

	sink := profiler.NewTimingSink()
	profCtx := profiler.Current().WithCallback(sink)
	if verbose {
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
		profCtx = profCtx.WithCallback(profiler.NewLogCallback(logger))
	}
	prev := profiler.Install(profCtx)
	defer profiler.Install(prev)

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Minute)
	defer cancel()

	for i := 0; i < iters; i++ {
		out, err := ops.AdaptiveAvgPool2DAsync(input, outputSize).Wait(ctx)
		if err != nil {
			return err
		}

		gradOutput, err := tensor.NewRaw(out.Shape(), out.DType(), tensor.CPU)
		if err != nil {
			return err
		}
		grads := gradOutput.AsFloat32()
		for j := range grads {
			grads[j] = 1
		}

		if _, err := ops.AdaptiveAvgPool2DBackwardAsync(gradOutput, input).Wait(ctx); err != nil {
			return err
		}
	}

	stats := sink.Summary()
	data := make([][]string, 0, len(stats))
	for _, st := range stats {
		data = append(data, []string{
			st.Name,
			fmt.Sprintf("%d", st.Count),
			st.Mean.String(),
			st.Std.String(),
			st.Min.String(),
			st.Max.String(),
		})
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"SCOPE", "COUNT", "MEAN", "STD", "MIN", "MAX"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(data)
	table.Render()

	return nil
}
