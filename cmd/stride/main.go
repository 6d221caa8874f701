// Package main provides the Stride ML Framework CLI.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stride-ml/stride/ops"
	"github.com/stride-ml/stride/tensor"
)

const version = "v0.1.0-dev"

func main() {
	if err := NewCLI().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// NewCLI builds the root command with all subcommands attached.
func NewCLI() *cobra.Command {
	cobra.EnableCommandSorting = false

	rootCmd := &cobra.Command{
		Use:           "stride",
		Short:         "Tensor operator toolkit",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Print(cmd.UsageString())
		},
	}

	rootCmd.AddCommand(
		newPoolCmd(),
		newBenchCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.ExactArgs(0),
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("Stride ML Framework %s\n", version)
		},
	}
}

func newPoolCmd() *cobra.Command {
	poolCmd := &cobra.Command{
		Use:   "pool",
		Short: "Run adaptive average pooling over a synthetic tensor",
		Args:  cobra.ExactArgs(0),
		RunE:  runPool,
	}

	poolCmd.Flags().String("shape", "1,3,8,8", "Input shape as comma-separated dims (NCHW)")
	poolCmd.Flags().String("output-size", "4,4", "Target spatial size as H,W")
	poolCmd.Flags().String("format", "contiguous", "Memory format: contiguous or channels-last")
	poolCmd.Flags().String("device", "cpu", "Device: cpu or webgpu")
	poolCmd.Flags().Bool("backward", false, "Also run the backward pass with a unit gradient")
	return poolCmd
}

func runPool(cmd *cobra.Command, _ []string) error {
	shapeFlag, _ := cmd.Flags().GetString("shape")
	sizeFlag, _ := cmd.Flags().GetString("output-size")
	formatFlag, _ := cmd.Flags().GetString("format")
	deviceFlag, _ := cmd.Flags().GetString("device")
	backward, _ := cmd.Flags().GetBool("backward")

	dims, err := parseInts(shapeFlag)
	if err != nil {
		return fmt.Errorf("invalid --shape: %w", err)
	}
	outputSize, err := parseInts(sizeFlag)
	if err != nil {
		return fmt.Errorf("invalid --output-size: %w", err)
	}

	format, err := parseFormat(formatFlag)
	if err != nil {
		return err
	}
	device, err := parseDevice(deviceFlag)
	if err != nil {
		return err
	}

	input, err := tensor.NewRawWithFormat(tensor.Shape(dims), tensor.Float32, device, format)
	if err != nil {
		return err
	}
	fillRamp(input)

	out, err := ops.AdaptiveAvgPool2D(input, outputSize)
	if err != nil {
		return err
	}

	fmt.Printf("input:  shape %v, %s, %s\n", input.Shape(), input.SuggestMemoryFormat(), input.Device())
	fmt.Printf("output: shape %v, %s\n", out.Shape(), out.SuggestMemoryFormat())
	if out.NumElements() > 0 && out.NumElements() <= 32 {
		printValues(out)
	}

	if backward {
		gradOutput, err := tensor.NewRaw(out.Shape(), out.DType(), device)
		if err != nil {
			return err
		}
		ones := gradOutput.AsFloat32()
		for i := range ones {
			ones[i] = 1
		}

		gradInput, err := ops.AdaptiveAvgPool2DBackward(gradOutput, input)
		if err != nil {
			return err
		}
		fmt.Printf("grad:   shape %v, %s\n", gradInput.Shape(), gradInput.SuggestMemoryFormat())
		if gradInput.NumElements() > 0 && gradInput.NumElements() <= 32 {
			printValues(gradInput)
		}
	}
	return nil
}

// fillRamp loads a deterministic ramp so runs are reproducible.
func fillRamp(t *tensor.RawTensor) {
	data := t.AsFloat32()
	for i := range data {
		data[i] = float32(i%97) * 0.25
	}
}

func printValues(t *tensor.RawTensor) {
	shape := t.Shape()
	idx := make([]int, len(shape))
	for flat := 0; flat < t.NumElements(); flat++ {
		rem := flat
		for d := len(shape) - 1; d >= 0; d-- {
			idx[d] = rem % shape[d]
			rem /= shape[d]
		}
		fmt.Printf("  %v = %.4f\n", idx, t.At(idx...))
	}
}

func parseInts(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("%q is not an integer", p)
		}
		out = append(out, v)
	}
	return out, nil
}

func parseFormat(s string) (tensor.MemoryFormat, error) {
	switch s {
	case "contiguous":
		return tensor.Contiguous, nil
	case "channels-last":
		return tensor.ChannelsLast, nil
	default:
		return 0, fmt.Errorf("unknown format %q (want contiguous or channels-last)", s)
	}
}

func parseDevice(s string) (tensor.Device, error) {
	switch s {
	case "cpu":
		return tensor.CPU, nil
	case "webgpu":
		return tensor.WebGPU, nil
	default:
		return 0, fmt.Errorf("unknown device %q (want cpu or webgpu)", s)
	}
}
