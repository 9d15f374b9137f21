package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/limitlesswill/semblance/pkg/listing"
	"github.com/limitlesswill/semblance/pkg/ne"
	"github.com/limitlesswill/semblance/pkg/report"
	"github.com/limitlesswill/semblance/pkg/scan"
	"github.com/limitlesswill/semblance/pkg/syntax"
)

func main() {
	var (
		configPath     string
		asmSyntax      string
		disassembleAll bool
		demangle       bool
		segmentFilter  []int
		noColor        bool
	)

	rootCmd := &cobra.Command{
		Use:   "nedisasm",
		Short: "Disassemble a Win16 NE segment set",
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Optional YAML config file; flags override its values")
	rootCmd.PersistentFlags().StringVar(&asmSyntax, "asm-syntax", "nasm", "Output syntax: nasm, gas, or masm")
	rootCmd.PersistentFlags().BoolVar(&disassembleAll, "disassemble-all", false, "Disassemble every byte, not just reachable ones")
	rootCmd.PersistentFlags().BoolVar(&demangle, "demangle", false, "Apply C++ name demangling to comments")
	rootCmd.PersistentFlags().IntSliceVar(&segmentFilter, "disassemble-segment", nil, "Limit output to these 1-based segment numbers (repeatable); default is all")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colorized warning output")

	resolve := func() (syntax.Syntax, listing.Config, bool, error) {
		if configPath != "" {
			fc, err := loadFileConfig(configPath)
			if err != nil {
				return 0, listing.Config{}, false, err
			}
			if !rootCmd.PersistentFlags().Changed("asm-syntax") && fc.AsmSyntax != "" {
				asmSyntax = fc.AsmSyntax
			}
			if !rootCmd.PersistentFlags().Changed("disassemble-all") {
				disassembleAll = fc.DisassembleAll
			}
			if !rootCmd.PersistentFlags().Changed("demangle") {
				demangle = fc.Demangle
			}
			if !rootCmd.PersistentFlags().Changed("disassemble-segment") {
				segmentFilter = fc.DisassembleSegments
			}
			if !rootCmd.PersistentFlags().Changed("no-color") {
				noColor = fc.NoColor
			}
		}

		s, err := syntax.ParseSyntax(asmSyntax)
		if err != nil {
			return 0, listing.Config{}, false, err
		}
		cfg := listing.Config{Syntax: s, DisassembleAll: disassembleAll}
		if demangle {
			cfg.Demangle = identityDemangle
		}
		return s, cfg, !noColor, nil
	}

	openFixture := func(path string) (ne.Loader, error) {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening fixture %s: %w", path, err)
		}
		defer f.Close()
		return ne.LoadFixture(f)
	}

	selected := func(cs uint16) bool {
		if len(segmentFilter) == 0 {
			return true
		}
		for _, n := range segmentFilter {
			if n == int(cs) {
				return true
			}
		}
		return false
	}

	disasmCmd := &cobra.Command{
		Use:   "disasm <fixture.json>",
		Short: "Print the full disassembly listing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cfg, colorize, err := resolve()
			if err != nil {
				return err
			}
			loader, err := openFixture(args[0])
			if err != nil {
				return err
			}

			w := report.NewWarner(os.Stderr, colorize)
			segs, store := ne.BuildSegments(loader, func(msg string) { w.Warn(msg) })

			s := scan.NewScanner(segs, store, w.Warnf)
			progCS, progIP := loader.ProgramEntry()
			s.Scan(loader.EntryTable(), progCS, progIP)

			p := listing.NewPrinter(cfg, store, w)
			for _, seg := range segs {
				if !selected(seg.CS) {
					continue
				}
				fmt.Print(p.PrintSegment(seg))
			}
			return nil
		},
	}

	segmentsCmd := &cobra.Command{
		Use:   "segments <fixture.json>",
		Short: "Print just the per-segment flag breakdown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _, colorize, err := resolve()
			if err != nil {
				return err
			}
			loader, err := openFixture(args[0])
			if err != nil {
				return err
			}
			w := report.NewWarner(os.Stderr, colorize)
			segs, _ := ne.BuildSegments(loader, func(msg string) { w.Warn(msg) })
			for _, seg := range segs {
				if !selected(seg.CS) {
					continue
				}
				alloc := seg.Allocated()
				fmt.Printf("Segment %d (start = 0x%x, length = 0x%x, minimum allocation = 0x%x):\n",
					seg.CS, seg.Start, seg.Length, alloc)
				fmt.Printf("    Flags: 0x%04x (%s)\n", seg.Flags, ne.DescribeSegmentFlags(seg.Flags))
			}
			return nil
		},
	}

	symbolsCmd := &cobra.Command{
		Use:   "symbols <fixture.json>",
		Short: "Dump the discovered function symbol table as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _, colorize, err := resolve()
			if err != nil {
				return err
			}
			loader, err := openFixture(args[0])
			if err != nil {
				return err
			}
			w := report.NewWarner(os.Stderr, colorize)
			segs, store := ne.BuildSegments(loader, func(msg string) { w.Warn(msg) })

			s := scan.NewScanner(segs, store, w.Warnf)
			progCS, progIP := loader.ProgramEntry()
			s.Scan(loader.EntryTable(), progCS, progIP)

			symbols := report.NewSymbolTable()
			for _, seg := range segs {
				for off, flags := range seg.InstrFlags {
					if flags&ne.FlagFunc == 0 {
						continue
					}
					name := store.EntryName(seg.CS, uint16(off))
					symbols.Add(seg.CS, uint16(off), name)
				}
			}
			return symbols.WriteJSON(os.Stdout)
		},
	}

	rootCmd.AddCommand(disasmCmd, segmentsCmd, symbolsCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// identityDemangle stands in for the external C++ demangling collaborator
// (spec.md §6: "external helper; core only looks up the callback"). Real
// name demangling is out of scope here.
func identityDemangle(s string) string { return s }
