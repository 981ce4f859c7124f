package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/lemonberrylabs/unitconv/pkg/parser"
	"github.com/spf13/cobra"
)

var unitsCmd = &cobra.Command{
	Use:   "units",
	Short: "Inspect and edit the unit catalog",
}

var unitsListCmd = &cobra.Command{
	Use:   "list [FILTER]",
	Short: "List units whose 'symbol (name)' contains FILTER",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runUnitsList,
}

var unitsAddCmd = &cobra.Command{
	Use:   "add SYMBOL",
	Short: "Add a unit to the catalog",
	Args:  cobra.ExactArgs(1),
	RunE:  runUnitsAdd,
}

var unitsRmCmd = &cobra.Command{
	Use:     "rm SYMBOL",
	Aliases: []string{"delete"},
	Short:   "Remove a unit from the catalog",
	Args:    cobra.ExactArgs(1),
	RunE:    runUnitsRm,
}

func init() {
	unitsAddCmd.Flags().String("name", "", "Unit name")
	unitsAddCmd.Flags().String("measure", "", "Measure name, e.g. LENGTH")
	unitsAddCmd.Flags().StringToInt("dim", nil, "Dimension exponents, e.g. length=1,time=-1")
	unitsAddCmd.Flags().Float64("multiplier", 1, "SI value of one unit")
	unitsAddCmd.Flags().Float64("offset", 0, "SI value of zero units")

	unitsCmd.AddCommand(unitsListCmd, unitsAddCmd, unitsRmCmd)
}

func runUnitsList(cmd *cobra.Command, args []string) error {
	s, err := openStore(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	filter := ""
	if len(args) == 1 {
		filter = args[0]
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SYMBOL\tNAME\tMEASURE\tSI\tMULTIPLIER\tOFFSET")
	for _, u := range s.ListUnits(filter) {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			u.Symbol, u.Name, u.Measure.Name, u.SISymbol(),
			strconv.FormatFloat(u.Multiplier, 'g', -1, 64),
			strconv.FormatFloat(u.Offset, 'g', -1, 64))
	}
	return tw.Flush()
}

func runUnitsAdd(cmd *cobra.Command, args []string) error {
	if catalogPath(cmd) == "" {
		return fmt.Errorf("units add needs --catalog or UNITCONV_CATALOG")
	}
	s, err := openStore(cmd.Context(), cmd)
	if err != nil {
		return err
	}

	spec := parser.UnitSpec{Symbol: args[0]}
	spec.Name, _ = cmd.Flags().GetString("name")
	spec.Measure, _ = cmd.Flags().GetString("measure")
	spec.Dimensions, _ = cmd.Flags().GetStringToInt("dim")
	spec.Multiplier, _ = cmd.Flags().GetFloat64("multiplier")
	spec.Offset, _ = cmd.Flags().GetFloat64("offset")

	u, err := spec.Unit()
	if err != nil {
		return err
	}
	if err := s.AddUnit(cmd.Context(), u); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", u)
	return nil
}

func runUnitsRm(cmd *cobra.Command, args []string) error {
	if catalogPath(cmd) == "" {
		return fmt.Errorf("units rm needs --catalog or UNITCONV_CATALOG")
	}
	s, err := openStore(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	if err := s.DeleteUnit(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
	return nil
}
