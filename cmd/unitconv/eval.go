package main

import (
	"fmt"
	"io"
	"strings"

	grpcapi "github.com/lemonberrylabs/unitconv/pkg/api/grpc"
	"github.com/lemonberrylabs/unitconv/pkg/conversion"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

var evalCmd = &cobra.Command{
	Use:   "eval EXPRESSION...",
	Short: "Evaluate an expression such as '2 km + 300 m in mi'",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runEval,
}

func init() {
	evalCmd.Flags().String("server", "", "Evaluate on a running server at this gRPC address instead of locally")
	evalCmd.Flags().Bool("all", false, "Also print the result in every other unit of its measure")
}

func runEval(cmd *cobra.Command, args []string) error {
	expression := strings.Join(args, " ")
	out := cmd.OutOrStdout()

	if addr, _ := cmd.Flags().GetString("server"); addr != "" {
		return evalRemote(cmd, addr, expression)
	}

	s, err := openStore(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	cv := conversion.New(s.Snapshot())
	r, err := cv.Evaluate(expression)
	if err != nil {
		return err
	}
	printResult(out, r)

	if all, _ := cmd.Flags().GetBool("all"); all {
		for _, q := range cv.Results() {
			fmt.Fprintf(out, "  = %s\n", q)
		}
	}
	return nil
}

func evalRemote(cmd *cobra.Command, addr, expression string) error {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()

	resp, err := grpcapi.NewClient(conn).Evaluate(cmd.Context(), expression)
	if err != nil {
		return err
	}
	f := resp.GetFields()
	display := f["result"].GetStructValue().GetFields()["display"].GetStringValue()
	if measure := f["measure"].GetStringValue(); measure != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", display, measure)
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), display)
	}
	return nil
}

func printResult(w io.Writer, r conversion.Result) {
	if r.Measure != "" {
		fmt.Fprintf(w, "%s (%s)\n", r.Quantity, r.Measure)
		return
	}
	fmt.Fprintln(w, r.Quantity)
}
