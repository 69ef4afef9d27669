package cmd

import (
	"fmt"
	"strings"

	"github.com/Mohsinsiddi/fundme/internal/contract"
	"github.com/Mohsinsiddi/fundme/internal/ui"
	"github.com/spf13/cobra"
)

var selectorCmd = &cobra.Command{
	Use:   "selector [signature-or-selector]",
	Short: "List FundMe selectors, compute one, or look one up",
	Long: `Without an argument, list every FundMe entry point with its selector.
With a signature, compute its 4-byte selector. With a 0x selector, look
up the FundMe method it belongs to.

Examples:
  fundme selector                                       # table of methods
  fundme selector "transfer(address to, uint256 amount)" # → 0xa9059cbb
  fundme selector 0x3ccfd60b                             # → withdraw()`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			fmt.Println(methodTable().Render())
			return nil
		}
		title, pairs := describeSelector(args[0])
		fmt.Println(ui.KeyValueBlock(title, pairs))
		return nil
	},
}

func methodTable() *ui.Table {
	t := ui.NewTable([]ui.Column{
		{Title: "Selector", Width: 12},
		{Title: "Signature", Width: 28},
		{Title: "Mutability", Width: 12},
	})
	for _, m := range contract.Methods() {
		t.AddRow(m.Selector, m.Signature, m.Mutability)
	}
	return t
}

// describeSelector treats 0x input as a selector to look up and anything
// else as a signature to hash.
func describeSelector(input string) (string, [][2]string) {
	input = strings.TrimSpace(input)
	if strings.HasPrefix(input, "0x") || strings.HasPrefix(input, "0X") {
		sel := strings.ToLower(input)
		method := "unknown"
		if m, ok := contract.Lookup(sel); ok {
			method = m.Signature
		}
		return "Selector Lookup", [][2]string{
			{"Selector", sel},
			{"Method", method},
		}
	}

	sig := contract.NormalizeSignature(input)
	pairs := [][2]string{
		{"Signature", sig},
		{"Selector", contract.Selector(sig)},
	}
	if m, ok := contract.Lookup(contract.Selector(sig)); ok {
		pairs = append(pairs, [2]string{"FundMe", m.Name + " (" + m.Mutability + ")"})
	}
	return "Function Selector", pairs
}
