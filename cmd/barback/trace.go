package main

import (
	"github.com/spf13/cobra"

	"github.com/jackzampolin/barback/internal/api"
	"github.com/jackzampolin/barback/internal/llmcall"
)

var traceCmd = &cobra.Command{
	Use:   "trace <file>",
	Short: "Summarize a call trace written by extract --trace",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		calls, err := llmcall.ReadFile(args[0])
		if err != nil {
			return err
		}
		return api.Output(llmcall.Summarize(calls))
	},
}
