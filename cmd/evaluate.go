package cmd

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/exvulsec/safeguard/eval"
	"github.com/exvulsec/safeguard/safe"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "replay a labelled dataset through the guard pipeline",
	Run: func(cmd *cobra.Command, args []string) {
		setup(cmd)

		dataset, _ := cmd.Flags().GetString("dataset")
		if dataset == "" {
			logrus.Panicf("required --dataset")
		}
		persist, _ := cmd.Flags().GetBool("persist")

		safeClient := safe.NewClient()
		signer, err := safe.NewSigner(safeClient)
		if err != nil {
			logrus.Panicf("create signer is err %v", err)
		}
		pipeline, err := composePipeline(safeClient, signer)
		if err != nil {
			logrus.Panicf("compose pipeline is err %v", err)
		}

		harness := eval.NewHarness(pipeline, persist)
		if _, err = harness.RunFile(context.Background(), dataset); err != nil {
			logrus.Panicf("run evaluation is err %v", err)
		}
	},
}

func evaluateCmdInit() {
	evaluateCmd.Flags().String("config", "", "set config file path")
	evaluateCmd.Flags().String("dataset", "", "path of the labelled dataset json")
	evaluateCmd.Flags().Bool("persist", false, "bulk insert the per-case results into postgresql")
}

func init() {
	evaluateCmdInit()
}
