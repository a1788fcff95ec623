package cmd

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/exvulsec/safeguard/dispatch"
	"github.com/exvulsec/safeguard/safe"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "run the guard pipeline for one queued transaction",
	Run: func(cmd *cobra.Command, args []string) {
		setup(cmd)

		safeAddress, _ := cmd.Flags().GetString("safe")
		safeTxHash, _ := cmd.Flags().GetString("tx")
		if safeAddress == "" || safeTxHash == "" {
			logrus.Panicf("required --safe and --tx")
		}

		safeClient := safe.NewClient()
		signer, err := safe.NewSigner(safeClient)
		if err != nil {
			logrus.Panicf("create signer is err %v", err)
		}
		pipeline, err := composePipeline(safeClient, signer)
		if err != nil {
			logrus.Panicf("compose pipeline is err %v", err)
		}

		ctx := context.Background()
		conclusion, err := pipeline.Run(ctx, safeAddress, safeTxHash)
		if err != nil {
			// fail closed: neither approve nor reject without a conclusion
			logrus.Panicf("run pipeline for tx %s is err %v", safeTxHash, err)
		}
		fmt.Println(conclusion.Summary)

		signFlag, _ := cmd.Flags().GetBool("sign")
		rejectFlag, _ := cmd.Flags().GetBool("reject")
		notifyFlag, _ := cmd.Flags().GetBool("notify")
		if !signFlag && !rejectFlag && !notifyFlag {
			return
		}

		tx, err := safeClient.Transaction(ctx, safeTxHash)
		if err != nil {
			logrus.Panicf("get tx %s is err %v", safeTxHash, err)
		}
		dispatcher := dispatch.NewDispatcher(signer, composeNotifiers(), signFlag, rejectFlag, notifyFlag)
		if err = dispatcher.Dispatch(ctx, tx, conclusion); err != nil {
			logrus.Panicf("dispatch tx %s is err %v", safeTxHash, err)
		}
	},
}

func verifyCmdInit() {
	verifyCmd.Flags().String("config", "", "set config file path")
	verifyCmd.Flags().String("safe", "", "safe address")
	verifyCmd.Flags().String("tx", "", "safe transaction hash")
	verifyCmd.Flags().Bool("sign", false, "sign the transaction when all guards pass")
	verifyCmd.Flags().Bool("reject", false, "reject the transaction when a guard fails")
	verifyCmd.Flags().Bool("notify", false, "post a guard report")
}

func init() {
	verifyCmdInit()
}
